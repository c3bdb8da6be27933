package app

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
)

func testData(t *testing.T) *PeriodogramData {
	t.Helper()

	data := NewPeriodogramData(NewAmplitudeHistogram(0.1))
	data.Update(record(1, 0.5, 6, 551, retrieval.Accepted))
	data.Update(record(2, 1, 4, 301, retrieval.QCReject))
	require.NoError(t, data.Resample(200, 4))
	return data
}

func TestRender(t *testing.T) {
	data := testData(t)

	renderer, err := NewPeriodogramRenderer(RenderConfig{ColorTheme: ClassicTheme})
	require.NoError(t, err)

	img, err := renderer.Render(data)
	require.NoError(t, err)

	size := img.Bounds().Size()
	assert.Equal(t, 200+defaultLeftBorder+defaultRightBorder, size.X)
	assert.Equal(t, 8+defaultTopBorder+defaultBottomBorder, size.Y)

	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	assert.NotEqual(t, white, img.RGBAAt(defaultLeftBorder+100, defaultTopBorder+1))

	// accepted and rejected peaks
	assert.Equal(t, white, img.RGBAAt(defaultLeftBorder+data.Column(6), defaultTopBorder+1))
	assert.Equal(t, rejectedColor, img.RGBAAt(defaultLeftBorder+data.Column(4), defaultTopBorder+5))

	// outside the second arc's search range
	assert.Equal(t, color.RGBA{A: 0xff}, img.RGBAAt(defaultLeftBorder, defaultTopBorder+5))
}

func TestRenderNoAnnotations(t *testing.T) {
	data := testData(t)

	renderer, err := NewPeriodogramRenderer(RenderConfig{NoAnnotations: true})
	require.NoError(t, err)

	img, err := renderer.Render(data)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestRendererBounds(t *testing.T) {
	data := testData(t)
	lo, hi := 1.0, 9.0

	renderer, err := NewPeriodogramRenderer(RenderConfig{MinAmplitude: &lo, MaxAmplitude: &hi})
	require.NoError(t, err)

	bounds := renderer.Bounds(data)
	assert.Equal(t, lo, bounds.Min)
	assert.Equal(t, hi, bounds.Max)

	_, err = NewPeriodogramRenderer(RenderConfig{MinAmplitude: &hi, MaxAmplitude: &lo})
	assert.Error(t, err)
}

func TestRenderEmpty(t *testing.T) {
	renderer, err := NewPeriodogramRenderer(RenderConfig{})
	require.NoError(t, err)

	_, err = renderer.Render(NewPeriodogramData(NewAmplitudeHistogram(0.1)))
	assert.ErrorIs(t, err, ErrNoPeriodograms)
}

func TestHeightScale(t *testing.T) {
	assert.Equal(t, 1.0, calculateNiceHeightStep(5.5, 800))
	assert.Equal(t, 0.5, calculateNiceHeightStep(1, 100))
	assert.Equal(t, 0.2, calculateNiceHeightStep(1.5, 800))

	assert.Equal(t, "5.00 mm", formatHeight(0.005))
	assert.Equal(t, "1.50 m", formatHeight(1.5))
}
