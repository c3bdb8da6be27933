package snr

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
)

const sample = `
  1   5.1000  45.2000     30.0  0.000071  0.00 44.50 40.25  0.00  0.00  0.00
  1   5.3000  45.3000     45.0  0.000071  0.00 44.75 40.50  0.00  0.00  0.00
101  12.0000 210.0000     30.0 -0.000050  0.00 38.00 35.00
% comment
205  30.0000  95.5000     60.0  0.000010  0.00 42.00  0.00 46.00 45.00 44.00
`

func TestRead(t *testing.T) {
	b, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.NoError(t, b.Validate())

	assert.Equal(t, 4, b.Len())
	assert.Equal(t, []gnss.SatID{1, 101, 205}, b.Satellites())
	assert.Equal(t, []int{0, 1}, b.Rows(1))

	assert.InDelta(t, math.Pow(10, 44.5/20), b.Column(gnss.S1)[0], 1e-9)
	assert.Equal(t, 0.0, b.Column(gnss.S6)[0])
	assert.Equal(t, 0.0, b.Column(gnss.S5)[2]) // short line
	assert.InDelta(t, math.Pow(10, 44.0/20), b.Column(gnss.S8)[3], 1e-9)

	assert.True(t, b.HasSignal(gnss.S1))
	assert.False(t, b.HasSignal(gnss.S6))
}

func TestReadLinear(t *testing.T) {
	b, err := Read(strings.NewReader("1 10 20 30 0.0001 0 50 60\n"), WithLinearSNR())
	require.NoError(t, err)
	assert.Equal(t, 50.0, b.Column(gnss.S1)[0])
	assert.Equal(t, 60.0, b.Column(gnss.S2)[0])
}

func TestReadErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Read(strings.NewReader("\n% only a comment\n"))
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("too many parse errors", func(t *testing.T) {
		in := strings.Repeat("garbage line\n", 3)
		_, err := Read(strings.NewReader(in), WithParseErrorsThreshold(3))
		assert.True(t, errors.Is(err, ErrTooManyParseErrors))
	})

	t.Run("isolated errors are skipped", func(t *testing.T) {
		in := "1 10 20 30 0.0001 0 50\nbad\n999 10 20 30 0.0001 0 50\n1 11 20 31 0.0001 0 50\n"
		b, err := Read(strings.NewReader(in), WithParseErrorsThreshold(3))
		require.NoError(t, err)
		assert.Equal(t, 2, b.Len())
	})
}

func TestBatchSlice(t *testing.T) {
	b, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	s := b.Slice([]int{3, 0})
	require.NoError(t, s.Validate())
	assert.Equal(t, []gnss.SatID{205, 1}, s.Satellite)
	assert.Equal(t, []float64{30, 5.1}, s.Elevation)
	assert.Equal(t, b.Column(gnss.S1)[0], s.Column(gnss.S1)[1])

	s.Elevation[0] = 0
	assert.Equal(t, 30.0, b.Elevation[3], "slice must not alias the source batch")
}

func TestValidate(t *testing.T) {
	b := NewBatch(2)
	b.Append(Row{Satellite: 1, Elevation: 10, SNR: map[gnss.SNRColumn]float64{gnss.S1: 5}})
	b.Append(Row{Satellite: 1, Elevation: 11, SNR: map[gnss.SNRColumn]float64{gnss.S2: 7}})
	require.NoError(t, b.Validate())
	assert.Equal(t, []float64{5, 0}, b.Column(gnss.S1))
	assert.Equal(t, []float64{0, 7}, b.Column(gnss.S2))

	b.Azimuth = b.Azimuth[:1]
	assert.Error(t, b.Validate())
}

func TestRefraction(t *testing.T) {
	low := RefractionCorrection(5, DefaultTemperature, DefaultPressure)
	high := RefractionCorrection(60, DefaultTemperature, DefaultPressure)

	assert.InDelta(t, 0.16, low, 0.02)
	assert.Greater(t, low, high)
	assert.Greater(t, high, 0.0)

	b := NewBatch(1)
	b.Append(Row{Satellite: 1, Elevation: 5})
	c := CorrectRefraction(b, DefaultTemperature, DefaultPressure)
	assert.InDelta(t, 5+low, c.Elevation[0], 1e-12)
	assert.Equal(t, 5.0, b.Elevation[0])
}
