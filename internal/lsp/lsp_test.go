package lsp

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// cfL1 is half the GPS L1 wavelength.
const cfL1 = 299792458.0 / 1575.42e6 / 2

func elevations(from, to, step float64) []float64 {
	var out []float64
	for e := from; e <= to+1e-9; e += step {
		out = append(out, e)
	}
	return out
}

// interference synthesises the detrended SNR of a reflector at height h.
func interference(elev []float64, h, amp, noise float64, rng *rand.Rand) []float64 {
	y := make([]float64, len(elev))
	for i, e := range elev {
		y[i] = amp * math.Cos(4*math.Pi*h*math.Sin(e*math.Pi/180)/(2*cfL1))
		if rng != nil {
			y[i] += noise * rng.NormFloat64()
		}
	}
	return y
}

func TestNewGrid(t *testing.T) {
	elev := elevations(5, 25, 1)
	g, err := NewGrid(elev, cfL1, 6, 0.01)
	require.NoError(t, err)

	n := float64(len(elev))
	assert.Len(t, g.RH, int(math.Floor(0.5*g.Ofac*g.Hifac*n)))
	assert.InDelta(t, 600, len(g.RH), 1)
	assert.IsIncreasing(t, g.RH)
	assert.InDelta(t, 0.01, g.RH[0], 1e-9)
	assert.InDelta(t, 6, g.RH[len(g.RH)-1], 1e-9)
	assert.InDelta(t, 0.01, g.Spacing, 1e-4)
}

func TestNewGridDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		elevation []float64
		cf        float64
		maxH      float64
		prec      float64
	}{
		{"single point", []float64{10}, cfL1, 6, 0.01},
		{"zero span", []float64{10, 10, 10}, cfL1, 6, 0.01},
		{"zero cf", []float64{5, 10}, 0, 6, 0.01},
		{"coarse precision", []float64{5, 10}, cfL1, 6, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.elevation, tt.cf, tt.maxH, tt.prec)
			assert.ErrorIs(t, err, ErrDegenerateGrid)
		})
	}
}

func TestEstimateRecoversHeight(t *testing.T) {
	elev := elevations(5, 25, 1)
	residual := interference(elev, 1.5, 10, 0.05, rand.New(rand.NewSource(1)))

	g, err := NewGrid(elev, cfL1, 6, 0.01)
	require.NoError(t, err)

	p, err := Estimate(elev, residual, g, cfL1, 0.5)
	require.NoError(t, err)

	assert.InDelta(t, 1.5, p.Peak.RH, g.Spacing)
	assert.InEpsilon(t, 10, p.Peak.Amplitude, 0.1)
}

func TestEstimateProperties(t *testing.T) {
	elev := elevations(6, 28, 0.2)
	residual := interference(elev, 2.3, 4, 0.5, rand.New(rand.NewSource(7)))

	g, err := NewGrid(elev, cfL1, 8, 0.005)
	require.NoError(t, err)

	p, err := Estimate(elev, residual, g, cfL1, 1)
	require.NoError(t, err)

	require.Len(t, p.Amplitude, len(p.RH))
	for i := range p.RH {
		assert.Greater(t, p.RH[i], 1.0)
		assert.GreaterOrEqual(t, p.Amplitude[i], 0.0)
	}
	assert.Equal(t, floats.Max(p.Amplitude), p.Peak.Amplitude)
	assert.Equal(t, p.RH[p.Peak.Index], p.Peak.RH)
	assert.InDelta(t, 2.3, p.Peak.RH, 0.05)
}

func TestEstimateEmpty(t *testing.T) {
	elev := elevations(5, 25, 1)
	g, err := NewGrid(elev, cfL1, 6, 0.01)
	require.NoError(t, err)

	_, err = Estimate(elev, interference(elev, 1.5, 10, 0, nil), g, cfL1, 6.5)
	assert.ErrorIs(t, err, ErrEmptyPeriodogram)
}

func TestEstimateMismatch(t *testing.T) {
	g := &Grid{RH: []float64{1, 2}}
	_, err := Estimate([]float64{5, 6}, []float64{1}, g, cfL1, 0)
	assert.Error(t, err)
}

func TestLombScarglePureTone(t *testing.T) {
	elev := elevations(5, 30, 0.1)
	x := abscissa(elev, cfL1)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 3 * math.Sin(2*math.Pi*4*xi+0.3)
	}

	amp := 2 * math.Sqrt(lombScargle(x, y, 2*math.Pi*4)/float64(len(x)))
	assert.InEpsilon(t, 3, amp, 0.05)
}
