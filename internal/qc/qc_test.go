package qc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/gnss-reflectometry/internal/lsp"
)

// periodogram returns a flat unit spectrum over 0.1..2.0 m with a peak of
// the given shape centred on index peak.
func periodogram(peak int) *lsp.Periodogram {
	p := &lsp.Periodogram{}
	for i := 0; i < 20; i++ {
		p.RH = append(p.RH, 0.1*float64(i+1))
		p.Amplitude = append(p.Amplitude, 1)
	}
	for d, a := range []float64{8, 5, 3} {
		if i := peak - d; i >= 0 {
			p.Amplitude[i] = a
		}
		if i := peak + d; i < len(p.Amplitude) {
			p.Amplitude[i] = a
		}
	}
	p.Peak = lsp.Peak{RH: p.RH[peak], Amplitude: p.Amplitude[peak], Index: peak}
	return p
}

func criteria() Criteria {
	return Criteria{
		ElevMin:        5,
		ElevMax:        25,
		ElevDiff:       2,
		MaxDuration:    60,
		MinAmplitude:   5,
		MinPeakToNoise: 3,
	}
}

func goodArc() Arc {
	return Arc{MinElevation: 6, MaxElevation: 24, Duration: 30}
}

func TestEvaluateAccepted(t *testing.T) {
	v := Evaluate(periodogram(10), goodArc(), criteria())

	assert.True(t, v.Accepted())
	assert.Empty(t, v.Reasons())
	assert.InDelta(t, 1, v.Noise, 1e-12)
	assert.InDelta(t, 8, v.PeakToNoise, 1e-12)
}

func TestEvaluateReasons(t *testing.T) {
	tests := []struct {
		name    string
		peak    int
		arc     func(*Arc)
		crit    func(*Criteria)
		reasons []Reason
	}{
		{
			name:    "arc too long",
			peak:    10,
			arc:     func(a *Arc) { a.Duration = 90 },
			reasons: []Reason{ArcTooLong},
		},
		{
			name:    "starts too high",
			peak:    10,
			arc:     func(a *Arc) { a.MinElevation = 8 },
			reasons: []Reason{IncompleteCoverage},
		},
		{
			name:    "ends too low",
			peak:    10,
			arc:     func(a *Arc) { a.MaxElevation = 20 },
			reasons: []Reason{IncompleteCoverage},
		},
		{
			name:    "short at both ends",
			peak:    10,
			arc:     func(a *Arc) { a.MinElevation, a.MaxElevation = 8, 20 },
			reasons: []Reason{IncompleteCoverage},
		},
		{
			name:    "low amplitude",
			peak:    10,
			crit:    func(c *Criteria) { c.MinAmplitude = 10 },
			reasons: []Reason{LowAmplitude},
		},
		{
			name:    "low peak to noise",
			peak:    10,
			crit:    func(c *Criteria) { c.MinPeakToNoise = 9 },
			reasons: []Reason{LowPeakToNoise},
		},
		{
			name:    "undefined noise",
			peak:    10,
			crit:    func(c *Criteria) { c.MinPeakToNoise = 0; c.NoiseRegion = [2]float64{5, 6} },
			reasons: []Reason{LowPeakToNoise},
		},
		{
			name:    "peak next to lower edge",
			peak:    1,
			reasons: []Reason{EdgeOfSearchSpace},
		},
		{
			name:    "peak on upper edge",
			peak:    19,
			reasons: []Reason{EdgeOfSearchSpace},
		},
		{
			name: "every failure is reported",
			peak: 0,
			arc:  func(a *Arc) { a.Duration, a.MinElevation = 90, 10 },
			crit: func(c *Criteria) { c.MinAmplitude, c.MinPeakToNoise = 10, 20 },
			reasons: []Reason{
				ArcTooLong, IncompleteCoverage, LowAmplitude, LowPeakToNoise, EdgeOfSearchSpace,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, c := goodArc(), criteria()
			if tt.arc != nil {
				tt.arc(&a)
			}
			if tt.crit != nil {
				tt.crit(&c)
			}

			v := Evaluate(periodogram(tt.peak), a, c)
			assert.False(t, v.Accepted())
			assert.Equal(t, tt.reasons, v.Reasons())
		})
	}
}

func TestRejectionValues(t *testing.T) {
	a := goodArc()
	a.MinElevation = 8

	v := Evaluate(periodogram(10), a, criteria())
	require.Len(t, v.Rejections, 1)
	assert.Equal(t, Rejection{Reason: IncompleteCoverage, Observed: 8, Threshold: 7}, v.Rejections[0])
	assert.Contains(t, v.Rejections[0].String(), "incomplete_coverage")
}

func TestRejectionValuesBothEnds(t *testing.T) {
	a := goodArc()
	a.MinElevation, a.MaxElevation = 8, 20

	v := Evaluate(periodogram(10), a, criteria())
	assert.Equal(t, []Rejection{
		{Reason: IncompleteCoverage, Observed: 8, Threshold: 7},
		{Reason: IncompleteCoverage, Observed: 20, Threshold: 23},
	}, v.Rejections)
	assert.Equal(t, []Reason{IncompleteCoverage}, v.Reasons())
}

func TestNoise(t *testing.T) {
	p := periodogram(10)

	noise, ok := Noise(p, [2]float64{})
	require.True(t, ok)
	assert.InDelta(t, 1, noise, 1e-12)

	p.Amplitude[0] = 11
	noise, ok = Noise(p, [2]float64{0.1, 0.5})
	require.True(t, ok)
	assert.InDelta(t, 3, noise, 1e-12)

	_, ok = Noise(p, [2]float64{3, 4})
	assert.False(t, ok)
}

func TestPeakLobe(t *testing.T) {
	lo, hi := peakLobe([]float64{1, 1, 3, 5, 8, 5, 3, 1, 1}, 4)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 7, hi)

	lo, hi = peakLobe([]float64{8, 5, 6}, 0)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 1, hi)
}
