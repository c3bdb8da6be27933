// Package qc decides whether a periodogram peak is a credible reflector
// height and explains every check it fails.
package qc

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/roman-kulish/gnss-reflectometry/internal/lsp"
)

// Reason identifies a failed quality check.
type Reason string

const (
	ArcTooLong         Reason = "arc_too_long"
	IncompleteCoverage Reason = "incomplete_coverage"
	LowAmplitude       Reason = "low_amplitude"
	LowPeakToNoise     Reason = "low_peak_to_noise"
	EdgeOfSearchSpace  Reason = "edge_of_search_space"
)

// Reasons lists every check in evaluation order.
var Reasons = []Reason{ArcTooLong, IncompleteCoverage, LowAmplitude, LowPeakToNoise, EdgeOfSearchSpace}

// Criteria are the acceptance thresholds.
type Criteria struct {
	ElevMin        float64    // Retrieval window lower bound, degrees
	ElevMax        float64    // Retrieval window upper bound, degrees
	ElevDiff       float64    // Allowed coverage shortfall at either end, degrees
	MaxDuration    float64    // Minutes
	MinAmplitude   float64    // Volts/volts
	MinPeakToNoise float64    // Peak amplitude over mean noise amplitude
	NoiseRegion    [2]float64 // Heights averaged for noise; zero value means the whole periodogram
}

// Arc is the observed extent of the arc the periodogram came from.
type Arc struct {
	MinElevation float64
	MaxElevation float64
	Duration     float64 // Minutes
}

// Rejection records one failed check.
type Rejection struct {
	Reason    Reason
	Observed  float64
	Threshold float64
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s (observed %.3g, threshold %.3g)", r.Reason, r.Observed, r.Threshold)
}

// Verdict is the outcome of Evaluate. The candidate is accepted when it has
// no rejections.
type Verdict struct {
	Noise       float64 // Zero when undefined
	PeakToNoise float64 // Zero when the noise is undefined
	Rejections  []Rejection
}

// Accepted reports whether every check passed.
func (v Verdict) Accepted() bool {
	return len(v.Rejections) == 0
}

// Reasons returns the failed checks in evaluation order, each once. A check
// that fails at both ends of the arc has two rejections but one reason.
func (v Verdict) Reasons() []Reason {
	out := make([]Reason, 0, len(v.Rejections))
	for _, r := range v.Rejections {
		if !slices.Contains(out, r.Reason) {
			out = append(out, r.Reason)
		}
	}
	return out
}

// Evaluate runs every check against the periodogram peak. Checks do not
// short-circuit: all failures are reported.
func Evaluate(p *lsp.Periodogram, a Arc, c Criteria) Verdict {
	var v Verdict
	reject := func(reason Reason, observed, threshold float64) {
		v.Rejections = append(v.Rejections, Rejection{Reason: reason, Observed: observed, Threshold: threshold})
	}

	if a.Duration > c.MaxDuration {
		reject(ArcTooLong, a.Duration, c.MaxDuration)
	}

	if lo := c.ElevMin + c.ElevDiff; a.MinElevation > lo {
		reject(IncompleteCoverage, a.MinElevation, lo)
	}
	if hi := c.ElevMax - c.ElevDiff; a.MaxElevation < hi {
		reject(IncompleteCoverage, a.MaxElevation, hi)
	}

	if p.Peak.Amplitude < c.MinAmplitude {
		reject(LowAmplitude, p.Peak.Amplitude, c.MinAmplitude)
	}

	if noise, ok := Noise(p, c.NoiseRegion); ok {
		v.Noise = noise
		v.PeakToNoise = p.Peak.Amplitude / noise
	}
	if v.PeakToNoise < c.MinPeakToNoise || v.Noise == 0 {
		reject(LowPeakToNoise, v.PeakToNoise, c.MinPeakToNoise)
	}

	if i := p.Peak.Index; i <= 1 || i >= len(p.RH)-2 {
		reject(EdgeOfSearchSpace, p.Peak.RH, edgeHeight(p, i))
	}

	return v
}

// edgeHeight returns the retained grid boundary nearest to index i.
func edgeHeight(p *lsp.Periodogram, i int) float64 {
	if i < len(p.RH)/2 {
		return p.RH[0]
	}
	return p.RH[len(p.RH)-1]
}

// Noise returns the mean amplitude of the periodogram inside region,
// excluding the lobe around the peak: the run of samples descending
// monotonically away from it on either side. A zero region covers the whole
// periodogram. The second result is false when no samples remain or their
// mean is not positive.
func Noise(p *lsp.Periodogram, region [2]float64) (float64, bool) {
	lo, hi := peakLobe(p.Amplitude, p.Peak.Index)
	whole := region == [2]float64{}

	var samples []float64
	for i, h := range p.RH {
		if i >= lo && i <= hi {
			continue
		}
		if !whole && (h < region[0] || h > region[1]) {
			continue
		}
		samples = append(samples, p.Amplitude[i])
	}
	if len(samples) == 0 {
		return 0, false
	}

	mean := stat.Mean(samples, nil)
	if mean <= 0 {
		return 0, false
	}
	return mean, true
}

// peakLobe returns the inclusive index range of the lobe around peak.
func peakLobe(amp []float64, peak int) (lo, hi int) {
	lo, hi = peak, peak
	for lo > 0 && amp[lo-1] < amp[lo] {
		lo--
	}
	for hi < len(amp)-1 && amp[hi+1] < amp[hi] {
		hi++
	}
	return lo, hi
}
