package app

import "math"

const (
	defaultMinAmplitude = 0.0  // volts/volts
	defaultMaxAmplitude = 30.0 // volts/volts
	defaultBinWidth     = 0.1

	// Narrower ranges are widened around their centre
	minimumRange = 2.0

	// For 20 samples:
	// - 5% percentile  = 1 sample
	// - 95% percentile = 19th sample
	minimumSampleCount = 20
)

// AmplitudeBounds represents the calculated amplitude boundaries
type AmplitudeBounds struct {
	Min  float64 // 5th percentile amplitude less a margin
	Max  float64 // 95th percentile amplitude plus a margin
	Mean float64
}

func defaultAmplitudeBounds() AmplitudeBounds {
	return AmplitudeBounds{
		Min:  defaultMinAmplitude,
		Max:  defaultMaxAmplitude,
		Mean: (defaultMinAmplitude + defaultMaxAmplitude) / 2,
	}
}

// AmplitudeHistogram maintains a histogram of periodogram amplitudes
type AmplitudeHistogram struct {
	binWidth   float64
	bins       map[int]uint32 // Map of bin index to count
	totalCount uint64         // Total number of samples
	minBin     int            // Cache for min bin
	maxBin     int            // Cache for max bin
}

// NewAmplitudeHistogram creates a new histogram with bins of binWidth.
func NewAmplitudeHistogram(binWidth float64) *AmplitudeHistogram {
	if binWidth <= 0 {
		binWidth = defaultBinWidth
	}
	return &AmplitudeHistogram{
		binWidth: binWidth,
		bins:     make(map[int]uint32),
		minBin:   math.MaxInt32,
		maxBin:   math.MinInt32,
	}
}

func (h *AmplitudeHistogram) binIndex(amplitude float64) int {
	return int(math.Floor(amplitude / h.binWidth))
}

// scaleDown scales all bin counts down by factor of 2
func (h *AmplitudeHistogram) scaleDown() {
	h.minBin = math.MaxInt32
	h.maxBin = math.MinInt32

	for bin := range h.bins {
		h.bins[bin] /= 2
		if h.bins[bin] == 0 {
			delete(h.bins, bin)
			continue
		}

		h.minBin = min(h.minBin, bin)
		h.maxBin = max(h.maxBin, bin)
	}
	h.totalCount /= 2
}

// Update adds an amplitude to the histogram
func (h *AmplitudeHistogram) Update(amplitude float64) {
	if math.IsNaN(amplitude) || math.IsInf(amplitude, 0) {
		return
	}

	bin := h.binIndex(amplitude)
	if h.bins[bin] == math.MaxUint32 || h.totalCount == math.MaxUint64 {
		h.scaleDown()
	}

	h.bins[bin]++
	h.totalCount++

	h.minBin = min(h.minBin, bin)
	h.maxBin = max(h.maxBin, bin)
}

// Count returns the number of samples in the histogram
func (h *AmplitudeHistogram) Count() uint64 {
	return h.totalCount
}

// Bounds returns amplitude bounds based on percentiles
func (h *AmplitudeHistogram) Bounds() AmplitudeBounds {
	if h.totalCount < minimumSampleCount {
		return defaultAmplitudeBounds()
	}

	target5th := h.totalCount * 5 / 100

	var count uint64
	var min5th, max95th int

	for bin := h.minBin; bin <= h.maxBin; bin++ {
		count += uint64(h.bins[bin])
		if count >= target5th {
			min5th = bin
			break
		}
	}

	count = 0
	for bin := h.maxBin; bin >= h.minBin; bin-- {
		count += uint64(h.bins[bin])
		if count >= target5th {
			max95th = bin
			break
		}
	}

	// weighted average of bin centres
	var sumProduct float64
	for bin, n := range h.bins {
		sumProduct += (float64(bin) + 0.5) * float64(n)
	}
	mean := sumProduct * h.binWidth / float64(h.totalCount)

	lo := float64(min5th) * h.binWidth
	hi := float64(max95th+1) * h.binWidth
	if hi-lo < minimumRange {
		centre := (hi + lo) / 2
		lo = centre - minimumRange/2
		hi = centre + minimumRange/2
	}

	margin := (hi - lo) / 10
	return AmplitudeBounds{
		Min:  math.Max(0, lo-margin),
		Max:  hi + margin,
		Mean: mean,
	}
}

// Clear resets the histogram
func (h *AmplitudeHistogram) Clear() {
	h.bins = make(map[int]uint32)
	h.totalCount = 0
	h.minBin = math.MaxInt32
	h.maxBin = math.MinInt32
}
