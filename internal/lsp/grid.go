// Package lsp computes Lomb-Scargle periodograms of detrended SNR arcs over a
// reflector height grid.
package lsp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrDegenerateGrid = errors.New("degenerate grid")

// Grid is an ascending reflector height grid in metres.
type Grid struct {
	RH      []float64
	Ofac    float64 // Oversampling factor
	Hifac   float64 // Highest height as a multiple of the Nyquist height
	Spacing float64
}

// NewGrid derives the reflector height grid for an arc from its elevation
// angles (degrees), the scale factor cf, the highest height of interest and
// the desired height precision. The grid spans desiredPrec..maxH.
func NewGrid(elevation []float64, cf, maxH, desiredPrec float64) (*Grid, error) {
	n := len(elevation)
	if n < 2 {
		return nil, fmt.Errorf("%w: %d points", ErrDegenerateGrid, n)
	}
	if cf <= 0 || maxH <= 0 || desiredPrec <= 0 {
		return nil, fmt.Errorf("%w: cf=%g maxH=%g desiredPrec=%g", ErrDegenerateGrid, cf, maxH, desiredPrec)
	}

	x := abscissa(elevation, cf)
	w := floats.Max(x) - floats.Min(x)
	if w == 0 {
		return nil, fmt.Errorf("%w: zero abscissa span", ErrDegenerateGrid)
	}

	ofac := (1 / w) / desiredPrec
	fc := float64(n) / (2 * w)
	hifac := maxH / fc

	count := int(math.Floor(0.5 * ofac * hifac * float64(n)))
	if count < 2 {
		return nil, fmt.Errorf("%w: %d grid points", ErrDegenerateGrid, count)
	}

	lo := 1 / (w * ofac)
	hi := hifac * float64(n) / (2 * w)

	return &Grid{
		RH:      floats.Span(make([]float64, count), lo, hi),
		Ofac:    ofac,
		Hifac:   hifac,
		Spacing: (hi - lo) / float64(count-1),
	}, nil
}

// abscissa maps elevation angles to sin(e)/cf.
func abscissa(elevation []float64, cf float64) []float64 {
	x := make([]float64, len(elevation))
	for i, e := range elevation {
		x[i] = math.Sin(e*math.Pi/180) / cf
	}
	return x
}
