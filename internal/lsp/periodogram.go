package lsp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrEmptyPeriodogram = errors.New("empty periodogram")

// Peak is the highest point of a periodogram.
type Peak struct {
	RH        float64
	Amplitude float64
	Index     int // Index into Periodogram.RH
}

// Periodogram holds spectral amplitudes for the grid heights above minH.
type Periodogram struct {
	RH        []float64
	Amplitude []float64
	Peak      Peak
}

// Estimate computes the Lomb-Scargle amplitude spectrum of the residual SNR
// over the grid and locates its peak. Heights at or below minH are dropped.
func Estimate(elevation, residual []float64, grid *Grid, cf, minH float64) (*Periodogram, error) {
	if len(elevation) != len(residual) {
		return nil, fmt.Errorf("lsp: %d elevations and %d residuals", len(elevation), len(residual))
	}
	if cf <= 0 {
		return nil, fmt.Errorf("lsp: non-positive scale factor %g", cf)
	}

	x := abscissa(elevation, cf)
	n := float64(len(x))

	p := &Periodogram{}
	for _, h := range grid.RH {
		if h <= minH {
			continue
		}
		power := lombScargle(x, residual, 2*math.Pi*h)
		p.RH = append(p.RH, h)
		p.Amplitude = append(p.Amplitude, 2*math.Sqrt(power/n))
	}
	if len(p.RH) == 0 {
		return nil, fmt.Errorf("%w: no grid heights above %g m", ErrEmptyPeriodogram, minH)
	}

	i := floats.MaxIdx(p.Amplitude)
	p.Peak = Peak{RH: p.RH[i], Amplitude: p.Amplitude[i], Index: i}
	return p, nil
}

// lombScargle returns the unnormalised Lomb-Scargle power of y sampled at x
// for angular frequency w.
func lombScargle(x, y []float64, w float64) float64 {
	var xc, xs, cc, ss, cs float64
	for i, xi := range x {
		s, c := math.Sincos(w * xi)
		xc += y[i] * c
		xs += y[i] * s
		cc += c * c
		ss += s * s
		cs += c * s
	}

	tau := math.Atan2(2*cs, cc-ss) / (2 * w)
	st, ct := math.Sincos(w * tau)

	var power float64
	if d := ct*ct*cc + 2*ct*st*cs + st*st*ss; d > 0 {
		v := ct*xc + st*xs
		power += v * v / d
	}
	if d := ct*ct*ss - 2*ct*st*cs + st*st*cc; d > 0 {
		v := ct*xs - st*xc
		power += v * v / d
	}
	return 0.5 * power
}
