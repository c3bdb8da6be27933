// Package arc selects, detrends and trims the observations of a single
// satellite pass for one signal band.
package arc

import (
	"gonum.org/v1/gonum/floats"

	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
	"github.com/roman-kulish/gnss-reflectometry/internal/snr"
)

// Direction tells whether the satellite was rising or setting during the arc.
type Direction int

const (
	Rising  Direction = 1
	Setting Direction = -1
)

func (d Direction) String() string {
	if d == Rising {
		return "rising"
	}
	return "setting"
}

// Arc is a windowed, detrended pass of one satellite in one band. All slices
// are ordered by strictly ascending elevation. An Arc is never modified after
// Window returns it.
type Arc struct {
	Satellite gnss.SatID
	Band      gnss.Band
	CF        float64 // Half carrier wavelength in metres

	Elevation []float64 // Degrees
	Residual  []float64 // SNR minus the direct signal model
	SNR       []float64 // Linear SNR as observed
	Azimuth   []float64 // Degrees
	Seconds   []float64 // Seconds of the day
	Edot      []float64 // Elevation angle rate

	RiseSet  Direction
	RawCount int // Points inside the detrend window
	Count    int // Points inside the retrieval window

	detrend *snr.Batch // Detrend window rows in input order, band column only
}

// MinElevation returns the lowest observed elevation.
func (a *Arc) MinElevation() float64 {
	return a.Elevation[0]
}

// MaxElevation returns the highest observed elevation.
func (a *Arc) MaxElevation() float64 {
	return a.Elevation[len(a.Elevation)-1]
}

// Start returns the first observation time in seconds of the day.
func (a *Arc) Start() float64 {
	return floats.Min(a.Seconds)
}

// Duration returns the time span of the arc in minutes.
func (a *Arc) Duration() float64 {
	return (floats.Max(a.Seconds) - floats.Min(a.Seconds)) / 60
}

// Batch rebuilds the epoch batch the arc was windowed from: every point of
// the detrend window in input order, carrying the observed SNR in the band's
// column. Windowing it again with the same bounds yields the same arc.
func (a *Arc) Batch() *snr.Batch {
	rows := make([]int, a.detrend.Len())
	for i := range rows {
		rows[i] = i
	}
	return a.detrend.Slice(rows)
}
