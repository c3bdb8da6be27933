package app

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/roman-kulish/gnss-reflectometry/internal/storage"
)

var ErrNoPeriodograms = errors.New("no periodograms to plot")

// ArcInfo describes one row of the plot.
type ArcInfo struct {
	Label    string
	PeakRH   float64
	Accepted bool
}

// PeriodogramData holds the periodograms of a run resampled onto a common
// reflector height axis, one row per arc.
type PeriodogramData struct {
	Width, Height  int
	RowHeight      int
	RHMin, RHMax   float64
	Run            *storage.Run
	Arcs           []ArcInfo
	BoundsTracker  *AmplitudeHistogram
	Rows           [][]*float64
	rh, amplitudes [][]float64
}

func NewPeriodogramData(h *AmplitudeHistogram) *PeriodogramData {
	return &PeriodogramData{
		RHMin:         math.MaxFloat64,
		RHMax:         0,
		BoundsTracker: h,
	}
}

// Update adds the periodogram of a stored result. Results without one are
// skipped.
func (p *PeriodogramData) Update(r *storage.Record) {
	pg := r.Periodogram
	if pg == nil || len(pg.RH) < 2 {
		return
	}

	p.RHMin = min(p.RHMin, pg.RH[0])
	p.RHMax = max(p.RHMax, pg.RH[len(pg.RH)-1])

	p.Arcs = append(p.Arcs, ArcInfo{
		Label:    fmt.Sprintf("%s %02d pass %d", r.Band, r.Satellite.PRN(), r.Pass),
		PeakRH:   pg.Peak.RH,
		Accepted: r.Accepted(),
	})
	p.rh = append(p.rh, pg.RH)
	p.amplitudes = append(p.amplitudes, pg.Amplitude)
}

// Len returns the number of arcs.
func (p *PeriodogramData) Len() int {
	return len(p.Arcs)
}

// Column returns the pixel column of a reflector height.
func (p *PeriodogramData) Column(rh float64) int {
	return int(math.Round((rh - p.RHMin) / p.Resolution()))
}

// Resolution returns the reflector height covered by one pixel column.
func (p *PeriodogramData) Resolution() float64 {
	return (p.RHMax - p.RHMin) / float64(p.Width-1)
}

// Resample interpolates every periodogram onto width columns spanning
// RHMin..RHMax. Columns outside an arc's search range stay empty.
func (p *PeriodogramData) Resample(width, rowHeight int) error {
	if p.Len() == 0 {
		return ErrNoPeriodograms
	}
	if width < 2 || rowHeight < 1 {
		return fmt.Errorf("invalid plot size: %dx%d", width, rowHeight)
	}

	p.Width = width
	p.RowHeight = rowHeight
	p.Height = p.Len() * rowHeight
	p.Rows = make([][]*float64, p.Len())
	p.BoundsTracker.Clear()

	step := p.Resolution()
	for i := range p.Arcs {
		rh, amplitude := p.rh[i], p.amplitudes[i]

		var pl interp.PiecewiseLinear
		if err := pl.Fit(rh, amplitude); err != nil {
			return fmt.Errorf("interpolating %s: %w", p.Arcs[i].Label, err)
		}

		lo, hi := rh[0], rh[len(rh)-1]
		eps := step * 1e-6

		row := make([]*float64, width)
		for x := range row {
			h := p.RHMin + float64(x)*step
			if h < lo-eps || h > hi+eps {
				continue
			}
			h = math.Max(lo, math.Min(h, hi))

			v := pl.Predict(h)
			row[x] = &v
			p.BoundsTracker.Update(v)
		}
		p.Rows[i] = row
	}

	return nil
}
