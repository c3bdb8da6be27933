package arc

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
	"github.com/roman-kulish/gnss-reflectometry/internal/snr"
)

const (
	// MinRawPoints is the number of detrend window points an arc must exceed.
	MinRawPoints = 30

	// MinPoints is the number of retrieval window points an arc must exceed.
	MinPoints = 10

	// flatResidual is the residual magnitude, relative to the SNR, below
	// which the detrended series is considered constant.
	flatResidual = 1e-9
)

var (
	ErrDataInsufficient = errors.New("insufficient data")
	ErrDegenerateArc    = errors.New("degenerate arc")
)

// Window extracts the arc of satellite sat in band from the batch, removes
// the direct signal with a polynomial fitted over the detrend window and
// trims the residual to the retrieval window. When the pass rises and sets
// inside the window only its longer side is kept.
func Window(b *snr.Batch, sat gnss.SatID, band gnss.Band, bounds Bounds) (*Arc, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	cf, err := gnss.HalfWavelength(band, sat)
	if err != nil {
		return nil, err
	}

	values := b.Column(band.Column())
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no %s observations", ErrDataInsufficient, band.Column())
	}

	// Detrend window, in time order.
	var sel []int
	for i, s := range b.Satellite {
		if s != sat || values[i] <= bounds.MinSNR {
			continue
		}
		if e := b.Elevation[i]; e <= bounds.DetrendMin || e >= bounds.DetrendMax {
			continue
		}
		if a := b.Azimuth[i]; a <= bounds.AzimMin || a >= bounds.AzimMax {
			continue
		}
		sel = append(sel, i)
	}
	if len(sel) <= MinRawPoints {
		return nil, fmt.Errorf("%w: %d points in detrend window", ErrDataInsufficient, len(sel))
	}

	direction := Setting
	if b.Elevation[sel[0]] < b.Elevation[sel[1]] {
		direction = Rising
	}

	byElevation := slices.Clone(sel)
	slices.SortStableFunc(byElevation, func(i, j int) int {
		return cmp.Compare(b.Elevation[i], b.Elevation[j])
	})
	x := make([]float64, len(byElevation))
	y := make([]float64, len(byElevation))
	for k, i := range byElevation {
		x[k], y[k] = b.Elevation[i], values[i]
	}
	poly, err := polyfit(x, y, bounds.PolyOrder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDegenerateArc, err)
	}

	// Retrieval window, still in time order.
	var rows []int
	for _, i := range sel {
		if e := b.Elevation[i]; e > bounds.ElevMin && e < bounds.ElevMax {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no points in retrieval window", ErrDegenerateArc)
	}

	elev := make([]float64, len(rows))
	for k, i := range rows {
		elev[k] = b.Elevation[i]
	}
	lo, hi := newPassMachine(elev).keep()
	rows = rows[lo:hi]

	slices.SortStableFunc(rows, func(i, j int) int {
		return cmp.Compare(b.Elevation[i], b.Elevation[j])
	})
	rows = slices.CompactFunc(rows, func(i, j int) bool {
		return b.Elevation[i] == b.Elevation[j]
	})

	a := &Arc{
		Satellite: sat,
		Band:      band,
		CF:        cf,
		Elevation: make([]float64, len(rows)),
		Residual:  make([]float64, len(rows)),
		SNR:       make([]float64, len(rows)),
		Azimuth:   make([]float64, len(rows)),
		Seconds:   make([]float64, len(rows)),
		Edot:      make([]float64, len(rows)),
		RiseSet:   direction,
		RawCount:  len(sel),
		Count:     len(rows),
		detrend:   detrendBatch(b, sel, band.Column(), values),
	}
	for k, i := range rows {
		a.Elevation[k] = b.Elevation[i]
		a.SNR[k] = values[i]
		a.Residual[k] = values[i] - poly.eval(b.Elevation[i])
		a.Azimuth[k] = b.Azimuth[i]
		a.Seconds[k] = b.Seconds[i]
		a.Edot[k] = b.Edot[i]
	}

	if err := checkDegenerate(a); err != nil {
		return nil, err
	}
	return a, nil
}

// detrendBatch copies the selected rows with only the band's SNR column.
func detrendBatch(b *snr.Batch, rows []int, c gnss.SNRColumn, values []float64) *snr.Batch {
	out := snr.NewBatch(len(rows))
	for _, i := range rows {
		out.Append(snr.Row{
			Satellite: b.Satellite[i],
			Elevation: b.Elevation[i],
			Azimuth:   b.Azimuth[i],
			Seconds:   b.Seconds[i],
			Edot:      b.Edot[i],
			SNR:       map[gnss.SNRColumn]float64{c: values[i]},
		})
	}
	return out
}

func checkDegenerate(a *Arc) error {
	if a.Count <= MinPoints {
		return fmt.Errorf("%w: %d points in retrieval window", ErrDegenerateArc, a.Count)
	}

	sum := floats.Sum(a.Residual)
	if sum == 0 || sum == float64(a.Count) {
		return fmt.Errorf("%w: residual sum %g", ErrDegenerateArc, sum)
	}

	mean := sum / float64(a.Count)
	var spread float64
	for _, r := range a.Residual {
		spread = math.Max(spread, math.Abs(r-mean))
	}
	if spread <= flatResidual*math.Max(1, floats.Norm(a.SNR, math.Inf(1))) {
		return fmt.Errorf("%w: flat residual", ErrDegenerateArc)
	}
	return nil
}
