// Package snr defines the epoch batch consumed by the retrieval engine and
// decodes it from SNR observation files.
package snr

import (
	"fmt"
	"slices"

	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
)

// Batch holds one row per satellite observation epoch as parallel slices.
// SNR values are linear (volts/volts); zero marks a missing observation.
type Batch struct {
	Satellite []gnss.SatID // Encoded satellite id
	Elevation []float64    // Elevation angle in degrees
	Azimuth   []float64    // Azimuth angle in degrees
	Seconds   []float64    // Seconds of the day
	Edot      []float64    // Elevation angle rate
	SNR       map[gnss.SNRColumn][]float64
}

// NewBatch returns an empty batch with room for n rows.
func NewBatch(n int) *Batch {
	return &Batch{
		Satellite: make([]gnss.SatID, 0, n),
		Elevation: make([]float64, 0, n),
		Azimuth:   make([]float64, 0, n),
		Seconds:   make([]float64, 0, n),
		Edot:      make([]float64, 0, n),
		SNR:       make(map[gnss.SNRColumn][]float64),
	}
}

// Row is a single observation epoch.
type Row struct {
	Satellite gnss.SatID
	Elevation float64
	Azimuth   float64
	Seconds   float64
	Edot      float64
	SNR       map[gnss.SNRColumn]float64
}

// Append adds a row. Columns absent from the row are recorded as zero.
func (b *Batch) Append(r Row) {
	n := b.Len()
	b.Satellite = append(b.Satellite, r.Satellite)
	b.Elevation = append(b.Elevation, r.Elevation)
	b.Azimuth = append(b.Azimuth, r.Azimuth)
	b.Seconds = append(b.Seconds, r.Seconds)
	b.Edot = append(b.Edot, r.Edot)

	if b.SNR == nil {
		b.SNR = make(map[gnss.SNRColumn][]float64)
	}
	for c := range r.SNR {
		if _, ok := b.SNR[c]; !ok {
			b.SNR[c] = make([]float64, n, max(n, cap(b.Elevation)))
		}
	}
	for c, col := range b.SNR {
		b.SNR[c] = append(col, r.SNR[c])
	}
}

// Len returns the number of rows.
func (b *Batch) Len() int {
	return len(b.Elevation)
}

// Validate checks that all slices have the same length.
func (b *Batch) Validate() error {
	n := b.Len()
	if len(b.Satellite) != n || len(b.Azimuth) != n || len(b.Seconds) != n || len(b.Edot) != n {
		return fmt.Errorf("snr.Batch: column lengths differ: sat=%d ele=%d azi=%d sec=%d edot=%d",
			len(b.Satellite), n, len(b.Azimuth), len(b.Seconds), len(b.Edot))
	}
	for c, col := range b.SNR {
		if len(col) != n {
			return fmt.Errorf("snr.Batch: %s has %d rows, expected %d", c, len(col), n)
		}
	}
	return nil
}

// Column returns the SNR column, or nil when the batch does not carry it.
func (b *Batch) Column(c gnss.SNRColumn) []float64 {
	return b.SNR[c]
}

// HasSignal reports whether the column holds at least one non-zero value.
func (b *Batch) HasSignal(c gnss.SNRColumn) bool {
	return slices.ContainsFunc(b.SNR[c], func(v float64) bool { return v > 0 })
}

// Satellites returns the distinct satellites in ascending order.
func (b *Batch) Satellites() []gnss.SatID {
	out := slices.Clone(b.Satellite)
	slices.Sort(out)
	return slices.Compact(out)
}

// Rows returns the indices of the rows observed from sat, in batch order.
func (b *Batch) Rows(sat gnss.SatID) []int {
	var rows []int
	for i, s := range b.Satellite {
		if s == sat {
			rows = append(rows, i)
		}
	}
	return rows
}

// Slice returns a new batch with the given rows, in the given order.
func (b *Batch) Slice(rows []int) *Batch {
	out := &Batch{
		Satellite: make([]gnss.SatID, len(rows)),
		Elevation: make([]float64, len(rows)),
		Azimuth:   make([]float64, len(rows)),
		Seconds:   make([]float64, len(rows)),
		Edot:      make([]float64, len(rows)),
		SNR:       make(map[gnss.SNRColumn][]float64, len(b.SNR)),
	}
	for c := range b.SNR {
		out.SNR[c] = make([]float64, len(rows))
	}

	for i, r := range rows {
		out.Satellite[i] = b.Satellite[r]
		out.Elevation[i] = b.Elevation[r]
		out.Azimuth[i] = b.Azimuth[r]
		out.Seconds[i] = b.Seconds[r]
		out.Edot[i] = b.Edot[r]
		for c, col := range b.SNR {
			out.SNR[c][i] = col[r]
		}
	}
	return out
}
