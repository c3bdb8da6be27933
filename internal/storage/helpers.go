package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/roman-kulish/gnss-reflectometry/internal/arc"
	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

// toResultData flattens a result into a row. Measurements are NULL for
// attempts that failed before the periodogram.
func toResultData(r *retrieval.Result) *resultData {
	measured := r.Periodogram != nil
	data := &resultData{
		Satellite:    int(r.Satellite),
		Band:         int(r.Band),
		Sector:       r.Sector,
		Pass:         r.Pass,
		PassStart:    r.PassStart,
		Outcome:      r.Outcome.String(),
		RH:           toNullFloat64(r.RH, measured),
		Amplitude:    toNullFloat64(r.Amplitude, measured),
		MinElevation: toNullFloat64(r.MinElevation, r.Count > 0),
		MaxElevation: toNullFloat64(r.MaxElevation, r.Count > 0),
		RiseSet:      sql.NullInt64{Int64: int64(r.RiseSet), Valid: r.Count > 0},
		MeanAzimuth:  toNullFloat64(r.MeanAzimuth, measured),
		MeanTime:     toNullFloat64(r.MeanTime, measured),
		Duration:     toNullFloat64(r.Duration, measured),
		NumPoints:    sql.NullInt64{Int64: int64(r.Count), Valid: r.Count > 0},
		PeakToNoise:  toNullFloat64(r.PeakToNoise, measured),
		Noise:        toNullFloat64(r.Noise, measured),
	}
	if r.Factor1 != nil {
		data.Factor1 = sql.NullFloat64{Float64: *r.Factor1, Valid: true}
	}
	if r.Factor2 != nil {
		data.Factor2 = sql.NullFloat64{Float64: *r.Factor2, Valid: true}
	}
	if r.Err != nil {
		data.Error = sql.NullString{String: r.Err.Error(), Valid: true}
	}
	return data
}

func (d *resultData) toRecord() (*Record, error) {
	outcome, ok := retrieval.ParseOutcome(d.Outcome)
	if !ok {
		return nil, fmt.Errorf("unknown outcome %q", d.Outcome)
	}
	band, err := gnss.ParseBand(d.Band)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID: d.ID,
		Result: retrieval.Result{
			Satellite:    gnss.SatID(d.Satellite),
			Band:         band,
			Sector:       d.Sector,
			Pass:         d.Pass,
			PassStart:    d.PassStart,
			RH:           d.RH.Float64,
			Amplitude:    d.Amplitude.Float64,
			MinElevation: d.MinElevation.Float64,
			MaxElevation: d.MaxElevation.Float64,
			RiseSet:      arc.Direction(d.RiseSet.Int64),
			MeanAzimuth:  d.MeanAzimuth.Float64,
			MeanTime:     d.MeanTime.Float64,
			Duration:     d.Duration.Float64,
			Count:        int(d.NumPoints.Int64),
			PeakToNoise:  d.PeakToNoise.Float64,
			Noise:        d.Noise.Float64,
			Factor1:      fromNullFloat64(d.Factor1),
			Factor2:      fromNullFloat64(d.Factor2),
			Outcome:      outcome,
		},
	}
	if d.Error.Valid {
		rec.Err = errors.New(d.Error.String)
	}
	return rec, nil
}

func toNullFloat64(f float64, valid bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: valid}
}

func fromNullFloat64(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}
