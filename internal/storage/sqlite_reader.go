package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
	"github.com/roman-kulish/gnss-reflectometry/internal/lsp"
	"github.com/roman-kulish/gnss-reflectometry/internal/qc"
	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
)

// ReaderOption configures a SqliteResultReader with filtering criteria.
type ReaderOption func(*SqliteResultReader)

// WithOutcome restricts the reader to results with the given outcome.
func WithOutcome(o retrieval.Outcome) ReaderOption {
	return func(r *SqliteResultReader) {
		s := o.String()
		r.outcome = &s
	}
}

// WithBand restricts the reader to a single band.
func WithBand(b gnss.Band) ReaderOption {
	return func(r *SqliteResultReader) {
		v := int(b)
		r.band = &v
	}
}

// WithSatellite restricts the reader to a single satellite.
func WithSatellite(s gnss.SatID) ReaderOption {
	return func(r *SqliteResultReader) {
		v := int(s)
		r.satellite = &v
	}
}

// WithPeriodograms loads the stored periodogram of every result.
func WithPeriodograms() ReaderOption {
	return func(r *SqliteResultReader) {
		r.periodograms = true
	}
}

// SqliteResultReader iterates over the stored results of a run.
type SqliteResultReader struct {
	db  *sql.DB
	run *Run

	outcome      *string
	band         *int
	satellite    *int
	periodograms bool

	rejectionStmt   *sql.Stmt
	periodogramStmt *sql.Stmt

	current *Record
	rows    *sql.Rows
	err     error
}

func newSqliteResultReader(ctx context.Context, db *sql.DB, runID uuid.UUID, opts ...ReaderOption) (*SqliteResultReader, error) {
	rr := &SqliteResultReader{db: db}
	for _, opt := range opts {
		opt(rr)
	}
	if err := rr.init(ctx, runID); err != nil {
		_ = rr.Close()
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return rr, nil
}

func (rr *SqliteResultReader) init(ctx context.Context, runID uuid.UUID) error {
	if rr.db == nil {
		return errors.New("database connection required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context, uuid.UUID) error
	}{
		{msg: "loading run", fn: rr.loadRun},
		{msg: "preparing statements", fn: rr.prepare},
		{msg: "initializing query", fn: rr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx, runID); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (rr *SqliteResultReader) loadRun(ctx context.Context, runID uuid.UUID) (err error) {
	stmt, err := rr.db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if rr.run, err = scanRun(stmt.QueryRowContext(ctx, runID.String())); err != nil {
		return fmt.Errorf("querying run: %w", err)
	}
	return
}

func (rr *SqliteResultReader) prepare(ctx context.Context, _ uuid.UUID) (err error) {
	if rr.rejectionStmt, err = rr.db.PrepareContext(ctx, selectRejectionsSQL); err != nil {
		return err
	}
	if rr.periodograms {
		if rr.periodogramStmt, err = rr.db.PrepareContext(ctx, selectPeriodogramSQL); err != nil {
			return err
		}
	}
	return nil
}

func (rr *SqliteResultReader) initQuery(ctx context.Context, runID uuid.UUID) (err error) {
	rr.rows, err = rr.db.QueryContext(ctx, selectResultsSQL,
		runID.String(),
		rr.outcome, rr.outcome,
		rr.band, rr.band,
		rr.satellite, rr.satellite,
	)
	return err
}

// Run returns the run this reader is accessing.
func (rr *SqliteResultReader) Run() *Run {
	return rr.run
}

// Next advances the reader and reports whether a result is available.
func (rr *SqliteResultReader) Next(ctx context.Context) bool {
	if rr.err != nil || rr.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		rr.err = ctx.Err()
		return false
	default:
	}

	if !rr.rows.Next() {
		return false
	}

	var d resultData
	if rr.err = rr.rows.Scan(
		&d.ID,
		&d.Satellite,
		&d.Band,
		&d.Sector,
		&d.Pass,
		&d.PassStart,
		&d.Outcome,
		&d.RH,
		&d.Amplitude,
		&d.MinElevation,
		&d.MaxElevation,
		&d.RiseSet,
		&d.MeanAzimuth,
		&d.MeanTime,
		&d.Duration,
		&d.NumPoints,
		&d.PeakToNoise,
		&d.Noise,
		&d.Factor1,
		&d.Factor2,
		&d.Error,
	); rr.err != nil {
		rr.err = fmt.Errorf("scanning result: %w", rr.err)
		return false
	}

	if rr.current, rr.err = d.toRecord(); rr.err != nil {
		rr.err = fmt.Errorf("converting result %d: %w", d.ID, rr.err)
		return false
	}
	if rr.current.Rejections, rr.err = rr.loadRejections(ctx, d.ID); rr.err != nil {
		return false
	}
	if rr.periodograms {
		if rr.current.Periodogram, rr.err = rr.loadPeriodogram(ctx, d.ID); rr.err != nil {
			return false
		}
	}
	return true
}

func (rr *SqliteResultReader) loadRejections(ctx context.Context, resultID int64) (out []qc.Rejection, err error) {
	rows, err := rr.rejectionStmt.QueryContext(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("querying rejections: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var rej qc.Rejection
		var reason string
		if err = rows.Scan(&reason, &rej.Observed, &rej.Threshold); err != nil {
			return nil, fmt.Errorf("scanning rejection: %w", err)
		}
		rej.Reason = qc.Reason(reason)
		out = append(out, rej)
	}
	return out, rows.Err()
}

// loadPeriodogram returns nil for results stored without one.
func (rr *SqliteResultReader) loadPeriodogram(ctx context.Context, resultID int64) (p *lsp.Periodogram, err error) {
	rows, err := rr.periodogramStmt.QueryContext(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("querying periodogram: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		if p == nil {
			p = &lsp.Periodogram{}
		}
		var rh, amp float64
		if err = rows.Scan(&rh, &amp); err != nil {
			return nil, fmt.Errorf("scanning periodogram: %w", err)
		}
		p.RH = append(p.RH, rh)
		p.Amplitude = append(p.Amplitude, amp)
	}
	if err = rows.Err(); err != nil || p == nil {
		return nil, err
	}

	for i, a := range p.Amplitude {
		if a > p.Peak.Amplitude || i == 0 {
			p.Peak = lsp.Peak{RH: p.RH[i], Amplitude: a, Index: i}
		}
	}
	return p, nil
}

// Current returns the result read by the last call to Next.
func (rr *SqliteResultReader) Current() *Record {
	return rr.current
}

// Error returns the error that stopped the iteration, if any.
func (rr *SqliteResultReader) Error() error {
	if rr.err != nil {
		return rr.err
	}
	if rr.rows != nil {
		return rr.rows.Err()
	}
	return nil
}

func (rr *SqliteResultReader) Close() error {
	var errs []error
	if rr.rows != nil {
		errs = append(errs, rr.rows.Close())
	}
	if rr.rejectionStmt != nil {
		errs = append(errs, rr.rejectionStmt.Close())
	}
	if rr.periodogramStmt != nil {
		errs = append(errs, rr.periodogramStmt.Close())
	}
	rr.rows, rr.rejectionStmt, rr.periodogramStmt = nil, nil, nil
	rr.current = nil
	return errors.Join(errs...)
}
