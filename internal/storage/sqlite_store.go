package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/gnss-reflectometry/internal/lsp"
	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
)

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

var _ Store = (*SqliteStore)(nil)

// NewSqliteStore creates a store backed by the SQLite database at dbPath.
// Connections are opened and the schema initialized on first use.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}
		db.SetMaxOpenConns(1)

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateRun(ctx context.Context, station string, config any) (runID uuid.UUID, err error) {
	var configData sql.NullString

	if config != nil {
		switch v := config.(type) {
		case string:
			configData.Valid = true
			configData.String = v

		case []byte:
			configData.Valid = true
			configData.String = string(v)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	id := uuid.New()
	if _, err = stmt.ExecContext(ctx, id.String(), time.Now().UTC(), station, configData); err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}

	return id, nil
}

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var run Run
	var id string
	var config sql.NullString
	if err := row.Scan(&id, &run.StartTime, &run.Station, &config); err != nil {
		return nil, err
	}

	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing run ID: %w", err)
	}
	if config.Valid {
		run.Config = &config.String
	}
	return &run, nil
}

func (s *SqliteStore) Run(ctx context.Context, id uuid.UUID) (run *Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	if run, err = scanRun(stmt.QueryRowContext(ctx, id.String())); err != nil {
		err = fmt.Errorf("scanning run: %w", err)
	}
	return
}

func (s *SqliteStore) Runs(ctx context.Context) (runs []*Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var run *Run
		if run, err = scanRun(rows); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		runs = append(runs, run)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) StoreResults(ctx context.Context, runID uuid.UUID, results []retrieval.Result) (err error) {
	if len(results) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	resultStmt, err := tx.PrepareContext(ctx, insertResultSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(resultStmt, &err)

	rejectionStmt, err := tx.PrepareContext(ctx, insertRejectionSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(rejectionStmt, &err)

	for i := range results {
		r := &results[i]
		data := toResultData(r)

		var res sql.Result
		res, err = resultStmt.ExecContext(ctx,
			runID.String(),
			data.Satellite,
			data.Band,
			data.Sector,
			data.Pass,
			data.PassStart,
			data.Outcome,
			data.RH,
			data.Amplitude,
			data.MinElevation,
			data.MaxElevation,
			data.RiseSet,
			data.MeanAzimuth,
			data.MeanTime,
			data.Duration,
			data.NumPoints,
			data.PeakToNoise,
			data.Noise,
			data.Factor1,
			data.Factor2,
			data.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting result: %w", err)
		}

		var resultID int64
		if resultID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("getting result ID: %w", err)
		}

		for _, rej := range r.Rejections {
			if _, err = rejectionStmt.ExecContext(ctx, resultID, string(rej.Reason), rej.Observed, rej.Threshold); err != nil {
				return fmt.Errorf("inserting rejection: %w", err)
			}
		}

		if r.Periodogram != nil {
			if err = insertPeriodogram(ctx, tx, resultID, r.Periodogram); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// maxPeriodogramBatch keeps a batch insert below the SQLite variable limit.
const maxPeriodogramBatch = 8000

func insertPeriodogram(ctx context.Context, tx *sql.Tx, resultID int64, p *lsp.Periodogram) error {
	// Build batch insert query
	valuesPlaceholder := "(?, ?, ?, ?)"

	for start := 0; start < len(p.RH); start += maxPeriodogramBatch {
		end := min(start+maxPeriodogramBatch, len(p.RH))

		var sb strings.Builder
		sb.WriteString(insertPeriodogramSQL)

		values := make([]interface{}, 0, (end-start)*4)
		for i := start; i < end; i++ {
			values = append(values, resultID, i, p.RH[i], p.Amplitude[i])

			if i > start {
				sb.WriteString(", ")
			}
			sb.WriteString(valuesPlaceholder)
		}

		if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
			return fmt.Errorf("batch inserting periodogram: %w", err)
		}
	}
	return nil
}

// ReadResults creates a reader over the stored results of a run, ordered by
// satellite, band and pass start time. Filtering options: WithOutcome,
// WithBand, WithSatellite; WithPeriodograms loads each result's periodogram
// and quality rejections are always loaded.
//
// The returned reader must be closed after use and should only be used from
// a single goroutine.
func (s *SqliteStore) ReadResults(ctx context.Context, runID uuid.UUID, opts ...ReaderOption) (*SqliteResultReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqliteResultReader(ctx, db, runID, opts...)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
