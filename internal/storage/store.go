package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
)

// Store provides an interface for persisting retrieval runs and their
// results. All operations that write to the database are atomic.
type Store interface {
	// CreateRun records the start of a retrieval run and returns its identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - station: Station name or source file of the observations
	//   - config: Optional run configuration. Can be string, []byte, or JSON-serializable object
	CreateRun(ctx context.Context, station string, config any) (runID uuid.UUID, err error)

	// Run retrieves a run by its ID.
	Run(ctx context.Context, id uuid.UUID) (run *Run, err error)

	// Runs returns all runs ordered by start time.
	Runs(ctx context.Context) (runs []*Run, err error)

	// StoreResults saves the results of a run together with their quality
	// rejections and periodograms in a single transaction.
	StoreResults(ctx context.Context, runID uuid.UUID, results []retrieval.Result) error

	// ReadResults returns a reader over the stored results of a run.
	// The reader must be closed after use.
	ReadResults(ctx context.Context, runID uuid.UUID, opts ...ReaderOption) (*SqliteResultReader, error)

	// Close releases all database connections. It is safe to call Close
	// multiple times.
	Close() error
}
