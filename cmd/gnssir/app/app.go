package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/roman-kulish/gnss-reflectometry/internal/metrics"
	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
	"github.com/roman-kulish/gnss-reflectometry/internal/snr"
	"github.com/roman-kulish/gnss-reflectometry/internal/storage"
)

const (
	storageDir = "data"

	shutdownTimeout = 5 * time.Second
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	batch, err := readObservations(&config.Input, logger)
	if err != nil {
		return fmt.Errorf("failed to read observations: %w", err)
	}

	store, err := createStorage(&config.Storage, config.Input.Station)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing storage: %s", err.Error()))
		}
	}()

	runID, err := store.CreateRun(ctx, config.Input.Station, config.Retrieval)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	logger = logger.With(slog.String("run", runID.String()))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(reg)

	if config.Metrics.ListenAddr != "" {
		srv := serveMetrics(config.Metrics.ListenAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	driver := retrieval.NewDriver(config.Retrieval,
		retrieval.WithLogger(logger),
		retrieval.WithRecorder(recorder))

	started := time.Now()
	results, runErr := driver.Run(ctx, batch)
	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("running retrieval: %w", runErr)
	}

	// Partial results of a cancelled run are kept.
	if err = store.StoreResults(context.WithoutCancel(ctx), runID, results); err != nil {
		return fmt.Errorf("storing results: %w", err)
	}

	logSummary(logger, summarize(results), time.Since(started))
	return runErr
}

func readObservations(config *InputConfig, logger *slog.Logger) (*snr.Batch, error) {
	f, err := os.Open(config.File)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	opts := []snr.Option{snr.WithLogger(logger)}
	if config.LinearSNR {
		opts = append(opts, snr.WithLinearSNR())
	}

	batch, err := snr.Read(f, opts...)
	if err != nil {
		return nil, err
	}

	var size uint64
	if stat, err := f.Stat(); err == nil {
		size = uint64(stat.Size())
	}
	logger.Info("read observations",
		slog.String("file", config.File),
		slog.String("size", humanize.Bytes(size)),
		slog.String("epochs", humanize.Comma(int64(batch.Len()))),
		slog.Int("satellites", len(batch.Satellites())))

	return batch, nil
}

func createStorage(config *StorageConfig, station string) (*storage.SqliteStore, error) {
	dbPath := config.DataDirectory
	if dbPath == "" {
		dbPath = storageDir
	}
	if !filepath.IsAbs(dbPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		dbPath = filepath.Join(wd, dbPath)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("checking storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("gnssir_%s_%s.sqlite", station, time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath), nil
}

func serveMetrics(addr string, g prometheus.Gatherer, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Sprintf("serving metrics: %s", err.Error()), slog.String("addr", addr))
		}
	}()

	logger.Info("serving metrics", slog.String("addr", addr))
	return srv
}
