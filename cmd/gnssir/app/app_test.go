package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
	"github.com/roman-kulish/gnss-reflectometry/internal/storage"
)

// writeObservations writes a rising GPS 1 pass over a reflector 1.5 m
// below the antenna, in linear SNR.
func writeObservations(t *testing.T, dir string) string {
	t.Helper()

	halfWavelength := 299792458.0 / 1575.42e6 / 2

	var sb strings.Builder
	sb.WriteString("% sat elev azim seconds edot S6 S1\n")
	for i := 0; i < 251; i++ {
		e := 5 + 0.1*float64(i)
		s1 := 100 + 2*e + 20*math.Cos(4*math.Pi*1.5*math.Sin(e*math.Pi/180)/(2*halfWavelength))
		fmt.Fprintf(&sb, "1 %.4f 120.0 %.1f %.8f 0 %.6f\n", e, 3600+15*float64(i), 0.1*math.Pi/180/15, s1)
	}

	path := filepath.Join(dir, "test0010.snr")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()

	config := &Config{
		Input: InputConfig{
			File:      writeObservations(t, dir),
			Station:   "test",
			LinearSNR: true,
		},
		Retrieval: retrieval.DefaultConfig(),
		Storage:   StorageConfig{DataDirectory: dir},
	}
	config.Retrieval.Workers = 2
	require.NoError(t, config.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, Run(context.Background(), config, logger))

	files, err := filepath.Glob(filepath.Join(dir, "gnssir_test_*.sqlite"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	store := storage.NewSqliteStore(files[0])
	defer store.Close()

	ctx := context.Background()
	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "test", runs[0].Station)

	rr, err := store.ReadResults(ctx, runs[0].ID, storage.WithPeriodograms())
	require.NoError(t, err)
	defer rr.Close()

	var records []*storage.Record
	for rr.Next(ctx) {
		records = append(records, rr.Current())
	}
	require.NoError(t, rr.Error())
	require.Len(t, records, 1)

	assert.Equal(t, retrieval.Accepted, records[0].Outcome)
	assert.InDelta(t, 1.5, records[0].RH, 0.02)
	require.NotNil(t, records[0].Periodogram)
	assert.NotEmpty(t, records[0].Periodogram.RH)
}

func TestRunErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	t.Run("missing input", func(t *testing.T) {
		config := &Config{
			Input:     InputConfig{File: filepath.Join(dir, "missing.snr")},
			Retrieval: retrieval.DefaultConfig(),
			Storage:   StorageConfig{DataDirectory: dir},
		}
		assert.ErrorIs(t, Run(context.Background(), config, logger), os.ErrNotExist)
	})

	t.Run("missing storage directory", func(t *testing.T) {
		config := &Config{
			Input:     InputConfig{File: writeObservations(t, dir), Station: "test", LinearSNR: true},
			Retrieval: retrieval.DefaultConfig(),
			Storage:   StorageConfig{DataDirectory: filepath.Join(dir, "missing")},
		}
		assert.ErrorIs(t, Run(context.Background(), config, logger), os.ErrNotExist)
	})
}
