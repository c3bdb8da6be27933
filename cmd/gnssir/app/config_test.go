package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
settings:
  logLevel: debug
input:
  file: /data/p0410010.snr
retrieval:
  e1: 5
  e2: 20
  bands: [1, 205]
  azimuths: [[0, 90], [90, 180]]
  maxGap: 15m
  PkNoise: 3.5
storage:
  dataDirectory: /tmp/out
metrics:
  listenAddr: ":9100"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, config.Settings.LogLevel)
	assert.Equal(t, "p0410010", config.Input.Station)
	assert.Equal(t, 20.0, config.Retrieval.ElevMax)
	assert.Equal(t, []gnss.Band{gnss.GPSL1, gnss.GalileoL5}, config.Retrieval.Bands)
	assert.Equal(t, []retrieval.Sector{{0, 90}, {90, 180}}, config.Retrieval.Sectors())
	assert.Equal(t, retrieval.Duration(15*time.Minute), config.Retrieval.MaxGap)
	assert.Equal(t, 3.5, config.Retrieval.PeakToNoise)
	assert.Equal(t, "/tmp/out", config.Storage.DataDirectory)
	assert.Equal(t, ":9100", config.Metrics.ListenAddr)

	// untouched parameters keep their defaults
	defaults := retrieval.DefaultConfig()
	assert.Equal(t, defaults.MaxH, config.Retrieval.MaxH)
	assert.Equal(t, defaults.MinAmplitude, config.Retrieval.MinAmplitude)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no input", "settings:\n  logLevel: info\n"},
		{"unknown field", "input:\n  file: a.snr\n  unknown: 1\n"},
		{"invalid retrieval", "input:\n  file: a.snr\nretrieval:\n  e1: 30\n  e2: 10\n"},
		{"invalid band", "input:\n  file: a.snr\nretrieval:\n  bands: [3]\n"},
		{"misspelled peak to noise", "input:\n  file: a.snr\nretrieval:\n  pkNoise: 3\n"},
		{"invalid log level", "settings:\n  logLevel: loud\ninput:\n  file: a.snr\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
