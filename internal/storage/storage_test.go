package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/gnss-reflectometry/internal/arc"
	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
	"github.com/roman-kulish/gnss-reflectometry/internal/lsp"
	"github.com/roman-kulish/gnss-reflectometry/internal/qc"
	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
)

func newStore(t *testing.T) *SqliteStore {
	t.Helper()
	s := NewSqliteStore(filepath.Join(t.TempDir(), "gnssir.db"))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr(f float64) *float64 {
	return &f
}

func results() []retrieval.Result {
	return []retrieval.Result{
		{
			Satellite:    gnss.SatID(5),
			Band:         gnss.GPSL1,
			PassStart:    3600,
			RH:           1.52,
			Amplitude:    14.2,
			MinElevation: 5.1,
			MaxElevation: 24.9,
			RiseSet:      arc.Rising,
			MeanAzimuth:  121,
			MeanTime:     1.4,
			Duration:     48,
			Count:        199,
			PeakToNoise:  6.3,
			Noise:        2.25,
			Factor1:      ptr(12.5),
			Outcome:      retrieval.Accepted,
			Periodogram: &lsp.Periodogram{
				RH:        []float64{0.5, 1, 1.5, 2},
				Amplitude: []float64{1, 3, 14.2, 2},
				Peak:      lsp.Peak{RH: 1.5, Amplitude: 14.2, Index: 2},
			},
		},
		{
			Satellite:    gnss.SatID(5),
			Band:         gnss.GPSL2C,
			PassStart:    3600,
			RH:           5.9,
			Amplitude:    3,
			MinElevation: 9,
			MaxElevation: 24.9,
			RiseSet:      arc.Setting,
			Count:        120,
			Outcome:      retrieval.QCReject,
			Rejections: []qc.Rejection{
				{Reason: qc.IncompleteCoverage, Observed: 9, Threshold: 7},
				{Reason: qc.LowAmplitude, Observed: 3, Threshold: 5},
			},
			Periodogram: &lsp.Periodogram{RH: []float64{1, 2}, Amplitude: []float64{3, 1}},
		},
		{
			Satellite: gnss.SatID(101),
			Band:      gnss.GLONASSL1,
			PassStart: 7200,
			Pass:      1,
			Outcome:   retrieval.DataInsufficient,
			Err:       errors.New("insufficient data: 12 points in detrend window"),
		},
	}
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first, err := s.CreateRun(ctx, "p041", map[string]any{"e1": 5})
	require.NoError(t, err)
	second, err := s.CreateRun(ctx, "mchn", nil)
	require.NoError(t, err)

	run, err := s.Run(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, run.ID)
	assert.Equal(t, "p041", run.Station)
	require.NotNil(t, run.Config)
	assert.JSONEq(t, `{"e1":5}`, *run.Config)
	assert.False(t, run.StartTime.IsZero())

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
	assert.Nil(t, runs[1].Config)

	_, err = s.Run(ctx, uuid.New())
	assert.Error(t, err)
}

func TestStoreAndReadResults(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	runID, err := s.CreateRun(ctx, "p041", "e1: 5")
	require.NoError(t, err)
	require.NoError(t, s.StoreResults(ctx, runID, results()))

	r, err := s.ReadResults(ctx, runID, WithPeriodograms())
	require.NoError(t, err)
	defer func() { assert.NoError(t, r.Close()) }()

	assert.Equal(t, runID, r.Run().ID)

	var got []*Record
	for r.Next(ctx) {
		got = append(got, r.Current())
	}
	require.NoError(t, r.Error())
	require.Len(t, got, 3)

	accepted := got[0]
	assert.Equal(t, retrieval.Accepted, accepted.Outcome)
	assert.Equal(t, gnss.GPSL1, accepted.Band)
	assert.Equal(t, 1.52, accepted.RH)
	assert.Equal(t, arc.Rising, accepted.RiseSet)
	assert.Equal(t, 199, accepted.Count)
	require.NotNil(t, accepted.Factor1)
	assert.Equal(t, 12.5, *accepted.Factor1)
	assert.Nil(t, accepted.Factor2)
	assert.Nil(t, accepted.Err)
	require.NotNil(t, accepted.Periodogram)
	assert.Equal(t, []float64{0.5, 1, 1.5, 2}, accepted.Periodogram.RH)
	assert.Equal(t, lsp.Peak{RH: 1.5, Amplitude: 14.2, Index: 2}, accepted.Periodogram.Peak)

	rejected := got[1]
	assert.Equal(t, retrieval.QCReject, rejected.Outcome)
	assert.Equal(t, arc.Setting, rejected.RiseSet)
	assert.Equal(t, []qc.Rejection{
		{Reason: qc.IncompleteCoverage, Observed: 9, Threshold: 7},
		{Reason: qc.LowAmplitude, Observed: 3, Threshold: 5},
	}, rejected.Rejections)

	failed := got[2]
	assert.Equal(t, gnss.SatID(101), failed.Satellite)
	assert.Equal(t, retrieval.DataInsufficient, failed.Outcome)
	assert.Equal(t, 1, failed.Pass)
	assert.EqualError(t, failed.Err, "insufficient data: 12 points in detrend window")
	assert.Nil(t, failed.Periodogram)
	assert.Empty(t, failed.Rejections)
}

func TestReadResultsFilters(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	runID, err := s.CreateRun(ctx, "p041", nil)
	require.NoError(t, err)
	require.NoError(t, s.StoreResults(ctx, runID, results()))

	other, err := s.CreateRun(ctx, "p041", nil)
	require.NoError(t, err)
	require.NoError(t, s.StoreResults(ctx, other, results()[:1]))

	count := func(opts ...ReaderOption) int {
		r, err := s.ReadResults(ctx, runID, opts...)
		require.NoError(t, err)
		defer r.Close()

		n := 0
		for r.Next(ctx) {
			assert.Nil(t, r.Current().Periodogram)
			n++
		}
		require.NoError(t, r.Error())
		return n
	}

	assert.Equal(t, 3, count())
	assert.Equal(t, 1, count(WithOutcome(retrieval.Accepted)))
	assert.Equal(t, 1, count(WithBand(gnss.GPSL2C)))
	assert.Equal(t, 2, count(WithSatellite(gnss.SatID(5))))
	assert.Equal(t, 0, count(WithSatellite(gnss.SatID(5)), WithOutcome(retrieval.DataInsufficient)))
}

func TestReadResultsUnknownRun(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.CreateRun(ctx, "p041", nil)
	require.NoError(t, err)

	_, err = s.ReadResults(ctx, uuid.New())
	assert.ErrorContains(t, err, "loading run")
}

func TestReadResultsCancelled(t *testing.T) {
	s := newStore(t)

	runID, err := s.CreateRun(context.Background(), "p041", nil)
	require.NoError(t, err)
	require.NoError(t, s.StoreResults(context.Background(), runID, results()))

	r, err := s.ReadResults(context.Background(), runID)
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, r.Next(ctx))
	assert.ErrorIs(t, r.Error(), context.Canceled)
}

func TestStoreLargePeriodogram(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	p := &lsp.Periodogram{}
	for i := 0; i < 2*maxPeriodogramBatch+10; i++ {
		p.RH = append(p.RH, float64(i)*0.001)
		p.Amplitude = append(p.Amplitude, float64(i%100))
	}
	res := results()[:1]
	res[0].Periodogram = p

	runID, err := s.CreateRun(ctx, "p041", nil)
	require.NoError(t, err)
	require.NoError(t, s.StoreResults(ctx, runID, res))

	r, err := s.ReadResults(ctx, runID, WithPeriodograms())
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Next(ctx))
	assert.Len(t, r.Current().Periodogram.RH, len(p.RH))
	assert.Equal(t, 99.0, r.Current().Periodogram.Peak.Amplitude)
}

func TestCloseTwice(t *testing.T) {
	s := NewSqliteStore(filepath.Join(t.TempDir(), "gnssir.db"))
	_, err := s.CreateRun(context.Background(), "p041", nil)
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
