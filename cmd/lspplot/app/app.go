package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
	"github.com/roman-kulish/gnss-reflectometry/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	data, err := readPeriodograms(ctx, store, config, logger)
	if err != nil {
		return err
	}

	renderer, err := NewPeriodogramRenderer(RenderConfig{
		ColorTheme:    config.Theme,
		MinAmplitude:  config.MinAmplitude,
		MaxAmplitude:  config.MaxAmplitude,
		NoAnnotations: config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating periodogram renderer: %w", err)
	}

	logger.Info("rendering periodograms",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", data.Width),
			slog.Int("height", data.Height),
		))

	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering periodograms: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}

	if err = encode(out, img, config.Format); err != nil {
		_ = out.Close()
		return fmt.Errorf("encoding image: %w", err)
	}
	return out.Close()
}

func encode(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case ImagePNG:
		return png.Encode(w, img)
	case ImageJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{
			Quality: 98,
		})
	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}
}

func selectRun(ctx context.Context, store storage.Store, config *Config) (*storage.Run, error) {
	if config.RunID != nil {
		return store.Run(ctx, *config.RunID)
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.New("database holds no runs")
	}
	return runs[len(runs)-1], nil
}

func readPeriodograms(ctx context.Context, store storage.Store, config *Config, logger *slog.Logger) (*PeriodogramData, error) {
	run, err := selectRun(ctx, store, config)
	if err != nil {
		return nil, fmt.Errorf("selecting run: %w", err)
	}

	opts := []storage.ReaderOption{storage.WithPeriodograms()}
	filters := []any{slog.String("run", run.ID.String())}
	if config.Band != nil {
		opts = append(opts, storage.WithBand(*config.Band))
		filters = append(filters, slog.String("band", config.Band.String()))
	}
	if config.AcceptedOnly {
		opts = append(opts, storage.WithOutcome(retrieval.Accepted))
		filters = append(filters, slog.String("outcome", retrieval.Accepted.String()))
	}

	logger.Info("reader configuration", filters...)

	rr, err := store.ReadResults(ctx, run.ID, opts...)
	if err != nil {
		return nil, err
	}
	defer rr.Close()

	data := NewPeriodogramData(NewAmplitudeHistogram(defaultBinWidth))
	data.Run = run
	for rr.Next(ctx) {
		data.Update(rr.Current())
	}
	if err = rr.Error(); err != nil {
		return nil, err
	}

	if err = data.Resample(config.Width, config.RowHeight); err != nil {
		return nil, err
	}

	bounds := data.BoundsTracker.Bounds()
	stats := []any{
		slog.String("station", run.Station),
		slog.String("started", run.StartTime.Local().Format(time.DateTime)),
		slog.Int("arcs", data.Len()),
		slog.String("minRH", fmt.Sprintf("%0.3fm", data.RHMin)),
		slog.String("maxRH", fmt.Sprintf("%0.3fm", data.RHMax)),
		slog.String("minAmplitude", fmt.Sprintf("%0.2f", bounds.Min)),
		slog.String("maxAmplitude", fmt.Sprintf("%0.2f", bounds.Max)),
	}
	if config.Verbose {
		stats = append(stats, slog.String("meanAmplitude", fmt.Sprintf("%0.2f", bounds.Mean)))
	}
	logger.Info("finished reading periodograms", slog.Group("stats", stats...))

	return data, nil
}
