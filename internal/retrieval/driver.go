package retrieval

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/roman-kulish/gnss-reflectometry/internal/arc"
	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
	"github.com/roman-kulish/gnss-reflectometry/internal/lsp"
	"github.com/roman-kulish/gnss-reflectometry/internal/qc"
	"github.com/roman-kulish/gnss-reflectometry/internal/rate"
	"github.com/roman-kulish/gnss-reflectometry/internal/snr"
)

// Recorder receives per-attempt measurements.
type Recorder interface {
	ObserveAttempt(band, outcome string, elapsed time.Duration)
	ObserveRejection(band, reason string)
	ObserveHeight(band string, rh float64)
}

func WithLogger(logger *slog.Logger) func(*Driver) {
	return func(d *Driver) {
		d.logger = logger
	}
}

func WithRecorder(recorder Recorder) func(*Driver) {
	return func(d *Driver) {
		d.recorder = recorder
	}
}

// Driver runs retrievals over an epoch batch with a fixed pool of workers.
type Driver struct {
	config   Config
	logger   *slog.Logger
	recorder Recorder
}

func NewDriver(config Config, options ...func(*Driver)) *Driver {
	d := &Driver{
		config: config,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(d)
	}

	return d
}

// attempt is a unit of work for the worker pool.
type attempt struct {
	sat    gnss.SatID
	band   gnss.Band
	sector int
	pass   int
	start  float64
	batch  *snr.Batch
}

// Run retrieves a reflector height for every satellite pass, band and
// azimuth sector in the batch. Failed attempts are reported in the results
// and never abort the run. Results are ordered by satellite, band and pass
// start time. An error is returned for an invalid configuration or batch,
// and when ctx is cancelled, in which case the results finished so far are
// returned with it.
func (d *Driver) Run(ctx context.Context, b *snr.Batch) ([]Result, error) {
	if err := d.config.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}

	if d.config.Refraction.Enabled {
		b = snr.CorrectRefraction(b, d.config.Refraction.Temperature, d.config.Refraction.Pressure)
	}

	attempts := d.attempts(b)
	if len(attempts) == 0 {
		return nil, nil
	}

	workers := d.config.Workers
	if workers == 0 {
		workers = 1
	}

	jobs := make(chan attempt, workers*2)
	results := make(chan Result, workers*2)

	// Start workers.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				started := time.Now()
				result := d.retrieve(job)
				result.elapsed = time.Since(started)
				select {
				case results <- result:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Feed jobs in a goroutine.
	go func() {
		defer close(jobs)
		for _, job := range attempts {
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close results when all workers are done.
	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Result, 0, len(attempts))
	for result := range results {
		d.report(&result)
		out = append(out, result)
	}

	slices.SortFunc(out, func(a, b Result) int {
		return cmp.Or(
			cmp.Compare(a.Satellite, b.Satellite),
			cmp.Compare(a.Band, b.Band),
			cmp.Compare(a.PassStart, b.PassStart),
			cmp.Compare(a.Sector, b.Sector),
		)
	})

	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// attempts enumerates satellite passes against bands and azimuth sectors.
func (d *Driver) attempts(b *snr.Batch) []attempt {
	var out []attempt

	for _, band := range d.config.Bands {
		if !b.HasSignal(band.Column()) {
			d.logger.Debug("no observations for band", slog.String("band", band.String()))
			continue
		}

		var launched map[gnss.SatID]bool
		if (band == gnss.GPSL2C || band == gnss.GPSL5) && !d.config.Date.IsZero() {
			launched = make(map[gnss.SatID]bool)
			for _, sat := range gnss.Satellites(band, d.config.Date) {
				launched[sat] = true
			}
		}

		for _, sat := range b.Satellites() {
			if sat.Constellation() != band.Constellation() {
				continue
			}
			if launched != nil && !launched[sat] {
				continue
			}

			for pass, rows := range passes(b, sat, d.config.MaxGap.Seconds()) {
				batch := b.Slice(rows)
				for sector := range d.config.Sectors() {
					out = append(out, attempt{
						sat:    sat,
						band:   band,
						sector: sector,
						pass:   pass,
						start:  batch.Seconds[0],
						batch:  batch,
					})
				}
			}
		}
	}

	return out
}

// retrieve runs a single attempt.
func (d *Driver) retrieve(job attempt) Result {
	r := Result{
		Satellite: job.sat,
		Band:      job.band,
		Sector:    job.sector,
		Pass:      job.pass,
		PassStart: job.start,
	}
	fail := func(err error) Result {
		r.Outcome = outcomeOf(err)
		r.Err = err
		return r
	}

	a, err := arc.Window(job.batch, job.sat, job.band, d.config.bounds(d.config.Sectors()[job.sector]))
	if err != nil {
		return fail(err)
	}
	r.Count = a.Count
	r.MinElevation = a.MinElevation()
	r.MaxElevation = a.MaxElevation()
	r.RiseSet = a.RiseSet

	grid, err := lsp.NewGrid(a.Elevation, a.CF, d.config.MaxH, d.config.DesiredPrec)
	if err != nil {
		return fail(err)
	}
	p, err := lsp.Estimate(a.Elevation, a.Residual, grid, a.CF, d.config.MinH)
	if err != nil {
		return fail(err)
	}
	r.Periodogram = p
	r.RH = p.Peak.RH
	r.Amplitude = p.Peak.Amplitude

	s, err := rate.Estimate(a.Elevation, a.Seconds, a.Edot, a.Azimuth)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", arc.ErrDegenerateArc, err))
	}
	r.MeanAzimuth = s.MeanAzimuth
	r.MeanTime = s.MeanTime
	r.Duration = s.Duration
	r.Factor1 = s.Factor1
	r.Factor2 = s.Factor2

	v := qc.Evaluate(p, qc.Arc{
		MinElevation: r.MinElevation,
		MaxElevation: r.MaxElevation,
		Duration:     s.Duration,
	}, d.config.criteria())
	r.Noise = v.Noise
	r.PeakToNoise = v.PeakToNoise
	r.Rejections = v.Rejections

	r.Outcome = Accepted
	if !v.Accepted() {
		r.Outcome = QCReject
	}
	return r
}

// report logs the result and feeds the recorder.
func (d *Driver) report(r *Result) {
	attrs := []any{
		slog.String("sat", r.Satellite.String()),
		slog.String("band", r.Band.String()),
		slog.Int("pass", r.Pass),
		slog.Int("sector", r.Sector),
	}

	switch r.Outcome {
	case Accepted:
		d.logger.Debug("reflector height retrieved", append(attrs,
			slog.Float64("rh", r.RH),
			slog.Float64("amp", r.Amplitude),
			slog.Float64("pk2noise", r.PeakToNoise),
		)...)
	case QCReject:
		qcAttrs := make([]any, 0, len(r.Rejections))
		for _, rej := range r.Rejections {
			qcAttrs = append(qcAttrs, slog.String(string(rej.Reason), fmt.Sprintf("%.3g/%.3g", rej.Observed, rej.Threshold)))
		}
		d.logger.Info("retrieval rejected", append(attrs,
			slog.Float64("rh", r.RH),
			slog.Group("qc", qcAttrs...),
		)...)
	default:
		d.logger.Debug("retrieval failed", append(attrs,
			slog.String("outcome", r.Outcome.String()),
			slog.Any("error", r.Err),
		)...)
	}

	if d.recorder == nil {
		return
	}
	d.recorder.ObserveAttempt(r.Band.String(), r.Outcome.String(), r.elapsed)
	for _, reason := range (qc.Verdict{Rejections: r.Rejections}).Reasons() {
		d.recorder.ObserveRejection(r.Band.String(), string(reason))
	}
	if r.Accepted() {
		d.recorder.ObserveHeight(r.Band.String(), r.RH)
	}
}
