package snr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
)

const (
	// ParseErrorsThreshold defines the number of consecutive parse errors allowed
	ParseErrorsThreshold = 5

	minFields = 7
)

var (
	// ErrTooManyParseErrors is returned when the number of consecutive parse errors exceeds the threshold
	ErrTooManyParseErrors = errors.New("too many consecutive parse errors")

	// ErrNoData is returned when the input holds no observations
	ErrNoData = errors.New("no observations")
)

// fileColumns is the SNR column order after the five geometry columns.
var fileColumns = []gnss.SNRColumn{gnss.S6, gnss.S1, gnss.S2, gnss.S5, gnss.S7, gnss.S8}

// Option configures Read.
type Option func(*reader)

// WithLogger sets the logger for the reader
func WithLogger(logger *slog.Logger) Option {
	return func(r *reader) {
		r.logger = logger
	}
}

// WithParseErrorsThreshold sets the threshold for consecutive parse errors
func WithParseErrorsThreshold(threshold int) Option {
	return func(r *reader) {
		r.parseErrorsThreshold = threshold
	}
}

// WithLinearSNR disables the dB-Hz to linear conversion, for files that
// already carry linear values.
func WithLinearSNR() Option {
	return func(r *reader) {
		r.decibels = false
	}
}

type reader struct {
	logger               *slog.Logger
	parseErrorsThreshold int
	decibels             bool
}

// Read decodes a whitespace separated SNR observation file. Each line holds
// satellite, elevation, azimuth, seconds of day, edot and up to six SNR
// columns in the order S6 S1 S2 S5 S7 S8, in dB-Hz.
func Read(in io.Reader, options ...Option) (*Batch, error) {
	r := reader{
		logger:               slog.New(slog.NewTextHandler(io.Discard, nil)),
		parseErrorsThreshold: ParseErrorsThreshold,
		decibels:             true,
	}
	for _, option := range options {
		option(&r)
	}

	batch := NewBatch(0)

	var lineNo, parseErrors int
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") {
			continue
		}

		row, err := r.parse(line)
		if err != nil {
			parseErrors++
			r.logger.Warn(fmt.Sprintf("error parsing observation: %s", err.Error()), slog.Int("line", lineNo))

			if parseErrors >= r.parseErrorsThreshold {
				return nil, fmt.Errorf("%w: line %d", ErrTooManyParseErrors, lineNo)
			}
			continue
		}

		parseErrors = 0 // reset counter
		batch.Append(row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading observations: %w", err)
	}
	if batch.Len() == 0 {
		return nil, ErrNoData
	}

	return batch, nil
}

// parse parses a single observation line.
func (r *reader) parse(line string) (Row, error) {
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return Row{}, fmt.Errorf("not enough fields: %d", len(fields))
	}

	sat, err := strconv.Atoi(fields[0])
	if err != nil {
		return Row{}, fmt.Errorf("invalid satellite: %w", err)
	}
	if !gnss.SatID(sat).Valid() {
		return Row{}, fmt.Errorf("invalid satellite: %d", sat)
	}

	var geometry [4]float64
	for i := range geometry {
		if geometry[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
			return Row{}, fmt.Errorf("invalid field %d: %w", i+2, err)
		}
	}

	row := Row{
		Satellite: gnss.SatID(sat),
		Elevation: geometry[0],
		Azimuth:   geometry[1],
		Seconds:   geometry[2],
		Edot:      geometry[3],
		SNR:       make(map[gnss.SNRColumn]float64, len(fileColumns)),
	}

	for i, c := range fileColumns {
		if 5+i >= len(fields) {
			break
		}

		v, err := strconv.ParseFloat(fields[5+i], 64)
		if err != nil {
			return Row{}, fmt.Errorf("invalid %s: %w", c, err)
		}
		if r.decibels {
			v = DecibelToLinear(v)
		}
		row.SNR[c] = v
	}

	return row, nil
}

// DecibelToLinear converts a dB-Hz value to volts/volts. Non-positive values
// mark missing observations and map to zero.
func DecibelToLinear(db float64) float64 {
	if db <= 0 {
		return 0
	}
	return math.Pow(10, db/20)
}
