package retrieval

import (
	"errors"
	"time"

	"github.com/roman-kulish/gnss-reflectometry/internal/arc"
	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
	"github.com/roman-kulish/gnss-reflectometry/internal/lsp"
	"github.com/roman-kulish/gnss-reflectometry/internal/qc"
)

// Outcome classifies a retrieval attempt.
type Outcome int

const (
	Accepted Outcome = iota
	QCReject
	DataInsufficient
	DegenerateArc
	UnsupportedFrequency
	EmptyPeriodogram
)

var outcomeNames = map[Outcome]string{
	Accepted:             "accepted",
	QCReject:             "qc_reject",
	DataInsufficient:     "data_insufficient",
	DegenerateArc:        "degenerate_arc",
	UnsupportedFrequency: "unsupported_frequency",
	EmptyPeriodogram:     "empty_periodogram",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, bool) {
	for o, name := range outcomeNames {
		if name == s {
			return o, true
		}
	}
	return 0, false
}

// outcomeOf maps an attempt failure to its outcome.
func outcomeOf(err error) Outcome {
	switch {
	case errors.Is(err, gnss.ErrUnsupportedFrequency):
		return UnsupportedFrequency
	case errors.Is(err, arc.ErrDataInsufficient):
		return DataInsufficient
	case errors.Is(err, lsp.ErrEmptyPeriodogram), errors.Is(err, lsp.ErrDegenerateGrid):
		return EmptyPeriodogram
	default:
		return DegenerateArc
	}
}

// Result is the record of one retrieval attempt: a satellite pass in one
// band and azimuth sector. Only the identity fields, Outcome and Err are set
// for attempts that did not reach the quality gate.
type Result struct {
	Satellite gnss.SatID
	Band      gnss.Band
	Sector    int     // Index into Config.Sectors
	Pass      int     // Pass number of the satellite, in time order
	PassStart float64 // Seconds of the day

	RH           float64 // Reflector height, metres
	Amplitude    float64
	MinElevation float64
	MaxElevation float64
	RiseSet      arc.Direction
	MeanAzimuth  float64
	MeanTime     float64 // Hours of the day
	Duration     float64 // Minutes
	Count        int
	PeakToNoise  float64
	Noise        float64
	Factor1      *float64
	Factor2      *float64

	Outcome     Outcome
	Rejections  []qc.Rejection
	Err         error
	Periodogram *lsp.Periodogram

	elapsed time.Duration
}

// Accepted reports whether the retrieval passed every quality check.
func (r *Result) Accepted() bool {
	return r.Outcome == Accepted
}
