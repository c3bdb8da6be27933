package app

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
)

// summary aggregates the results of a run.
type summary struct {
	Attempts int
	Outcomes map[retrieval.Outcome]int
	Heights  int     // Accepted retrievals
	MeanRH   float64 // Metres
	StdRH    float64
	MinRH    float64
	MaxRH    float64
}

func summarize(results []retrieval.Result) summary {
	s := summary{
		Attempts: len(results),
		Outcomes: make(map[retrieval.Outcome]int),
	}

	var heights []float64
	for i := range results {
		s.Outcomes[results[i].Outcome]++
		if results[i].Accepted() {
			heights = append(heights, results[i].RH)
		}
	}

	s.Heights = len(heights)
	switch len(heights) {
	case 0:
		return s
	case 1:
		s.MeanRH = heights[0]
	default:
		s.MeanRH, s.StdRH = stat.MeanStdDev(heights, nil)
	}

	sort.Float64s(heights)
	s.MinRH, s.MaxRH = heights[0], heights[len(heights)-1]
	return s
}

func logSummary(logger *slog.Logger, s summary, elapsed time.Duration) {
	outcomes := make([]any, 0, len(s.Outcomes))
	for o := retrieval.Accepted; o <= retrieval.EmptyPeriodogram; o++ {
		if n := s.Outcomes[o]; n > 0 {
			outcomes = append(outcomes, slog.String(o.String(), humanize.Comma(int64(n))))
		}
	}

	attrs := []any{
		slog.String("attempts", humanize.Comma(int64(s.Attempts))),
		slog.String("elapsed", elapsed.Round(time.Millisecond).String()),
		slog.Group("outcomes", outcomes...),
	}
	if s.Heights > 0 {
		attrs = append(attrs, slog.Group("rh",
			slog.String("mean", fmt.Sprintf("%0.3fm", s.MeanRH)),
			slog.String("std", fmt.Sprintf("%0.3fm", s.StdRH)),
			slog.String("min", fmt.Sprintf("%0.3fm", s.MinRH)),
			slog.String("max", fmt.Sprintf("%0.3fm", s.MaxRH)),
		))
	}

	logger.Info(fmt.Sprintf("retrieved %s reflector heights", humanize.Comma(int64(s.Heights))), attrs...)
}
