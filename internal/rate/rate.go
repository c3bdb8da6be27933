// Package rate summarises an arc and derives the factors that convert a
// reflector height rate (metres per hour) into a height correction.
package rate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes an arc. Factor1 uses the mean of the reported elevation
// rates, Factor2 the slope of a linear fit of elevation against time. A nil
// factor is undefined because its rate is zero.
type Summary struct {
	MeanAzimuth float64 // Degrees
	MeanTime    float64 // Hours of the day
	AvgEdot     float64 // Radians per second, as reported
	AvgEdotFit  float64 // Radians per second, fitted
	MeanTanE    float64
	Duration    float64 // Minutes

	Factor1 *float64 // Hours per radian
	Factor2 *float64 // Hours per radian
}

// Estimate summarises an arc given its elevations (degrees), observation
// times (seconds of the day), elevation rates and azimuths (degrees).
func Estimate(elevation, seconds, edot, azimuth []float64) (Summary, error) {
	n := len(elevation)
	if len(seconds) != n || len(edot) != n || len(azimuth) != n {
		return Summary{}, fmt.Errorf("rate: mismatched lengths %d/%d/%d/%d", n, len(seconds), len(edot), len(azimuth))
	}
	if n < 2 {
		return Summary{}, fmt.Errorf("rate: %d points", n)
	}

	radians := make([]float64, n)
	tan := make([]float64, n)
	for i, e := range elevation {
		radians[i] = e * math.Pi / 180
		tan[i] = math.Tan(radians[i])
	}

	s := Summary{
		MeanAzimuth: stat.Mean(azimuth, nil),
		MeanTime:    stat.Mean(seconds, nil) / 3600,
		AvgEdot:     stat.Mean(edot, nil),
		MeanTanE:    stat.Mean(tan, nil),
		Duration:    (floats.Max(seconds) - floats.Min(seconds)) / 60,
	}
	if floats.Max(seconds) > floats.Min(seconds) {
		_, s.AvgEdotFit = stat.LinearRegression(seconds, radians, nil, false)
	}

	s.Factor1 = factor(s.MeanTanE, s.AvgEdot)
	s.Factor2 = factor(s.MeanTanE, s.AvgEdotFit)
	return s, nil
}

func factor(tanE, edot float64) *float64 {
	if edot == 0 {
		return nil
	}
	f := tanE / (edot * 3600)
	return &f
}
