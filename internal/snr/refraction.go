package snr

import (
	"math"
)

const (
	// DefaultTemperature is the ground air temperature in degrees Celsius.
	DefaultTemperature = 20.0
	// DefaultPressure is the ground air pressure in hPa.
	DefaultPressure = 1013.25
)

// RefractionCorrection returns the elevation correction in degrees for
// atmospheric refraction, using the empirical model of G. G. Bennett (1982).
// The observed angle of incidence is the true elevation plus the correction.
func RefractionCorrection(elevation, temperature, pressure float64) float64 {
	arcMin := 510 / (9.0/5.0*temperature + 492) * pressure / 1010.16 /
		math.Tan((elevation+7.31/(elevation+4.4))*math.Pi/180)
	return arcMin / 60
}

// CorrectRefraction returns a copy of the batch with refraction-corrected
// elevation angles. The input batch is left untouched.
func CorrectRefraction(b *Batch, temperature, pressure float64) *Batch {
	rows := make([]int, b.Len())
	for i := range rows {
		rows[i] = i
	}

	out := b.Slice(rows)
	for i, e := range out.Elevation {
		out.Elevation[i] = e + RefractionCorrection(e, temperature, pressure)
	}
	return out
}
