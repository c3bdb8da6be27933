// Package retrieval runs reflector height retrievals for every satellite
// pass of an epoch batch.
package retrieval

import (
	"fmt"
	"runtime"
	"time"

	"github.com/roman-kulish/gnss-reflectometry/internal/arc"
	"github.com/roman-kulish/gnss-reflectometry/internal/gnss"
	"github.com/roman-kulish/gnss-reflectometry/internal/qc"
	"github.com/roman-kulish/gnss-reflectometry/internal/snr"
)

// Sector is an azimuth range in degrees, exclusive at both ends.
type Sector [2]float64

// RefractionConfig enables the elevation angle refraction correction.
type RefractionConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	Temperature float64 `yaml:"temperature" json:"temperature"` // Celsius
	Pressure    float64 `yaml:"pressure" json:"pressure"`       // hPa
}

// Config holds the retrieval parameters. Field names in files follow the
// gnssrefl conventions.
type Config struct {
	// Elevation windows, degrees
	ElevMin   float64     `yaml:"e1" json:"e1"`       // Retrieval window lower bound
	ElevMax   float64     `yaml:"e2" json:"e2"`       // Retrieval window upper bound
	PolyElev  [2]float64  `yaml:"pele" json:"pele"`   // Detrend window
	PolyOrder int         `yaml:"pfitV" json:"pfitV"` // Direct signal polynomial order
	MinSNR    float64     `yaml:"minSNR" json:"minSNR"`
	Az1       float64     `yaml:"az1" json:"az1"`
	Az2       float64     `yaml:"az2" json:"az2"`
	Azimuths  []Sector    `yaml:"azimuths" json:"azimuths"` // Overrides az1/az2 when set
	Bands     []gnss.Band `yaml:"bands" json:"bands"`

	// Search space, metres
	MinH        float64 `yaml:"minH" json:"minH"`
	MaxH        float64 `yaml:"maxH" json:"maxH"`
	DesiredPrec float64 `yaml:"desiredPrec" json:"desiredPrec"`

	// Quality control
	MaxArcTime   float64    `yaml:"delTmax" json:"delTmax"` // Minutes
	ElevDiff     float64    `yaml:"ediff" json:"ediff"`
	MinAmplitude float64    `yaml:"reqamp" json:"reqamp"`
	PeakToNoise  float64    `yaml:"PkNoise" json:"PkNoise"`
	NoiseRegion  [2]float64 `yaml:"nReg" json:"nReg"` // Zero means the whole periodogram

	// Pass handling
	MaxGap Duration  `yaml:"maxGap" json:"maxGap"` // Observation gap that starts a new pass
	Date   time.Time `yaml:"date" json:"date"`     // Observation date; limits L2C and L5 to launched satellites

	Refraction RefractionConfig `yaml:"refraction" json:"refraction"`
	Workers    int              `yaml:"workers" json:"workers"`
}

// DefaultConfig returns the gnssrefl defaults for a GPS L1 retrieval.
func DefaultConfig() Config {
	return Config{
		ElevMin:      5,
		ElevMax:      25,
		PolyElev:     [2]float64{5, 30},
		PolyOrder:    2,
		MinSNR:       arc.DefaultMinSNR,
		Az1:          0,
		Az2:          360,
		Bands:        []gnss.Band{gnss.GPSL1},
		MinH:         0.5,
		MaxH:         6,
		DesiredPrec:  0.005,
		MaxArcTime:   75,
		ElevDiff:     2,
		MinAmplitude: 5,
		PeakToNoise:  2.7,
		MaxGap:       Duration(10 * time.Minute),
		Refraction: RefractionConfig{
			Temperature: snr.DefaultTemperature,
			Pressure:    snr.DefaultPressure,
		},
		Workers: runtime.NumCPU(),
	}
}

func (c *Config) Validate() error {
	if c.ElevMin >= c.ElevMax {
		return fmt.Errorf("retrieval.Config: e1 must be less than e2: %g >= %g", c.ElevMin, c.ElevMax)
	}
	if c.ElevMin < 0 || c.ElevMax > 90 {
		return fmt.Errorf("retrieval.Config: elevation window must be within 0..90: %g..%g", c.ElevMin, c.ElevMax)
	}
	if c.PolyElev[0] >= c.PolyElev[1] {
		return fmt.Errorf("retrieval.Config: invalid pele window: %g..%g", c.PolyElev[0], c.PolyElev[1])
	}
	if c.PolyOrder < 0 {
		return fmt.Errorf("retrieval.Config: pfitV must not be negative: %d", c.PolyOrder)
	}

	for i, s := range c.Sectors() {
		if s[0] >= s[1] || s[0] < 0 || s[1] > 360 {
			return fmt.Errorf("retrieval.Config: invalid azimuth sector %d: %g..%g", i, s[0], s[1])
		}
	}

	if len(c.Bands) == 0 {
		return fmt.Errorf("retrieval.Config: no bands given")
	}
	for _, b := range c.Bands {
		if !b.Valid() {
			return fmt.Errorf("retrieval.Config: unknown band: %d", int(b))
		}
	}

	if c.MinH < 0 {
		return fmt.Errorf("retrieval.Config: minH must not be negative: %g", c.MinH)
	}
	if c.MaxH <= c.MinH {
		return fmt.Errorf("retrieval.Config: maxH must be greater than minH: %g <= %g", c.MaxH, c.MinH)
	}
	if c.DesiredPrec <= 0 || c.DesiredPrec >= c.MaxH {
		return fmt.Errorf("retrieval.Config: desiredPrec must be within 0..maxH: %g", c.DesiredPrec)
	}

	if c.MaxArcTime <= 0 {
		return fmt.Errorf("retrieval.Config: delTmax must be positive: %g", c.MaxArcTime)
	}
	if c.ElevDiff < 0 {
		return fmt.Errorf("retrieval.Config: ediff must not be negative: %g", c.ElevDiff)
	}
	if c.NoiseRegion != [2]float64{} && c.NoiseRegion[0] >= c.NoiseRegion[1] {
		return fmt.Errorf("retrieval.Config: invalid nReg: %g..%g", c.NoiseRegion[0], c.NoiseRegion[1])
	}

	if err := c.MaxGap.Validate(); err != nil {
		return fmt.Errorf("retrieval.Config: invalid maxGap: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("retrieval.Config: workers must not be negative: %d", c.Workers)
	}

	return nil
}

// Sectors returns the azimuth sectors to search.
func (c *Config) Sectors() []Sector {
	if len(c.Azimuths) > 0 {
		return c.Azimuths
	}
	return []Sector{{c.Az1, c.Az2}}
}

func (c *Config) bounds(s Sector) arc.Bounds {
	return arc.Bounds{
		DetrendMin: c.PolyElev[0],
		DetrendMax: c.PolyElev[1],
		ElevMin:    c.ElevMin,
		ElevMax:    c.ElevMax,
		AzimMin:    s[0],
		AzimMax:    s[1],
		PolyOrder:  c.PolyOrder,
		MinSNR:     c.MinSNR,
	}
}

func (c *Config) criteria() qc.Criteria {
	return qc.Criteria{
		ElevMin:        c.ElevMin,
		ElevMax:        c.ElevMax,
		ElevDiff:       c.ElevDiff,
		MaxDuration:    c.MaxArcTime,
		MinAmplitude:   c.MinAmplitude,
		MinPeakToNoise: c.PeakToNoise,
		NoiseRegion:    c.NoiseRegion,
	}
}
