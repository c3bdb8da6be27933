package arc

import (
	"errors"
	"fmt"
)

// DefaultMinSNR is the lowest linear SNR accepted into an arc.
const DefaultMinSNR = 5

// Bounds describes the detrend window (DetrendMin, DetrendMax), the tighter
// retrieval window (ElevMin, ElevMax) and the azimuth sector of an arc. All
// angles are in degrees and all bounds are exclusive.
type Bounds struct {
	DetrendMin float64
	DetrendMax float64
	ElevMin    float64
	ElevMax    float64
	AzimMin    float64
	AzimMax    float64
	PolyOrder  int
	MinSNR     float64
}

// Validate checks the bounds for consistency.
func (b Bounds) Validate() error {
	var errs []error
	if b.DetrendMin >= b.DetrendMax {
		errs = append(errs, fmt.Errorf("arc.Bounds: detrend window %g..%g is empty", b.DetrendMin, b.DetrendMax))
	}
	if b.ElevMin >= b.ElevMax {
		errs = append(errs, fmt.Errorf("arc.Bounds: elevation window %g..%g is empty", b.ElevMin, b.ElevMax))
	}
	if b.AzimMin >= b.AzimMax {
		errs = append(errs, fmt.Errorf("arc.Bounds: azimuth sector %g..%g is empty", b.AzimMin, b.AzimMax))
	}
	if b.PolyOrder < 0 {
		errs = append(errs, fmt.Errorf("arc.Bounds: negative polynomial order %d", b.PolyOrder))
	}
	return errors.Join(errs...)
}
