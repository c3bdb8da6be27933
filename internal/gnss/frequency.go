package gnss

import (
	"errors"
	"fmt"
)

// SpeedOfLight in m/s.
const SpeedOfLight = 299792458.0

// GLONASS FDMA carriers: nominal frequency plus channel number times step, in Hz.
const (
	glonassL1Base = 1602e6
	glonassL1Step = 0.5625e6
	glonassL2Base = 1246e6
	glonassL2Step = 0.4375e6
)

// ErrUnsupportedFrequency is returned when no wavelength can be resolved for a
// band and satellite pair.
var ErrUnsupportedFrequency = errors.New("unsupported frequency")

// glonassChannels maps a GLONASS orbital slot to its frequency channel.
var glonassChannels = map[int]int{
	1: 1, 2: -4, 3: 5, 4: 6, 5: 1, 6: -4, 7: 5, 8: 6,
	9: -2, 10: -7, 11: 0, 12: -1, 13: -2, 14: -7, 15: 0, 16: -1,
	17: 4, 18: -3, 19: 3, 20: 2, 21: 4, 22: -3, 23: 3, 24: 2,
}

// GlonassChannel returns the frequency channel of a GLONASS slot.
func GlonassChannel(slot int) (int, bool) {
	ch, ok := glonassChannels[slot]
	return ch, ok
}

// Wavelength returns the carrier wavelength in metres of a band as transmitted
// by the given satellite.
func Wavelength(band Band, sat SatID) (float64, error) {
	info, ok := bands[band]
	if !ok {
		return 0, fmt.Errorf("%w: unknown band %d", ErrUnsupportedFrequency, int(band))
	}
	if !sat.Valid() {
		return 0, fmt.Errorf("%w: invalid satellite %d", ErrUnsupportedFrequency, int(sat))
	}
	if sat.Constellation() != info.constellation {
		return 0, fmt.Errorf("%w: %s is not transmitted by %s", ErrUnsupportedFrequency, band, sat)
	}

	if info.constellation != GLONASS {
		return SpeedOfLight / (info.carrierMHz * 1e6), nil
	}

	ch, ok := glonassChannels[sat.PRN()]
	if !ok {
		return 0, fmt.Errorf("%w: no frequency channel for %s", ErrUnsupportedFrequency, sat)
	}

	switch band {
	case GLONASSL1:
		return SpeedOfLight / (glonassL1Base + float64(ch)*glonassL1Step), nil
	case GLONASSL2:
		return SpeedOfLight / (glonassL2Base + float64(ch)*glonassL2Step), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFrequency, band)
}

// HalfWavelength returns the periodogram scale factor cf, half the carrier
// wavelength in metres.
func HalfWavelength(band Band, sat SatID) (float64, error) {
	w, err := Wavelength(band, sat)
	if err != nil {
		return 0, err
	}
	return w / 2, nil
}
