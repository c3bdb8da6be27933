package gnss

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// SNRColumn identifies an SNR observable by its RINEX band digit.
type SNRColumn int

const (
	S1 SNRColumn = 1
	S2 SNRColumn = 2
	S5 SNRColumn = 5
	S6 SNRColumn = 6
	S7 SNRColumn = 7
	S8 SNRColumn = 8
)

// SNRColumns lists every column an epoch batch may carry.
var SNRColumns = []SNRColumn{S1, S2, S5, S6, S7, S8}

func (c SNRColumn) String() string {
	return fmt.Sprintf("S%d", int(c))
}

// Band is a signal band of a specific constellation. The numeric values are
// the band codes used in configuration files and result tables.
type Band int

const (
	GPSL1  Band = 1
	GPSL2  Band = 2
	GPSL2C Band = 20
	GPSL5  Band = 5

	GLONASSL1 Band = 101
	GLONASSL2 Band = 102

	GalileoL1 Band = 201
	GalileoL5 Band = 205
	GalileoL6 Band = 206
	GalileoL7 Band = 207
	GalileoL8 Band = 208

	BeiDouL1 Band = 301
	BeiDouL2 Band = 302
	BeiDouL5 Band = 305
	BeiDouL6 Band = 306
	BeiDouL7 Band = 307
)

type bandInfo struct {
	constellation Constellation
	column        SNRColumn
	name          string
	carrierMHz    float64 // zero for FDMA bands
}

var bands = map[Band]bandInfo{
	GPSL1:  {GPS, S1, "GPS L1", 1575.42},
	GPSL2:  {GPS, S2, "GPS L2", 1227.60},
	GPSL2C: {GPS, S2, "GPS L2C", 1227.60},
	GPSL5:  {GPS, S5, "GPS L5", 115 * 10.23},

	GLONASSL1: {GLONASS, S1, "Glonass L1", 0},
	GLONASSL2: {GLONASS, S2, "Glonass L2", 0},

	GalileoL1: {Galileo, S1, "Galileo L1", 1575.420},
	GalileoL5: {Galileo, S5, "Galileo L5", 1176.450},
	GalileoL6: {Galileo, S6, "Galileo L6", 1278.70},
	GalileoL7: {Galileo, S7, "Galileo L7", 1207.140},
	GalileoL8: {Galileo, S8, "Galileo L8", 1191.795},

	BeiDouL1: {BeiDou, S1, "Beidou L1", 1575.42},
	BeiDouL2: {BeiDou, S2, "Beidou L2", 1561.098},
	BeiDouL5: {BeiDou, S5, "Beidou L5", 1176.45},
	BeiDouL6: {BeiDou, S6, "Beidou L6", 1268.52},
	BeiDouL7: {BeiDou, S7, "Beidou L7", 1207.14},
}

// ParseBand converts a band code into a Band.
func ParseBand(code int) (Band, error) {
	b := Band(code)
	if !b.Valid() {
		return 0, fmt.Errorf("gnss.ParseBand: unknown band code %d", code)
	}
	return b, nil
}

// Bands returns every supported band in ascending code order.
func Bands() []Band {
	out := make([]Band, 0, len(bands))
	for b := range bands {
		out = append(out, b)
	}
	slices.Sort(out)
	return out
}

// Valid reports whether b is a known band.
func (b Band) Valid() bool {
	_, ok := bands[b]
	return ok
}

// Constellation returns the constellation transmitting the band.
func (b Band) Constellation() Constellation {
	return bands[b].constellation
}

// Column returns the SNR observable carrying the band.
func (b Band) Column() SNRColumn {
	return bands[b].column
}

func (b Band) String() string {
	if info, ok := bands[b]; ok {
		return info.name
	}
	return fmt.Sprintf("Band(%d)", int(b))
}

// UnmarshalYAML accepts the integer band code.
func (b *Band) UnmarshalYAML(value *yaml.Node) error {
	var code int
	if err := value.Decode(&code); err != nil {
		return fmt.Errorf("gnss.Band: %w", err)
	}

	parsed, err := ParseBand(code)
	if err != nil {
		return err
	}

	*b = parsed
	return nil
}
