// Package gnss holds the satellite, constellation and signal band definitions
// shared by the reflectometry pipeline, including the carrier wavelengths used
// to scale the periodogram.
package gnss

import (
	"fmt"
)

// Constellation identifies a satellite navigation system.
type Constellation int

const (
	GPS Constellation = iota
	GLONASS
	Galileo
	BeiDou
)

// Satellite ids encode the constellation as an additive offset over the PRN:
//
//	  1..99   GPS
//	101..199  GLONASS
//	201..299  Galileo
//	301..399  BeiDou
//
// PRNs are limited to 1..99 so the ranges never overlap.
const (
	constellationOffset = 100
	maxPRN              = 99
)

var constellationNames = map[Constellation]string{
	GPS:     "GPS",
	GLONASS: "GLONASS",
	Galileo: "Galileo",
	BeiDou:  "BeiDou",
}

func (c Constellation) String() string {
	if name, ok := constellationNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Constellation(%d)", int(c))
}

// Valid reports whether c is one of the supported constellations.
func (c Constellation) Valid() bool {
	_, ok := constellationNames[c]
	return ok
}

// SatID is a satellite number with the constellation encoded as an offset.
type SatID int

// NewSatID encodes a PRN of the given constellation.
func NewSatID(c Constellation, prn int) (SatID, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("gnss.NewSatID: unknown constellation %d", int(c))
	}
	if prn < 1 || prn > maxPRN {
		return 0, fmt.Errorf("gnss.NewSatID: PRN %d out of range 1..%d", prn, maxPRN)
	}
	return SatID(int(c)*constellationOffset + prn), nil
}

// Constellation returns the constellation encoded in the id.
func (s SatID) Constellation() Constellation {
	return Constellation(int(s) / constellationOffset)
}

// PRN returns the satellite number within its constellation.
func (s SatID) PRN() int {
	return int(s) % constellationOffset
}

// Valid reports whether the id decodes to a known constellation and a legal PRN.
func (s SatID) Valid() bool {
	return s > 0 && s.Constellation().Valid() && s.PRN() >= 1
}

func (s SatID) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SatID(%d)", int(s))
	}
	return fmt.Sprintf("%s %02d", s.Constellation(), s.PRN())
}
