package gnss

import (
	"time"
)

// launch records when a GPS satellite started transmitting the modernized signals.
type launch struct {
	prn  int
	year int
	doy  int
}

// l2cLaunches lists the GPS satellites transmitting L2C, ordered by PRN.
var l2cLaunches = []launch{
	{1, 2011, 290}, {3, 2014, 347}, {4, 2018, 357}, {5, 2008, 240},
	{6, 2014, 163}, {7, 2008, 85}, {8, 2015, 224}, {9, 2014, 258}, {10, 2015, 343},
	{11, 2021, 168},
	{12, 2006, 300}, {14, 2020, 310}, {15, 2007, 285}, {17, 2005, 270},
	{18, 2019, 234}, {23, 2020, 182}, {24, 2012, 319}, {25, 2010, 240},
	{26, 2015, 111}, {27, 2013, 173}, {29, 2007, 355}, {30, 2014, 151}, {31, 2006, 270}, {32, 2016, 36},
}

// L5 transmissions began with the launch on 2010 day 148.
var firstL5 = fractionalYear(2010, 148)

// prnRanges bounds the satellites worth trying for each constellation.
var prnRanges = map[Constellation][2]int{
	GPS:     {1, 32},
	GLONASS: {1, 24},
	Galileo: {1, 40},
	BeiDou:  {1, 63},
}

func fractionalYear(year, doy int) float64 {
	return float64(year) + float64(doy)/365.25
}

// Satellites returns the satellites that can transmit the band on the given
// date. GPS L2C and L5 are limited to the satellites launched before the date.
func Satellites(band Band, date time.Time) []SatID {
	if !band.Valid() {
		return nil
	}

	c := band.Constellation()
	if band != GPSL2C && band != GPSL5 {
		r := prnRanges[c]
		out := make([]SatID, 0, r[1]-r[0]+1)
		for prn := r[0]; prn <= r[1]; prn++ {
			if c == GLONASS {
				if _, ok := glonassChannels[prn]; !ok {
					continue
				}
			}
			out = append(out, SatID(int(c)*constellationOffset+prn))
		}
		return out
	}

	date = date.UTC()
	now := fractionalYear(date.Year(), date.YearDay())

	var out []SatID
	for _, l := range l2cLaunches {
		launched := fractionalYear(l.year, l.doy)
		if launched >= now {
			continue
		}
		if band == GPSL5 && launched <= firstL5 {
			continue
		}
		out = append(out, SatID(l.prn))
	}
	return out
}
