// Package gps holds the receiver-side fix report types used by the
// bridge.
package gps

import (
	"math"
	"strconv"
	"strings"
)

// Quality is the GGA fix-quality code.
type Quality int

const (
	NoFix Quality = iota
	GNSS
	DGNSS
	PPS
	Fixed
	Float
	DeadReckoning
	Manual
	Simulator

	NumQualities = int(Simulator) + 1
)

var qualityNames = [NumQualities]string{
	"NOFIX", "GNSS", "DGNSS", "PPS", "FIXED", "FLOAT", "DR", "MAN", "SIM",
}

func (q Quality) String() string {
	if q < 0 || int(q) >= NumQualities {
		return "Q" + strconv.Itoa(int(q))
	}
	return qualityNames[q]
}

// NeedsAssistance reports whether the receiver has no usable GNSS
// solution (no fix or dead reckoning) and would benefit from AssistNow
// data.
func (q Quality) NeedsAssistance() bool {
	return q == NoFix || q == DeadReckoning
}

// Fix is one decoded position report.
type Fix struct {
	Quality   Quality `json:"quality"`
	Latitude  float64 `json:"lat"` // decimal degrees
	Longitude float64 `json:"lon"` // decimal degrees
}

// DecodeGGA decodes a GGA sentence (leading '$', no line terminator)
// into a Fix. Empty numeric fields decode as zero; decoding never
// fails structurally, so short sentences simply yield zero fields.
func DecodeGGA(sentence string) Fix {
	fields := strings.Split(sentence, ",")
	var fix Fix
	if len(fields) > 6 {
		fix.Quality = Quality(atoiField(fields[6]))
	}
	if len(fields) > 3 {
		fix.Latitude = coordinate(fields[2], fields[3] == "S")
	}
	if len(fields) > 5 {
		fix.Longitude = coordinate(fields[4], fields[5] == "W")
	}
	return fix
}

// coordinate converts a DDMM.MMMM field to decimal degrees, negated
// for the southern/western hemisphere.
func coordinate(field string, negative bool) float64 {
	raw := atofField(field)
	deg := math.Floor(raw/100) + math.Mod(raw, 100)/60
	if negative {
		deg = -deg
	}
	return deg
}

func atoiField(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func atofField(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
