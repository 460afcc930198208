package driver

import (
	"math"
	"strconv"
	"strings"

	"github.com/adrianmo/go-nmea"
)

// newSentenceParser builds the parser used for all handled sentences.
// Four types get custom parsers instead of the stock ones:
//
//   - GGA: the stock parser rejects fix quality codes outside the
//     standard 0..8, but marine receivers also report 9 (WAAS); the
//     quality table decides what a code means.
//   - GST: deviation fields the receiver left empty must stay
//     distinguishable from an explicit 0.0, which would read as a
//     perfect error estimate.
//   - RPM: engine-room talkers put vendor codes in the source field
//     and append total engine hours after the standard fields.
//   - VBW: older logs carry the 8-field form without stern speeds.
// typeGST is declared here because go-nmea ships no GST support at
// all, not even the type tag.
const typeGST = "GST"

func newSentenceParser() nmea.SentenceParser {
	return nmea.SentenceParser{
		CustomParsers: map[string]nmea.ParserFunc{
			nmea.TypeGGA: parseGGA,
			typeGST:      parseGST,
			nmea.TypeRPM: parseRPM,
			nmea.TypeVBW: parseVBW,
		},
	}
}

func parseGGA(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	return nmea.GGA{
		BaseSentence:  s,
		Time:          p.Time(0, "time"),
		Latitude:      p.LatLong(1, 2, "latitude"),
		Longitude:     p.LatLong(3, 4, "longitude"),
		FixQuality:    p.String(5, "fix quality"),
		NumSatellites: p.Int64(6, "number of satellites"),
		HDOP:          p.Float64(7, "hdop"),
		Altitude:      p.Float64(8, "altitude"),
		Separation:    p.Float64(10, "separation"),
	}, p.Err()
}

// errorStats is a parsed GST sentence. Deviations the receiver left
// empty are NaN.
type errorStats struct {
	nmea.BaseSentence
	Time        nmea.Time
	LatitudeSD  float64
	LongitudeSD float64
	AltitudeSD  float64
}

func parseGST(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	return errorStats{
		BaseSentence: s,
		Time:         p.Time(0, "time"),
		LatitudeSD:   optFloat(s, 5),
		LongitudeSD:  optFloat(s, 6),
		AltitudeSD:   optFloat(s, 7),
	}, p.Err()
}

// engineRPM is a parsed RPM sentence. Hours carries the vendor
// extension field when present.
type engineRPM struct {
	nmea.BaseSentence
	Source       string
	EngineNumber int64
	SpeedRPM     float64
	PitchPercent float64
	Status       string
	Hours        *float64
}

func parseRPM(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	m := engineRPM{
		BaseSentence: s,
		Source:       p.String(0, "source"),
		EngineNumber: p.Int64(1, "engine or shaft number"),
		SpeedRPM:     p.Float64(2, "speed"),
		PitchPercent: p.Float64(3, "pitch"),
		Status:       p.String(4, "status"),
	}
	if v := optFloat(s, 5); !math.IsNaN(v) {
		m.Hours = &v
	}
	return m, p.Err()
}

// waterGroundSpeeds is a parsed VBW sentence, accepting both the
// 8-field form and the stern-speed extension.
type waterGroundSpeeds struct {
	nmea.BaseSentence
	WaterLongitudinal     float64
	WaterTransverse       float64
	WaterValid            bool
	GroundLongitudinal    float64
	GroundTransverse      float64
	GroundValid           bool
	SternWaterTransverse  float64
	SternWaterValid       bool
	SternGroundTransverse float64
	SternGroundValid      bool
}

func parseVBW(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	m := waterGroundSpeeds{
		BaseSentence:       s,
		WaterLongitudinal:  p.Float64(0, "longitudinal water speed"),
		WaterTransverse:    p.Float64(1, "transverse water speed"),
		WaterValid:         p.String(2, "water speed status") == validityActive,
		GroundLongitudinal: p.Float64(3, "longitudinal ground speed"),
		GroundTransverse:   p.Float64(4, "transverse ground speed"),
		GroundValid:        p.String(5, "ground speed status") == validityActive,
	}
	if len(s.Fields) >= 10 {
		m.SternWaterTransverse = p.Float64(6, "stern transverse water speed")
		m.SternWaterValid = p.String(7, "stern water speed status") == validityActive
		m.SternGroundTransverse = p.Float64(8, "stern transverse ground speed")
		m.SternGroundValid = p.String(9, "stern ground speed status") == validityActive
	}
	return m, p.Err()
}

// optFloat returns the field at index i parsed as a float, or NaN when
// the field is absent, empty, or malformed.
func optFloat(s nmea.BaseSentence, i int) float64 {
	if i >= len(s.Fields) {
		return math.NaN()
	}
	f := strings.TrimSpace(s.Fields[i])
	if f == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
