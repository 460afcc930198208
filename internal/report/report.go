// Package report defines the value types published by the navsat driver.
//
// Each report is a flat, JSON-serializable struct carrying the receive
// timestamp and the reference frame it is expressed in, plus the fields
// of the sentence it was decoded from. Topic names the pub/sub channel
// the report belongs on; the sink prepends its configured prefix.
package report

import "time"

// Report is implemented by every value the driver emits.
type Report interface {
	Topic() string
}

// FixStatus classifies the quality of a position fix.
type FixStatus int8

const (
	StatusNoFix   FixStatus = -1 // unable to fix position
	StatusFix     FixStatus = 0  // unaugmented fix
	StatusSBASFix FixStatus = 1  // with satellite-based augmentation
	StatusGBASFix FixStatus = 2  // with ground-based augmentation
)

// Service identifies the positioning service a fix came from.
type Service uint16

const (
	ServiceGPS     Service = 1
	ServiceGlonass Service = 2
	ServiceCompass Service = 4
	ServiceGalileo Service = 8
)

// CovarianceType describes how the position covariance was obtained.
type CovarianceType uint8

const (
	CovarianceUnknown       CovarianceType = 0
	CovarianceApproximated  CovarianceType = 1
	CovarianceDiagonalKnown CovarianceType = 2
	CovarianceKnown         CovarianceType = 3
)

// Fix is an absolute position with uncertainty.
//
// Latitude and longitude are signed decimal degrees (south and west
// negative). Altitude is meters above the WGS-84 ellipsoid corrected by
// the local mean-sea-level offset; it is nil when the source sentence
// carries no altitude. PositionCovariance is a row-major 3x3 matrix in
// m^2 with only the diagonal populated (indexes 0, 4 and 8).
type Fix struct {
	Stamp              time.Time      `json:"stamp"`
	Frame              string         `json:"frame"`
	Status             FixStatus      `json:"status"`
	Service            Service        `json:"service"`
	Latitude           float64        `json:"lat"`
	Longitude          float64        `json:"lon"`
	Altitude           *float64       `json:"alt,omitempty"`
	PositionCovariance [9]float64     `json:"position_covariance"`
	CovarianceType     CovarianceType `json:"position_covariance_type"`
}

func (Fix) Topic() string { return "fix" }

// Velocity is the ground velocity decomposed into east (VX) and north
// (VY) components, meters per second.
type Velocity struct {
	Stamp time.Time `json:"stamp"`
	Frame string    `json:"frame"`
	VX    float64   `json:"vx"`
	VY    float64   `json:"vy"`
}

func (Velocity) Topic() string { return "vel" }

// TimeReference relates the receiver's clock to the local arrival time.
type TimeReference struct {
	Stamp   time.Time `json:"stamp"`
	Frame   string    `json:"frame"`
	TimeRef time.Time `json:"time_ref"`
	Source  string    `json:"source"`
}

func (TimeReference) Topic() string { return "time_reference" }

// Heading is a true heading from an HDT sentence, degrees.
type Heading struct {
	Stamp           time.Time `json:"stamp"`
	Frame           string    `json:"frame"`
	Heading         float64   `json:"heading"`
	HeadingRelative bool      `json:"heading_relative"`
}

func (Heading) Topic() string { return "hdt" }

// RudderAngle is the starboard (or single) rudder sensor angle from an
// RSA sentence, degrees, negative meaning turn-to-port.
type RudderAngle struct {
	Stamp time.Time `json:"stamp"`
	Frame string    `json:"frame"`
	Angle float64   `json:"angle"`
}

func (RudderAngle) Topic() string { return "rudder_angle" }

// SatelliteGeometry is the active-satellite and dilution-of-precision
// summary from a GSA sentence. PRNs always has twelve entries; unused
// slots are empty strings.
type SatelliteGeometry struct {
	Stamp   time.Time `json:"stamp"`
	Frame   string    `json:"frame"`
	Mode    string    `json:"mode"`
	FixType string    `json:"fix_type"`
	PRNs    []string  `json:"prns"`
	PDOP    float64   `json:"pdop"`
	HDOP    float64   `json:"hdop"`
	VDOP    float64   `json:"vdop"`
}

func (SatelliteGeometry) Topic() string { return "gsa" }

// DateTime is the UTC date and time of day from a ZDA sentence.
type DateTime struct {
	Stamp time.Time `json:"stamp"`
	Frame string    `json:"frame"`
	UTC   string    `json:"utc"`
	Day   int64     `json:"day"`
	Month int64     `json:"month"`
	Year  int64     `json:"year"`
}

func (DateTime) Topic() string { return "zda" }

// EngineTelemetry is shaft or engine revolutions from an RPM sentence.
// Hours is nil unless the talker appends running hours after the
// standard fields.
type EngineTelemetry struct {
	Stamp  time.Time `json:"stamp"`
	Frame  string    `json:"frame"`
	Source string    `json:"source"`
	Engine int64     `json:"engine"`
	Status string    `json:"status"`
	RPM    float64   `json:"rpm"`
	Hours  *float64  `json:"hours,omitempty"`
	Pitch  float64   `json:"pitch"`
}

func (EngineTelemetry) Topic() string { return "rpm" }

// MagneticHeading is the magnetic sensor heading from an HDG sentence,
// with deviation and variation in degrees.
type MagneticHeading struct {
	Stamp         time.Time `json:"stamp"`
	Frame         string    `json:"frame"`
	SensorHeading float64   `json:"sensor_heading"`
	Deviation     float64   `json:"deviation"`
	DeviationDir  string    `json:"deviation_dir"`
	Variation     float64   `json:"variation"`
	VariationDir  string    `json:"variation_dir"`
}

func (MagneticHeading) Topic() string { return "hdg" }

// RateOfTurn is from a ROT sentence, degrees per minute, negative
// meaning bow turns to port.
type RateOfTurn struct {
	Stamp time.Time `json:"stamp"`
	Frame string    `json:"frame"`
	Rate  float64   `json:"rate"`
	Valid bool      `json:"valid"`
}

func (RateOfTurn) Topic() string { return "rot" }

// SatelliteInView describes a single satellite in a GSV sentence.
type SatelliteInView struct {
	PRN       int64 `json:"prn"`
	Elevation int64 `json:"elevation"`
	Azimuth   int64 `json:"azimuth"`
	SNR       int64 `json:"snr"`
}

// SatellitesInView is one page of the GSV satellite listing; a full
// cycle spans TotalMessages pages of up to four satellites each.
type SatellitesInView struct {
	Stamp         time.Time         `json:"stamp"`
	Frame         string            `json:"frame"`
	TotalMessages int64             `json:"total_messages"`
	MessageNumber int64             `json:"message_number"`
	InView        int64             `json:"in_view"`
	Satellites    []SatelliteInView `json:"satellites"`
}

func (SatellitesInView) Topic() string { return "gsv" }

// TrackMadeGood is course and speed over ground from a VTG sentence.
type TrackMadeGood struct {
	Stamp         time.Time `json:"stamp"`
	Frame         string    `json:"frame"`
	TrackTrue     float64   `json:"track_true"`
	TrackMagnetic float64   `json:"track_magnetic"`
	SpeedKnots    float64   `json:"speed_knots"`
	SpeedKPH      float64   `json:"speed_kph"`
	Mode          string    `json:"mode"`
}

func (TrackMadeGood) Topic() string { return "vtg" }

// RelativeSpeeds is the dual ground/water speed set from a VBW
// sentence, knots. Transverse components are negative to port.
type RelativeSpeeds struct {
	Stamp time.Time `json:"stamp"`
	Frame string    `json:"frame"`

	WaterLongitudinal float64 `json:"water_longitudinal"`
	WaterTransverse   float64 `json:"water_transverse"`
	WaterValid        bool    `json:"water_valid"`

	GroundLongitudinal float64 `json:"ground_longitudinal"`
	GroundTransverse   float64 `json:"ground_transverse"`
	GroundValid        bool    `json:"ground_valid"`

	SternWaterTransverse  float64 `json:"stern_water_transverse"`
	SternWaterValid       bool    `json:"stern_water_valid"`
	SternGroundTransverse float64 `json:"stern_ground_transverse"`
	SternGroundValid      bool    `json:"stern_ground_valid"`
}

func (RelativeSpeeds) Topic() string { return "vbw" }

// GeoPosition is latitude/longitude and time of day from a GLL
// sentence. LatDir and LonDir carry the sentence's hemisphere letters
// verbatim; Latitude and Longitude are already signed.
type GeoPosition struct {
	Stamp     time.Time `json:"stamp"`
	Frame     string    `json:"frame"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	LatDir    string    `json:"lat_dir"`
	LonDir    string    `json:"lon_dir"`
	UTC       string    `json:"utc"`
	Status    string    `json:"status"`
	Mode      string    `json:"mode"`
}

func (GeoPosition) Topic() string { return "gll" }

// AISFragment is one armored payload fragment from a VDM or VDO
// sentence. Own is true for VDO (own-ship) reports. Payload is the
// six-bit armored text exactly as received; FillBits is the number of
// padding bits in the last payload character.
type AISFragment struct {
	Stamp          time.Time `json:"stamp"`
	Frame          string    `json:"frame"`
	Own            bool      `json:"own"`
	NumFragments   int64     `json:"num_fragments"`
	FragmentNumber int64     `json:"fragment_number"`
	SequenceID     int64     `json:"sequence_id"`
	Channel        string    `json:"channel"`
	Payload        string    `json:"payload"`
	FillBits       int64     `json:"fill_bits"`
}

func (f AISFragment) Topic() string {
	if f.Own {
		return "vdo"
	}
	return "vdm"
}

// RawSentence echoes a received sentence for auditing, CRLF-terminated.
type RawSentence struct {
	Stamp    time.Time `json:"stamp"`
	Frame    string    `json:"frame"`
	Sentence string    `json:"sentence"`
}

func (RawSentence) Topic() string { return "nmea_sentences" }
