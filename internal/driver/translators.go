package driver

import (
	"strconv"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/report"
)

// The translators below map auxiliary sentences one-to-one into
// reports. They read parsed fields only and never touch fusion state.

func (d *Driver) translateHDT(stamp time.Time, m nmea.HDT) {
	d.emit(report.Heading{
		Stamp:           stamp,
		Frame:           d.frame,
		Heading:         m.Heading,
		HeadingRelative: !m.True,
	})
}

// translateRSA drops zero-angle readings: autopilots idle at exactly
// zero and flood the bus with them.
func (d *Driver) translateRSA(stamp time.Time, m nmea.RSA) {
	if m.StarboardRudderAngle == 0 {
		return
	}
	d.emit(report.RudderAngle{
		Stamp: stamp,
		Frame: d.frame,
		Angle: m.StarboardRudderAngle,
	})
}

func (d *Driver) translateGSA(stamp time.Time, m nmea.GSA) {
	prns := make([]string, 12)
	copy(prns, m.SV)
	d.emit(report.SatelliteGeometry{
		Stamp:   stamp,
		Frame:   d.frame,
		Mode:    m.Mode,
		FixType: m.FixType,
		PRNs:    prns,
		PDOP:    m.PDOP,
		HDOP:    m.HDOP,
		VDOP:    m.VDOP,
	})
}

func (d *Driver) translateZDA(stamp time.Time, m nmea.ZDA) {
	r := report.DateTime{
		Stamp: stamp,
		Frame: d.frame,
		Day:   m.Day,
		Month: m.Month,
		Year:  m.Year,
	}
	if m.Time.Valid {
		r.UTC = m.Time.String()
	}
	d.emit(r)
}

func (d *Driver) translateRPM(stamp time.Time, m engineRPM) {
	d.emit(report.EngineTelemetry{
		Stamp:  stamp,
		Frame:  d.frame,
		Source: m.Source,
		Engine: m.EngineNumber,
		RPM:    m.SpeedRPM,
		Pitch:  m.PitchPercent,
		Status: m.Status,
		Hours:  m.Hours,
	})
}

func (d *Driver) translateHDG(stamp time.Time, m nmea.HDG) {
	d.emit(report.MagneticHeading{
		Stamp:         stamp,
		Frame:         d.frame,
		SensorHeading: m.Heading,
		Deviation:     m.Deviation,
		DeviationDir:  m.DeviationDirection,
		Variation:     m.Variation,
		VariationDir:  m.VariationDirection,
	})
}

func (d *Driver) translateROT(stamp time.Time, m nmea.ROT) {
	d.emit(report.RateOfTurn{
		Stamp: stamp,
		Frame: d.frame,
		Rate:  m.RateOfTurn,
		Valid: m.Valid,
	})
}

func (d *Driver) translateGSV(stamp time.Time, m nmea.GSV) {
	r := report.SatellitesInView{
		Stamp:         stamp,
		Frame:         d.frame,
		TotalMessages: m.TotalMessages,
		MessageNumber: m.MessageNumber,
		InView:        m.NumberSVsInView,
		Satellites:    make([]report.SatelliteInView, 0, len(m.Info)),
	}
	for _, sv := range m.Info {
		r.Satellites = append(r.Satellites, report.SatelliteInView{
			PRN:       sv.SVPRNNumber,
			Elevation: sv.Elevation,
			Azimuth:   sv.Azimuth,
			SNR:       sv.SNR,
		})
	}
	d.emit(r)
}

func (d *Driver) translateVTG(stamp time.Time, m nmea.VTG) {
	d.emit(report.TrackMadeGood{
		Stamp:         stamp,
		Frame:         d.frame,
		TrackTrue:     m.TrueTrack,
		TrackMagnetic: m.MagneticTrack,
		SpeedKnots:    m.GroundSpeedKnots,
		SpeedKPH:      m.GroundSpeedKPH,
		Mode:          m.FFAMode,
	})
}

func (d *Driver) translateVBW(stamp time.Time, m waterGroundSpeeds) {
	d.emit(report.RelativeSpeeds{
		Stamp:                 stamp,
		Frame:                 d.frame,
		WaterLongitudinal:     m.WaterLongitudinal,
		WaterTransverse:       m.WaterTransverse,
		WaterValid:            m.WaterValid,
		GroundLongitudinal:    m.GroundLongitudinal,
		GroundTransverse:      m.GroundTransverse,
		GroundValid:           m.GroundValid,
		SternWaterTransverse:  m.SternWaterTransverse,
		SternWaterValid:       m.SternWaterValid,
		SternGroundTransverse: m.SternGroundTransverse,
		SternGroundValid:      m.SternGroundValid,
	})
}

func (d *Driver) translateGLL(stamp time.Time, m nmea.GLL) {
	r := report.GeoPosition{
		Stamp:     stamp,
		Frame:     d.frame,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Status:    m.Validity,
		Mode:      m.FFAMode,
	}
	if m.Time.Valid {
		r.UTC = m.Time.String()
	}
	// Hemisphere letters straight off the wire; the parsed
	// coordinates above already carry the sign.
	if len(m.Fields) > 1 {
		r.LatDir = m.Fields[1]
	}
	if len(m.Fields) > 3 {
		r.LonDir = m.Fields[3]
	}
	d.emit(r)
}

func (d *Driver) translateVDMVDO(stamp time.Time, m nmea.VDMVDO) {
	frag := report.AISFragment{
		Stamp:          stamp,
		Frame:          d.frame,
		Own:            m.Type == nmea.TypeVDO,
		NumFragments:   m.NumFragments,
		FragmentNumber: m.FragmentNumber,
		SequenceID:     m.MessageID,
		Channel:        m.Channel,
	}
	// The decoded Payload field unpacks to bits; forward the armored
	// six-bit text and fill count untouched instead.
	if len(m.Fields) > 4 {
		frag.Payload = m.Fields[4]
	}
	if len(m.Fields) > 5 {
		if fill, err := strconv.ParseInt(strings.TrimSpace(m.Fields[5]), 10, 64); err == nil {
			frag.FillBits = fill
		}
	}
	d.emit(frag)
}
