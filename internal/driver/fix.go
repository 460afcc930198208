package driver

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/report"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/units"
)

const validityActive = "A"

func (d *Driver) handleGGA(stamp time.Time, m nmea.GGA) error {
	gnss, timeOK := atTimeOfDay(stamp, m.Time)

	fixStamp := stamp
	if d.cfg.UseGNSSTime {
		if !timeOK {
			return d.failTime(nmea.TypeGGA)
		}
		fixStamp = gnss
	}

	q, code := d.table.lookup(fixCode(m.FixQuality))
	d.validFix = code > 0

	lonStd, latStd, altStd := d.effectiveStdDevs(q.defaultEPE)

	alt := m.Altitude + m.Separation
	fix := report.Fix{
		Stamp:          fixStamp,
		Frame:          d.frame,
		Status:         q.status,
		Service:        report.ServiceGPS,
		Latitude:       m.Latitude,
		Longitude:      m.Longitude,
		Altitude:       &alt,
		CovarianceType: q.covariance,
	}
	fix.PositionCovariance[0] = sq(m.HDOP * lonStd)
	fix.PositionCovariance[4] = sq(m.HDOP * latStd)
	// TODO: confirm the doubled altitude term against the receiver manual.
	fix.PositionCovariance[8] = sq(2 * m.HDOP * altStd)

	d.emit(fix)

	if timeOK && !d.cfg.UseGNSSTime {
		d.emit(report.TimeReference{
			Stamp:   stamp,
			Frame:   d.frame,
			TimeRef: gnss,
			Source:  d.timeSource(),
		})
	}
	return nil
}

func (d *Driver) handleRMC(stamp time.Time, m nmea.RMC) error {
	gnss, timeOK := atDate(stamp, m.Date, m.Time)

	fixStamp := stamp
	if d.cfg.UseGNSSTime {
		if !timeOK {
			return d.failTime(nmea.TypeRMC)
		}
		fixStamp = gnss
	}

	valid := m.Validity == validityActive

	if d.cfg.UseRMC && valid {
		d.emit(report.Fix{
			Stamp:          fixStamp,
			Frame:          d.frame,
			Status:         report.StatusFix,
			Service:        report.ServiceGPS,
			Latitude:       m.Latitude,
			Longitude:      m.Longitude,
			CovarianceType: report.CovarianceUnknown,
		})
		if timeOK && !d.cfg.UseGNSSTime {
			d.emit(report.TimeReference{
				Stamp:   stamp,
				Frame:   d.frame,
				TimeRef: gnss,
				Source:  d.timeSource(),
			})
		}
	}

	if valid {
		speed := units.KnotsToMPS(m.Speed)
		course := units.DegToRad(m.Course)
		d.emit(report.Velocity{
			Stamp: stamp,
			Frame: d.frame,
			VX:    speed * math.Sin(course),
			VY:    speed * math.Cos(course),
		})
	}
	return nil
}

// handleGST latches the receiver's own error statistics. This is the
// only place the stored standard deviations change.
func (d *Driver) handleGST(m errorStats) {
	d.usingReceiverEPE = true
	d.lonStdDev = m.LongitudeSD
	d.latStdDev = m.LatitudeSD
	d.altStdDev = m.AltitudeSD
}

// effectiveStdDevs returns the standard deviations used to size
// covariance: the receiver-reported values when GST has provided them,
// otherwise the quality default (doubled for the vertical axis).
func (d *Driver) effectiveStdDevs(defaultEPE float64) (lon, lat, alt float64) {
	lon, lat, alt = d.lonStdDev, d.latStdDev, d.altStdDev
	if !d.usingReceiverEPE || math.IsNaN(lon) {
		lon = defaultEPE
	}
	if !d.usingReceiverEPE || math.IsNaN(lat) {
		lat = defaultEPE
	}
	if !d.usingReceiverEPE || math.IsNaN(alt) {
		alt = defaultEPE * 2
	}
	return lon, lat, alt
}

// fixCode parses a GGA fix quality field. Anything unparsable counts
// as unknown.
func fixCode(quality string) int {
	code, err := strconv.Atoi(strings.TrimSpace(quality))
	if err != nil {
		return -1
	}
	return code
}

func sq(v float64) float64 { return v * v }

func nan() float64 { return math.NaN() }

// known converts a stored standard deviation to its published form,
// nil while no GST sentence has set it.
func known(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
