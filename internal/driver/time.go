package driver

import (
	"time"

	"github.com/adrianmo/go-nmea"
)

// atTimeOfDay combines the UTC date of stamp with a sentence's UTC
// time of day. Sentences carry no date of their own, so the arrival
// date anchors the result.
func atTimeOfDay(stamp time.Time, t nmea.Time) (time.Time, bool) {
	if !t.Valid {
		return time.Time{}, false
	}
	u := stamp.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(),
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond),
		time.UTC), true
}

// atDate is atTimeOfDay for sentences that carry their own date field,
// such as RMC. Two-digit years pivot at 2000.
func atDate(stamp time.Time, d nmea.Date, t nmea.Time) (time.Time, bool) {
	if !t.Valid {
		return time.Time{}, false
	}
	if !d.Valid {
		return atTimeOfDay(stamp, t)
	}
	return time.Date(2000+d.YY, time.Month(d.MM), d.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond),
		time.UTC), true
}
