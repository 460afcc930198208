package driver

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/checksum"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/report"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/sink"
)

var arrival = time.Date(2021, 6, 8, 14, 30, 0, 0, time.UTC)

// line frames a sentence body with "$" and a computed checksum.
func line(body string) string {
	return fmt.Sprintf("$%s*%02X", body, checksum.Sum(body))
}

// bang frames an encapsulated sentence body with "!".
func bang(body string) string {
	return fmt.Sprintf("!%s*%02X", body, checksum.Sum(body))
}

func newTestDriver(cfg Config) (*Driver, *sink.Collector) {
	c := &sink.Collector{}
	return New(cfg, c), c
}

func onlyFix(t *testing.T, c *sink.Collector) report.Fix {
	t.Helper()
	fixes := c.ByTopic("fix")
	require.Len(t, fixes, 1)
	return fixes[0].(report.Fix)
}

func TestGGAProducesFixAndTimeReference(t *testing.T) {
	d, c := newTestDriver(Config{})

	err := d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47")
	require.NoError(t, err)

	fix := onlyFix(t, c)
	require.Equal(t, "gps", fix.Frame)
	require.Equal(t, arrival, fix.Stamp)
	require.Equal(t, report.StatusFix, fix.Status)
	require.Equal(t, report.ServiceGPS, fix.Service)
	require.Equal(t, report.CovarianceApproximated, fix.CovarianceType)
	require.InDelta(t, 48.1173, fix.Latitude, 1e-6)
	require.InDelta(t, 11.5166667, fix.Longitude, 1e-6)
	require.NotNil(t, fix.Altitude)
	require.InDelta(t, 592.3, *fix.Altitude, 1e-9)

	// hdop 0.9 against the quality-1 default of 4 m, doubled vertically.
	require.InDelta(t, 12.96, fix.PositionCovariance[0], 1e-9)
	require.InDelta(t, 12.96, fix.PositionCovariance[4], 1e-9)
	require.InDelta(t, 207.36, fix.PositionCovariance[8], 1e-9)

	refs := c.ByTopic("time_reference")
	require.Len(t, refs, 1)
	ref := refs[0].(report.TimeReference)
	require.Equal(t, arrival, ref.Stamp)
	require.Equal(t, time.Date(2021, 6, 8, 12, 35, 19, 0, time.UTC), ref.TimeRef)
	require.Equal(t, "gps", ref.Source)

	require.Len(t, c.ByTopic("nmea_sentences"), 1)
	require.True(t, d.Status().ValidFix)
}

func TestGGASouthWestHemispheresAreNegative(t *testing.T) {
	d, c := newTestDriver(Config{})

	raw := line("GPGGA,123519,4807.038,S,01131.000,W,1,08,0.9,545.4,M,46.9,M,,")
	require.NoError(t, d.AddSentenceAt(arrival, raw))

	fix := onlyFix(t, c)
	require.InDelta(t, -48.1173, fix.Latitude, 1e-6)
	require.InDelta(t, -11.5166667, fix.Longitude, 1e-6)
}

func TestGGAQualityMapping(t *testing.T) {
	cases := []struct {
		name    string
		quality string
		status  report.FixStatus
		cov     report.CovarianceType
		valid   bool
	}{
		{"no fix", "0", report.StatusNoFix, report.CovarianceUnknown, false},
		{"autonomous", "1", report.StatusFix, report.CovarianceApproximated, true},
		{"differential", "2", report.StatusSBASFix, report.CovarianceApproximated, true},
		{"rtk fixed", "4", report.StatusGBASFix, report.CovarianceApproximated, true},
		{"rtk float", "5", report.StatusGBASFix, report.CovarianceApproximated, true},
		{"waas", "9", report.StatusGBASFix, report.CovarianceApproximated, true},
		{"unlisted code", "8", report.StatusNoFix, report.CovarianceUnknown, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, c := newTestDriver(Config{})

			raw := line("GPGGA,123519,4807.038,N,01131.000,E," + tc.quality + ",08,0.9,545.4,M,46.9,M,,")
			require.NoError(t, d.AddSentenceAt(arrival, raw))

			fix := onlyFix(t, c)
			require.Equal(t, tc.status, fix.Status)
			require.Equal(t, tc.cov, fix.CovarianceType)
			require.Equal(t, tc.valid, d.Status().ValidFix)
		})
	}
}

func TestGSTSizesCovarianceOfLaterFixes(t *testing.T) {
	d, c := newTestDriver(Config{})

	require.NoError(t, d.AddSentenceAt(arrival, line("GPGST,172814.0,0.006,0.023,0.020,273.6,0.1,0.2,0.3")))

	st := d.Status()
	require.True(t, st.UsingReceiverEPE)
	require.NotNil(t, st.LatStdDev)
	require.InDelta(t, 0.1, *st.LatStdDev, 1e-12)
	require.InDelta(t, 0.2, *st.LonStdDev, 1e-12)
	require.InDelta(t, 0.3, *st.AltStdDev, 1e-12)

	require.NoError(t, d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"))

	fix := onlyFix(t, c)
	require.InDelta(t, 0.0324, fix.PositionCovariance[0], 1e-9)
	require.InDelta(t, 0.0081, fix.PositionCovariance[4], 1e-9)
	require.InDelta(t, 0.2916, fix.PositionCovariance[8], 1e-9)

	// The fix must not consume the receiver estimates: a second fix
	// sees the same deviations.
	c.Reset()
	require.NoError(t, d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"))
	fix = onlyFix(t, c)
	require.InDelta(t, 0.0324, fix.PositionCovariance[0], 1e-9)
}

func TestGSTRepeatOverwritesInPlace(t *testing.T) {
	gst := line("GPGST,172814.0,0.006,0.023,0.020,273.6,0.1,0.2,0.3")
	gga := "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"

	once, onceSink := newTestDriver(Config{})
	twice, twiceSink := newTestDriver(Config{})

	require.NoError(t, once.AddSentenceAt(arrival, gst))
	require.NoError(t, twice.AddSentenceAt(arrival, gst))
	require.NoError(t, twice.AddSentenceAt(arrival, gst))

	a, b := once.Status(), twice.Status()
	require.Zero(t, b.Unrecognized)
	require.Equal(t, a.UsingReceiverEPE, b.UsingReceiverEPE)
	require.Equal(t, a.ValidFix, b.ValidFix)
	require.InDelta(t, *a.LatStdDev, *b.LatStdDev, 1e-12)
	require.InDelta(t, *a.LonStdDev, *b.LonStdDev, 1e-12)
	require.InDelta(t, *a.AltStdDev, *b.AltStdDev, 1e-12)

	// The next fix sees identical covariance either way.
	require.NoError(t, once.AddSentenceAt(arrival, gga))
	require.NoError(t, twice.AddSentenceAt(arrival, gga))
	require.Equal(t, onlyFix(t, onceSink).PositionCovariance, onlyFix(t, twiceSink).PositionCovariance)
}

func TestGSTWithEmptyFieldsKeepsDefaults(t *testing.T) {
	d, c := newTestDriver(Config{})

	require.NoError(t, d.AddSentenceAt(arrival, line("GPGST,172814.0,0.006,0.023,0.020,273.6,,,")))
	st := d.Status()
	require.True(t, st.UsingReceiverEPE)
	require.Nil(t, st.LatStdDev)
	require.Nil(t, st.LonStdDev)
	require.Nil(t, st.AltStdDev)

	require.NoError(t, d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"))
	fix := onlyFix(t, c)
	require.InDelta(t, 12.96, fix.PositionCovariance[0], 1e-9)
	require.InDelta(t, 207.36, fix.PositionCovariance[8], 1e-9)
}

func TestRMCProducesVelocity(t *testing.T) {
	d, c := newTestDriver(Config{})

	raw := line("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
	require.NoError(t, d.AddSentenceAt(arrival, raw))

	// Without RMC as position source there is no fix and no time
	// reference from RMC, only the east/north ground velocity.
	require.Empty(t, c.ByTopic("fix"))
	require.Empty(t, c.ByTopic("time_reference"))

	vels := c.ByTopic("vel")
	require.Len(t, vels, 1)
	vel := vels[0].(report.Velocity)
	require.Equal(t, arrival, vel.Stamp)
	require.InDelta(t, 11.468558234, vel.VX, 1e-6)
	require.InDelta(t, 1.124501967, vel.VY, 1e-6)
}

func TestRMCAsPositionSource(t *testing.T) {
	d, c := newTestDriver(Config{UseRMC: true})

	raw := line("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
	require.NoError(t, d.AddSentenceAt(arrival, raw))

	fix := onlyFix(t, c)
	require.Equal(t, report.StatusFix, fix.Status)
	require.Equal(t, report.CovarianceUnknown, fix.CovarianceType)
	require.InDelta(t, 48.1173, fix.Latitude, 1e-6)
	require.InDelta(t, 11.5166667, fix.Longitude, 1e-6)
	require.Nil(t, fix.Altitude)

	require.Len(t, c.ByTopic("time_reference"), 1)
	require.Len(t, c.ByTopic("vel"), 1)

	// GGA is dropped entirely while RMC is the position source.
	require.NoError(t, d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"))
	require.Len(t, c.ByTopic("fix"), 1)
}

func TestRMCInvalidProducesNothing(t *testing.T) {
	for _, useRMC := range []bool{false, true} {
		t.Run(fmt.Sprintf("useRMC=%v", useRMC), func(t *testing.T) {
			d, c := newTestDriver(Config{UseRMC: useRMC})

			raw := line("GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
			require.NoError(t, d.AddSentenceAt(arrival, raw))

			require.Empty(t, c.ByTopic("fix"))
			require.Empty(t, c.ByTopic("vel"))
			require.Empty(t, c.ByTopic("time_reference"))
			require.Len(t, c.ByTopic("nmea_sentences"), 1)
		})
	}
}

func TestUseGNSSTimeStampsFixesWithReceiverTime(t *testing.T) {
	d, c := newTestDriver(Config{UseGNSSTime: true})

	require.NoError(t, d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"))

	fix := onlyFix(t, c)
	require.Equal(t, time.Date(2021, 6, 8, 12, 35, 19, 0, time.UTC), fix.Stamp)
	require.Empty(t, c.ByTopic("time_reference"))
}

func TestUseGNSSTimeTakesRMCDate(t *testing.T) {
	d, c := newTestDriver(Config{UseGNSSTime: true, UseRMC: true})

	raw := line("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,130620,003.1,W")
	require.NoError(t, d.AddSentenceAt(arrival, raw))

	fix := onlyFix(t, c)
	require.Equal(t, time.Date(2020, 6, 13, 12, 35, 19, 0, time.UTC), fix.Stamp)

	// Velocity keeps the arrival stamp.
	vel := c.ByTopic("vel")[0].(report.Velocity)
	require.Equal(t, arrival, vel.Stamp)
}

func TestUseGNSSTimeRejectsSentencesWithoutTime(t *testing.T) {
	d, c := newTestDriver(Config{UseGNSSTime: true})

	require.NoError(t, d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"))
	require.True(t, d.Status().ValidFix)
	require.Len(t, c.ByTopic("fix"), 1)

	raw := line("GPGGA,,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")
	err := d.AddSentenceAt(arrival, raw)
	require.ErrorIs(t, err, ErrUnusableTime)

	// Rejected before decoding: no new fix, and the state set by the
	// good sentence survives.
	require.Len(t, c.ByTopic("fix"), 1)
	require.Len(t, c.ByTopic("nmea_sentences"), 2)

	st := d.Status()
	require.Equal(t, uint64(1), st.TimeErrors)
	require.True(t, st.ValidFix)
}

func TestChecksumMismatchDropsSentenceButEchoes(t *testing.T) {
	d, c := newTestDriver(Config{})

	err := d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*00")
	require.ErrorIs(t, err, ErrChecksum)

	require.Empty(t, c.ByTopic("fix"))
	require.Len(t, c.ByTopic("nmea_sentences"), 1)

	st := d.Status()
	require.Equal(t, uint64(1), st.ChecksumErrors)
	require.Contains(t, st.LastError, "checksum")
}

func TestUnrecognizedTypeIsDroppedSilently(t *testing.T) {
	d, c := newTestDriver(Config{})

	require.NoError(t, d.AddSentenceAt(arrival, line("GPXYZ,1,2,3")))
	require.NoError(t, d.AddSentenceAt(arrival, line("PSRF103,00,01,00,01")))

	// Nothing but the raw echoes.
	require.Equal(t, 2, c.Len())
	require.Len(t, c.ByTopic("nmea_sentences"), 2)

	st := d.Status()
	require.Equal(t, uint64(2), st.Unrecognized)
	require.Empty(t, st.LastError)
}

func TestParseFailure(t *testing.T) {
	d, c := newTestDriver(Config{})

	err := d.AddSentenceAt(arrival, line("GPGGA,123519"))
	require.ErrorIs(t, err, ErrParse)

	require.Empty(t, c.ByTopic("fix"))
	require.Equal(t, uint64(1), d.Status().ParseErrors)
}

func TestEchoSplitsMultiplexedInput(t *testing.T) {
	d, c := newTestDriver(Config{})

	blob := line("GPHDT,274.07,T") + "\\" + bang("AIVDM,1,1,,B,177KQJ5000G?tO`K>RA1wUbN0TKH,0")
	err := d.AddSentenceAt(arrival, blob)
	require.ErrorIs(t, err, ErrChecksum)

	raws := c.ByTopic("nmea_sentences")
	require.Len(t, raws, 2)
	first := raws[0].(report.RawSentence)
	require.Equal(t, line("GPHDT,274.07,T")+"\r\n", first.Sentence)
	second := raws[1].(report.RawSentence)
	require.Equal(t, bang("AIVDM,1,1,,B,177KQJ5000G?tO`K>RA1wUbN0TKH,0")+"\r\n", second.Sentence)

	// The multiplexed blob itself never parses.
	require.Equal(t, 2, c.Len())
}

func TestEchoSkipsBlacklistedPrefixes(t *testing.T) {
	d, c := newTestDriver(Config{})

	blob := line("AGRSA,10.5,A,,V") + "\\" + line("GPHDT,274.07,T")
	require.Error(t, d.AddSentenceAt(arrival, blob))

	raws := c.ByTopic("nmea_sentences")
	require.Len(t, raws, 1)
	require.Contains(t, raws[0].(report.RawSentence).Sentence, "GPHDT")
}

func TestTrailingCRLFIsAccepted(t *testing.T) {
	d, c := newTestDriver(Config{})

	require.NoError(t, d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"))
	require.Len(t, c.ByTopic("fix"), 1)

	raw := c.ByTopic("nmea_sentences")[0].(report.RawSentence)
	require.Equal(t, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n", raw.Sentence)
}

func TestFrameResolution(t *testing.T) {
	cases := []struct {
		cfg  Config
		want string
	}{
		{Config{}, "gps"},
		{Config{FrameID: "gnss1"}, "gnss1"},
		{Config{FramePrefix: "bow"}, "bow/gps"},
		{Config{FrameID: "gnss1", FramePrefix: "stbd"}, "stbd/gnss1"},
	}
	for _, tc := range cases {
		if got := tc.cfg.Frame(); got != tc.want {
			t.Errorf("Frame() with id %q prefix %q = %q, want %q",
				tc.cfg.FrameID, tc.cfg.FramePrefix, got, tc.want)
		}
	}
}

func TestFrameAndTimeSourceAppearInReports(t *testing.T) {
	d, c := newTestDriver(Config{FrameID: "gnss1", FramePrefix: "stbd", TimeRefSource: "ship_clock"})

	require.NoError(t, d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"))

	fix := onlyFix(t, c)
	require.Equal(t, "stbd/gnss1", fix.Frame)

	ref := c.ByTopic("time_reference")[0].(report.TimeReference)
	require.Equal(t, "ship_clock", ref.Source)
}

func TestStatusCounters(t *testing.T) {
	d, _ := newTestDriver(Config{})

	_ = d.AddSentenceAt(arrival, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47")
	_ = d.AddSentenceAt(arrival, "$GPGGA,bad*00")
	_ = d.AddSentenceAt(arrival, line("GPXYZ,1"))
	_ = d.AddSentenceAt(arrival, line("GPGGA,123519"))

	st := d.Status()
	require.Equal(t, uint64(4), st.Sentences)
	require.Equal(t, uint64(1), st.ChecksumErrors)
	require.Equal(t, uint64(1), st.ParseErrors)
	require.Equal(t, uint64(1), st.Unrecognized)
	require.NotEmpty(t, st.LastError)
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	require.Equal(t, "gps", cfg.FrameID)
	require.InDelta(t, 1000000.0, cfg.EPEQuality0, 1e-9)
	require.InDelta(t, 4.0, cfg.EPEQuality1, 1e-9)
	require.InDelta(t, 0.1, cfg.EPEQuality2, 1e-9)
	require.InDelta(t, 0.02, cfg.EPEQuality4, 1e-9)
	require.InDelta(t, 4.0, cfg.EPEQuality5, 1e-9)
	require.InDelta(t, 3.0, cfg.EPEQuality9, 1e-9)
	require.Equal(t, DefaultEchoBlacklist(), cfg.EchoBlacklist)
}
