package driver

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/adrianmo/go-nmea"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/checksum"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/report"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/sink"
)

var (
	// ErrChecksum marks a sentence dropped by the integrity gate.
	ErrChecksum = errors.New("invalid checksum")
	// ErrParse marks a sentence the parser could not decode.
	ErrParse = errors.New("unparsable sentence")
	// ErrUnusableTime marks a position sentence dropped because GNSS
	// time stamping is enabled and the sentence time is not usable.
	ErrUnusableTime = errors.New("GNSS time not usable")
)

// Config holds the decoding options of a Driver. The zero value is
// usable; New fills in defaults for everything left unset.
type Config struct {
	// FrameID is the base frame name attached to every report.
	FrameID string
	// FramePrefix, when not empty, is prepended to FrameID with a "/"
	// separator (multi-receiver installations).
	FramePrefix string
	// TimeRefSource names the clock source in time reference reports.
	// Empty means the resolved frame name.
	TimeRefSource string

	// UseGNSSTime stamps position reports with the receiver's own time
	// instead of the arrival time.
	UseGNSSTime bool
	// UseRMC makes RMC the authoritative position source and drops
	// GGA-derived fixes entirely.
	UseRMC bool

	// Default estimated position error per fix quality, in meters,
	// used to size covariance until the receiver reports its own
	// error statistics.
	EPEQuality0 float64 // no fix
	EPEQuality1 float64 // autonomous fix
	EPEQuality2 float64 // differential fix
	EPEQuality4 float64 // RTK fixed integers
	EPEQuality5 float64 // RTK float
	EPEQuality9 float64 // SBAS correction

	// EchoBlacklist lists sentence prefixes that are never echoed on
	// the raw sentence topic.
	EchoBlacklist []string

	// Debug enables per-sentence parse failure logging.
	Debug bool
}

// Frame returns the fully resolved frame name.
func (c Config) Frame() string {
	id := c.FrameID
	if id == "" {
		id = "gps"
	}
	if c.FramePrefix == "" {
		return id
	}
	return c.FramePrefix + "/" + id
}

func (c *Config) applyDefaults() {
	if c.FrameID == "" {
		c.FrameID = "gps"
	}
	if c.EPEQuality0 == 0 {
		c.EPEQuality0 = 1000000
	}
	if c.EPEQuality1 == 0 {
		c.EPEQuality1 = 4.0
	}
	if c.EPEQuality2 == 0 {
		c.EPEQuality2 = 0.1
	}
	if c.EPEQuality4 == 0 {
		c.EPEQuality4 = 0.02
	}
	if c.EPEQuality5 == 0 {
		c.EPEQuality5 = 4.0
	}
	if c.EPEQuality9 == 0 {
		c.EPEQuality9 = 3.0
	}
	if c.EchoBlacklist == nil {
		c.EchoBlacklist = DefaultEchoBlacklist()
	}
}

// DefaultEchoBlacklist returns the sentence prefixes excluded from the
// raw echo topic when the configuration does not list its own.
func DefaultEchoBlacklist() []string {
	return []string{"$MXPGN", "$PSMDSTAT", "$AGRSA", "$ERRPM"}
}

// Status is a snapshot of the driver's fusion state and counters,
// published on the status topic.
type Status struct {
	Frame            string   `json:"frame"`
	ValidFix         bool     `json:"valid_fix"`
	UsingReceiverEPE bool     `json:"using_receiver_epe"`
	LonStdDev        *float64 `json:"lon_std_dev,omitempty"`
	LatStdDev        *float64 `json:"lat_std_dev,omitempty"`
	AltStdDev        *float64 `json:"alt_std_dev,omitempty"`
	Sentences        uint64   `json:"sentences"`
	ChecksumErrors   uint64   `json:"checksum_errors"`
	ParseErrors      uint64   `json:"parse_errors"`
	TimeErrors       uint64   `json:"time_errors"`
	Unrecognized     uint64   `json:"unrecognized"`
	LastError        string   `json:"last_error,omitempty"`
}

// Topic implements report.Report.
func (Status) Topic() string { return "status" }

// Driver is the stateful sentence decoder. All methods are safe for
// concurrent use.
type Driver struct {
	cfg    Config
	frame  string
	table  qualityTable
	sink   sink.Sink
	parser nmea.SentenceParser

	mu sync.Mutex

	// Receiver-reported error estimates, NaN until a GST sentence
	// provides them. Only the GST handler writes these.
	lonStdDev float64
	latStdDev float64
	altStdDev float64

	usingReceiverEPE bool
	validFix         bool

	sentences      uint64
	checksumErrors uint64
	parseErrors    uint64
	timeErrors     uint64
	unrecognized   uint64
	lastError      string
}

// New returns a Driver that decodes sentences according to cfg and
// hands every produced report to s.
func New(cfg Config, s sink.Sink) *Driver {
	cfg.applyDefaults()
	return &Driver{
		cfg:       cfg,
		frame:     cfg.Frame(),
		table:     newQualityTable(cfg),
		sink:      s,
		parser:    newSentenceParser(),
		lonStdDev: nan(),
		latStdDev: nan(),
		altStdDev: nan(),
	}
}

// AddSentence decodes one raw NMEA sentence stamped with the current
// time. See AddSentenceAt.
func (d *Driver) AddSentence(raw string) error {
	return d.AddSentenceAt(time.Now().UTC(), raw)
}

// AddSentenceAt decodes one raw NMEA sentence that arrived at stamp.
// It returns after every report derived from the sentence has been
// offered to the sink. Sentences of an unsupported type are dropped
// silently; integrity and parse failures are reported as errors and
// produce no reports beyond the raw echo.
func (d *Driver) AddSentenceAt(stamp time.Time, raw string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sentences++
	raw = strings.TrimSpace(raw)

	d.echo(stamp, raw)

	if !checksum.IsValid(raw) {
		d.checksumErrors++
		d.lastError = fmt.Sprintf("invalid checksum: %q", raw)
		log.Printf("driver: dropping sentence with invalid checksum: %q", raw)
		return fmt.Errorf("%w: %q", ErrChecksum, raw)
	}

	tag := typeTag(raw)
	if _, ok := handledTags[tag]; !ok {
		d.unrecognized++
		return nil
	}

	s, err := d.parser.Parse(raw)
	if err != nil {
		d.parseErrors++
		d.lastError = fmt.Sprintf("parse %s: %v", tag, err)
		if d.cfg.Debug {
			log.Printf("driver: could not parse %q: %v", raw, err)
		}
		return fmt.Errorf("%w: %v", ErrParse, err)
	}

	return d.handle(stamp, s)
}

// Status returns a snapshot of the fusion state and error counters.
func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		Frame:            d.frame,
		ValidFix:         d.validFix,
		UsingReceiverEPE: d.usingReceiverEPE,
		LonStdDev:        known(d.lonStdDev),
		LatStdDev:        known(d.latStdDev),
		AltStdDev:        known(d.altStdDev),
		Sentences:        d.sentences,
		ChecksumErrors:   d.checksumErrors,
		ParseErrors:      d.parseErrors,
		TimeErrors:       d.timeErrors,
		Unrecognized:     d.unrecognized,
		LastError:        d.lastError,
	}
}

// handledTags enumerates the sentence types the dispatch switch in
// handle decodes. Tags not listed here are dropped before parsing.
var handledTags = map[string]struct{}{
	nmea.TypeGGA: {},
	nmea.TypeRMC: {},
	typeGST:      {},
	nmea.TypeHDT: {},
	nmea.TypeRSA: {},
	nmea.TypeGSA: {},
	nmea.TypeZDA: {},
	nmea.TypeRPM: {},
	nmea.TypeHDG: {},
	nmea.TypeROT: {},
	nmea.TypeGSV: {},
	nmea.TypeVTG: {},
	nmea.TypeVBW: {},
	nmea.TypeGLL: {},
	nmea.TypeVDM: {},
	nmea.TypeVDO: {},
}

func (d *Driver) handle(stamp time.Time, s nmea.Sentence) error {
	switch m := s.(type) {
	case nmea.GGA:
		if d.cfg.UseRMC {
			return nil
		}
		return d.handleGGA(stamp, m)
	case nmea.RMC:
		return d.handleRMC(stamp, m)
	case errorStats:
		d.handleGST(m)
	case nmea.HDT:
		d.translateHDT(stamp, m)
	case nmea.RSA:
		d.translateRSA(stamp, m)
	case nmea.GSA:
		d.translateGSA(stamp, m)
	case nmea.ZDA:
		d.translateZDA(stamp, m)
	case engineRPM:
		d.translateRPM(stamp, m)
	case nmea.HDG:
		d.translateHDG(stamp, m)
	case nmea.ROT:
		d.translateROT(stamp, m)
	case nmea.GSV:
		d.translateGSV(stamp, m)
	case nmea.VTG:
		d.translateVTG(stamp, m)
	case waterGroundSpeeds:
		d.translateVBW(stamp, m)
	case nmea.GLL:
		d.translateGLL(stamp, m)
	case nmea.VDMVDO:
		d.translateVDMVDO(stamp, m)
	}
	return nil
}

// typeTag extracts the dispatch tag from a raw sentence: the whole
// address field for proprietary sentences, otherwise the three-letter
// type with the talker stripped.
func typeTag(raw string) string {
	if len(raw) < 2 || (raw[0] != '$' && raw[0] != '!') {
		return ""
	}
	addr := raw[1:]
	if i := strings.IndexByte(addr, ','); i >= 0 {
		addr = addr[:i]
	}
	addr = strings.ToUpper(addr)
	if strings.HasPrefix(addr, "P") {
		return addr
	}
	if len(addr) < 3 {
		return addr
	}
	return addr[len(addr)-3:]
}

// echo republishes raw sentences verbatim, before any validation, so
// downstream consumers can log exactly what the receiver produced.
// Multiplexers concatenate sentences with backslashes; each chunk is
// echoed separately. Blacklisted prefixes are skipped.
func (d *Driver) echo(stamp time.Time, raw string) {
	for _, chunk := range strings.Split(raw, "\\") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" || (chunk[0] != '$' && chunk[0] != '!') {
			continue
		}
		if d.blacklisted(chunk) {
			continue
		}
		d.emit(report.RawSentence{
			Stamp:    stamp,
			Frame:    d.frame,
			Sentence: chunk + "\r\n",
		})
	}
}

func (d *Driver) blacklisted(chunk string) bool {
	for _, prefix := range d.cfg.EchoBlacklist {
		if strings.HasPrefix(chunk, prefix) {
			return true
		}
	}
	return false
}

func (d *Driver) emit(r report.Report) {
	if d.sink == nil {
		return
	}
	if err := d.sink.Emit(r); err != nil {
		log.Printf("driver: emit %s: %v", r.Topic(), err)
	}
}

func (d *Driver) failTime(tag string) error {
	d.timeErrors++
	d.lastError = fmt.Sprintf("time in %s sentence is not valid", tag)
	log.Printf("driver: time in %s sentence is not valid", tag)
	return fmt.Errorf("%w (%s)", ErrUnusableTime, tag)
}

func (d *Driver) timeSource() string {
	if d.cfg.TimeRefSource != "" {
		return d.cfg.TimeRefSource
	}
	return d.frame
}
