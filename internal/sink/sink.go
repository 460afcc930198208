// Package sink distributes driver reports to their consumers.
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/report"
)

// Sink receives one Emit call per report the driver produces. Emit may
// block (broker backpressure); the driver treats emit failures as
// per-report, never fatal.
type Sink interface {
	Emit(r report.Report) error
}

// Collector keeps every emitted report in memory. It is the test double
// for the driver and the inspection sink for replays.
type Collector struct {
	mu      sync.Mutex
	reports []report.Report
}

func (c *Collector) Emit(r report.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
	return nil
}

// Reports returns a copy of everything emitted so far.
func (c *Collector) Reports() []report.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]report.Report, len(c.reports))
	copy(out, c.reports)
	return out
}

// ByTopic returns the emitted reports whose topic matches.
func (c *Collector) ByTopic(topic string) []report.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []report.Report
	for _, r := range c.reports {
		if r.Topic() == topic {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of reports emitted so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reports)
}

// Reset discards all recorded reports.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = nil
}

// Multi fans every report out to several sinks, returning the first
// error encountered after all sinks have been offered the report.
type Multi []Sink

func (m Multi) Emit(r report.Report) error {
	var first error
	for _, s := range m {
		if err := s.Emit(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Writer prints each report as one "topic json" line, for replays and
// debugging without a broker.
type Writer struct {
	mu sync.Mutex
	W  io.Writer
}

func (w *Writer) Emit(r report.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintf(w.W, "%s %s\n", r.Topic(), payload)
	return err
}
