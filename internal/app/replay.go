package app

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/config"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/driver"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/sink"
)

// RunReplay feeds a recorded NMEA log through the driver, pacing the
// lines so the output resembles a live receiver. With toStdout the
// reports are printed as "topic json" lines instead of published.
func RunReplay(cfg config.Config, toStdout bool) error {
	if cfg.Replay.Path == "" {
		return fmt.Errorf("no replay file configured: set replay.path")
	}

	var out sink.Sink
	if toStdout {
		out = &sink.Writer{W: os.Stdout}
	} else {
		mq, err := sink.NewMQTT(cfg.MQTT.Broker, "navsat-replay", cfg.MQTT.TopicPrefix)
		if err != nil {
			return err
		}
		defer mq.Close()
		log.Printf("replay: connected to MQTT broker at %s", cfg.MQTT.Broker)
		out = mq
	}

	drv := driver.New(driverConfig(cfg.Driver), out)

	// A receiver emits a burst of sentences once per second; pacing
	// single lines at 10 Hz keeps bursts close together while the
	// subscribers still see a steady stream. Speed scales that rate.
	delay := time.Duration(float64(100*time.Millisecond) / cfg.Replay.Speed)

	for {
		if err := replayFile(drv, cfg.Replay.Path, delay, cfg.Driver.Debug); err != nil {
			return err
		}
		if !cfg.Replay.Loop {
			return nil
		}
		log.Printf("replay: end of %s, looping", cfg.Replay.Path)
	}
}

// replayFile plays one pass over the log. Blank lines and # comments
// are skipped so annotated captures replay cleanly.
func replayFile(drv *driver.Driver, path string, delay time.Duration, debug bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := drv.AddSentence(line); err != nil && debug {
			log.Printf("replay: %v (%q)", err, line)
		}

		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return scanner.Err()
}
