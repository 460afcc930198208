package app

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/config"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/driver"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/sink"
)

// RunProducer opens the configured NMEA source (serial receiver or TCP
// multiplexer), feeds every line through the sentence driver, and
// publishes the decoded reports as JSON over MQTT.
func RunProducer(cfg config.Config) error {
	out, err := sink.NewMQTT(cfg.MQTT.Broker, "navsat-producer", cfg.MQTT.TopicPrefix)
	if err != nil {
		return err
	}
	defer out.Close()
	log.Printf("producer: connected to MQTT broker at %s", cfg.MQTT.Broker)

	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	drv := driver.New(driverConfig(cfg.Driver), out)

	stop := startStatusTicker(cfg.Driver.StatusEvery(), drv, out)
	defer stop()

	return feed(drv, src, cfg.Driver.Debug)
}

// openSource opens the receiver named by the configuration. Load
// rejects configurations that name both a serial port and a TCP
// address, so at most one branch applies.
func openSource(cfg config.Config) (io.ReadCloser, error) {
	switch {
	case cfg.Serial.Port != "":
		opts := serial.OpenOptions{
			PortName:              cfg.Serial.Port,
			BaudRate:              cfg.Serial.Baud,
			DataBits:              8,
			StopBits:              1,
			MinimumReadSize:       1,
			ParityMode:            serial.PARITY_NONE,
			InterCharacterTimeout: 0,
		}
		port, err := serial.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open serial port %s: %w", cfg.Serial.Port, err)
		}
		log.Printf("producer: serial port %s open at %d baud", cfg.Serial.Port, cfg.Serial.Baud)
		return port, nil

	case cfg.TCP.Addr != "":
		conn, err := net.Dial("tcp", cfg.TCP.Addr)
		if err != nil {
			return nil, fmt.Errorf("connect to NMEA stream %s: %w", cfg.TCP.Addr, err)
		}
		log.Printf("producer: connected to NMEA stream at %s", cfg.TCP.Addr)
		return conn, nil
	}
	return nil, fmt.Errorf("no NMEA source configured: set serial.port or tcp.addr")
}

// feed pumps lines from r into the driver until the stream ends.
func feed(drv *driver.Driver, r io.Reader, debug bool) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("producer: read error: %v", err)
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Bad sentences are counted in the driver status; the per-line
		// detail is only worth logging when debugging a receiver.
		if err := drv.AddSentence(line); err != nil && debug {
			log.Printf("producer: %v (%q)", err, line)
		}
	}
}

// startStatusTicker publishes the driver's status snapshot every
// interval. The returned func stops the ticker.
func startStatusTicker(every time.Duration, drv *driver.Driver, out sink.Sink) func() {
	if every <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(every)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := out.Emit(drv.Status()); err != nil {
					log.Printf("producer: status publish error: %v", err)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}

// driverConfig maps the file configuration onto the driver options.
func driverConfig(dc config.DriverConfig) driver.Config {
	return driver.Config{
		FrameID:       dc.FrameID,
		FramePrefix:   dc.FramePrefix,
		TimeRefSource: dc.TimeRefSource,
		UseGNSSTime:   dc.UseGNSSTime,
		UseRMC:        dc.UseRMC,
		EPEQuality0:   dc.EPEQuality0,
		EPEQuality1:   dc.EPEQuality1,
		EPEQuality2:   dc.EPEQuality2,
		EPEQuality4:   dc.EPEQuality4,
		EPEQuality5:   dc.EPEQuality5,
		EPEQuality9:   dc.EPEQuality9,
		EchoBlacklist: dc.EchoBlacklist,
		Debug:         dc.Debug,
	}
}
