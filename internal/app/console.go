package app

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/config"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/driver"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/report"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/units"
)

// RunConsole subscribes to the navigation topics and prints one line
// per report until interrupted.
func RunConsole(cfg config.Config) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID("navsat-console")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTT.Broker)

	prefix := cfg.MQTT.TopicPrefix

	// Subscribe to position fixes
	fixToken := client.Subscribe(prefix+"/fix", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f report.Fix
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("console: fix unmarshal error: %v", err)
			return
		}

		alt := "n/a"
		if f.Altitude != nil {
			alt = fmt.Sprintf("%.1fm", *f.Altitude)
		}
		fmt.Printf(
			"[FIX ]  lat=%.7f lon=%.7f alt=%s status=%d cov_type=%d frame=%s\n",
			f.Latitude, f.Longitude, alt, f.Status, f.CovarianceType, f.Frame,
		)
	})
	fixToken.Wait()
	if fixToken.Error() != nil {
		return fixToken.Error()
	}
	log.Printf("console: subscribed to %s/fix", prefix)

	// Subscribe to ground velocity
	velToken := client.Subscribe(prefix+"/vel", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v report.Velocity
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("console: velocity unmarshal error: %v", err)
			return
		}

		sog := math.Hypot(v.VX, v.VY) / units.KnotsToMetersPerSecond
		cog := units.RadToDeg(math.Atan2(v.VX, v.VY))
		if cog < 0 {
			cog += 360
		}
		fmt.Printf(
			"[VEL ]  vx=%6.2f vy=%6.2f  sog=%.1fkn cog=%.1f°\n",
			v.VX, v.VY, sog, cog,
		)
	})
	velToken.Wait()
	if velToken.Error() != nil {
		return velToken.Error()
	}
	log.Printf("console: subscribed to %s/vel", prefix)

	// Subscribe to receiver time
	timeToken := client.Subscribe(prefix+"/time_reference", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var t report.TimeReference
		if err := json.Unmarshal(msg.Payload(), &t); err != nil {
			log.Printf("console: time reference unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[TIME]  ref=%s source=%s\n",
			t.TimeRef.Format(time.RFC3339Nano), t.Source,
		)
	})
	timeToken.Wait()
	if timeToken.Error() != nil {
		return timeToken.Error()
	}
	log.Printf("console: subscribed to %s/time_reference", prefix)

	// Subscribe to driver status
	statusToken := client.Subscribe(prefix+"/status", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s driver.Status
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: status unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[STAT]  valid_fix=%t sentences=%d checksum_err=%d parse_err=%d time_err=%d unrecognized=%d\n",
			s.ValidFix, s.Sentences, s.ChecksumErrors, s.ParseErrors, s.TimeErrors, s.Unrecognized,
		)
	})
	statusToken.Wait()
	if statusToken.Error() != nil {
		return statusToken.Error()
	}
	log.Printf("console: subscribed to %s/status", prefix)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
