package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/config"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/driver"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/report"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/units"
)

// displayData holds the latest reports shown on the OLED.
type displayData struct {
	mu sync.RWMutex

	fix     report.Fix
	haveFix bool

	vel     report.Velocity
	haveVel bool

	status     driver.Status
	haveStatus bool
}

// RunDisplay renders the latest position on a 128x64 SSD1306 OLED.
func RunDisplay(cfg config.Config) error {
	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.Display.Bus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	// The ssd1306 driver pins the I2C address to 0x3C internally.
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: ssd1306 initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	// Data storage
	data := &displayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID("navsat-display")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTT.Broker)

	if err := subscribeReports(client, cfg.MQTT.TopicPrefix, data); err != nil {
		return err
	}

	// Display update loop
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		// Read data without copying the mutex
		data.mu.RLock()
		snapshot := displayData{
			fix:        data.fix,
			haveFix:    data.haveFix,
			vel:        data.vel,
			haveVel:    data.haveVel,
			status:     data.status,
			haveStatus: data.haveStatus,
		}
		data.mu.RUnlock()

		if err := updatePositionDisplay(dev, &snapshot); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func subscribeReports(client mqtt.Client, prefix string, data *displayData) error {
	fixToken := client.Subscribe(prefix+"/fix", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f report.Fix
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("display: fix unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.fix = f
		data.haveFix = true
		data.mu.Unlock()
	})
	fixToken.Wait()
	if fixToken.Error() != nil {
		return fixToken.Error()
	}
	log.Printf("display: subscribed to %s/fix", prefix)

	velToken := client.Subscribe(prefix+"/vel", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v report.Velocity
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("display: velocity unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.vel = v
		data.haveVel = true
		data.mu.Unlock()
	})
	velToken.Wait()
	if velToken.Error() != nil {
		return velToken.Error()
	}
	log.Printf("display: subscribed to %s/vel", prefix)

	statusToken := client.Subscribe(prefix+"/status", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s driver.Status
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("display: status unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.status = s
		data.haveStatus = true
		data.mu.Unlock()
	})
	statusToken.Wait()
	if statusToken.Error() != nil {
		return statusToken.Error()
	}
	log.Printf("display: subscribed to %s/status", prefix)

	return nil
}

func updatePositionDisplay(dev *ssd1306.Dev, data *displayData) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !data.haveFix {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("GPS Position"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		if data.haveStatus {
			// Sentence counter proves the receiver is alive while
			// it searches for satellites.
			drawer.Dot = fixed.P(0, 52)
			drawer.DrawBytes([]byte(fmt.Sprintf("%d sentences", data.status.Sentences)))
		}
		return dev.Draw(dev.Bounds(), img, image.Point{})
	}

	// Latitude
	drawer.Dot = fixed.P(0, 13)
	latDir := "N"
	lat := data.fix.Latitude
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}
	drawer.DrawBytes([]byte(fmt.Sprintf("%.4f%s", lat, latDir)))

	// Longitude
	drawer.Dot = fixed.P(0, 26)
	lonDir := "E"
	lon := data.fix.Longitude
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}
	drawer.DrawBytes([]byte(fmt.Sprintf("%.4f%s", lon, lonDir)))

	// Altitude
	drawer.Dot = fixed.P(0, 39)
	if data.fix.Altitude != nil {
		drawer.DrawBytes([]byte(fmt.Sprintf("Alt: %.0fm", *data.fix.Altitude)))
	} else {
		drawer.DrawBytes([]byte("Alt: --"))
	}

	// Fix quality and speed over ground
	drawer.Dot = fixed.P(0, 52)
	bottom := fixStatusWord(data.fix.Status)
	if data.haveVel {
		sog := math.Hypot(data.vel.VX, data.vel.VY) / units.KnotsToMetersPerSecond
		bottom = fmt.Sprintf("%s %.1fkn", bottom, sog)
	}
	drawer.DrawBytes([]byte(bottom))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func fixStatusWord(s report.FixStatus) string {
	switch s {
	case report.StatusFix:
		return "GPS"
	case report.StatusSBASFix:
		return "SBAS"
	case report.StatusGBASFix:
		return "GBAS"
	default:
		return "NO FIX"
	}
}

func showSplash(dev *ssd1306.Dev) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("NMEA navsat"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Looking for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("sats"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
