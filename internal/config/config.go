// Package config loads the YAML configuration shared by the navsat
// commands.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the commands look for their configuration when
// no -config flag is given.
const DefaultPath = "navsat.yaml"

type Config struct {
	Driver  DriverConfig  `yaml:"driver"`
	Serial  SerialConfig  `yaml:"serial"`
	TCP     TCPConfig     `yaml:"tcp"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Web     WebConfig     `yaml:"web"`
	Display DisplayConfig `yaml:"display"`
	Replay  ReplayConfig  `yaml:"replay"`
}

// DriverConfig mirrors the decoding options of the sentence driver.
// Zero values mean the driver's own defaults.
type DriverConfig struct {
	FrameID       string   `yaml:"frame_id"`
	FramePrefix   string   `yaml:"frame_prefix"`
	TimeRefSource string   `yaml:"time_ref_source"`
	UseGNSSTime   bool     `yaml:"use_gnss_time"`
	UseRMC        bool     `yaml:"use_rmc"`
	EPEQuality0   float64  `yaml:"epe_quality0"`
	EPEQuality1   float64  `yaml:"epe_quality1"`
	EPEQuality2   float64  `yaml:"epe_quality2"`
	EPEQuality4   float64  `yaml:"epe_quality4"`
	EPEQuality5   float64  `yaml:"epe_quality5"`
	EPEQuality9   float64  `yaml:"epe_quality9"`
	EchoBlacklist []string `yaml:"echo_blacklist"`

	// StatusInterval is a duration string such as "5s". "0" disables
	// the periodic status report.
	StatusInterval string `yaml:"status_interval"`

	Debug bool `yaml:"debug"`
}

// StatusEvery returns the parsed status publishing interval. Load has
// already validated the string, so the fallback only covers configs
// built in code.
func (c DriverConfig) StatusEvery() time.Duration {
	d, err := time.ParseDuration(c.StatusInterval)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// SerialConfig selects a serial receiver. Port empty means no serial
// source.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud uint   `yaml:"baud"`
}

// TCPConfig selects a TCP sentence stream, e.g. a shipboard NMEA
// multiplexer. Addr empty means no TCP source.
type TCPConfig struct {
	Addr string `yaml:"addr"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	TopicPrefix string `yaml:"topic_prefix"`
}

type WebConfig struct {
	Addr   string `yaml:"addr"`
	Assets string `yaml:"assets"`
}

// DisplayConfig selects the I2C bus of the SSD1306 OLED. The panel's
// address is fixed at 0x3C by the device driver.
type DisplayConfig struct {
	Bus string `yaml:"bus"`
}

type ReplayConfig struct {
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"`
	Loop  bool    `yaml:"loop"`
}

// Load reads and validates the configuration at path, filling in
// defaults for everything optional.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Serial.Port != "" && cfg.TCP.Addr != "" {
		return Config{}, fmt.Errorf("serial.port and tcp.addr cannot both be set")
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 4800
	}

	if cfg.MQTT.Broker == "" {
		cfg.MQTT.Broker = "tcp://localhost:1883"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "navsat"
	}

	if cfg.Web.Addr == "" {
		cfg.Web.Addr = ":8080"
	}
	if cfg.Web.Assets == "" {
		cfg.Web.Assets = "web"
	}

	if cfg.Driver.StatusInterval == "" {
		cfg.Driver.StatusInterval = "5s"
	}
	if _, err := time.ParseDuration(cfg.Driver.StatusInterval); err != nil {
		return Config{}, fmt.Errorf("invalid status_interval %q: %v", cfg.Driver.StatusInterval, err)
	}

	if cfg.Replay.Speed < 0 {
		return Config{}, fmt.Errorf("replay.speed must be >= 0")
	}
	if cfg.Replay.Speed == 0 {
		cfg.Replay.Speed = 1
	}

	return cfg, nil
}
