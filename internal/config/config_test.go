package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "navsat.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
driver:
  frame_id: gnss1
  frame_prefix: stbd
  use_rmc: true
  epe_quality1: 2.5
  echo_blacklist: []
  status_interval: 2s
serial:
  port: /dev/ttyUSB0
  baud: 38400
mqtt:
  broker: tcp://10.0.0.5:1883
  topic_prefix: ship/nav
display:
  bus: "1"
replay:
  path: cruise.nmea
  speed: 2.5
  loop: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Driver.FrameID != "gnss1" || cfg.Driver.FramePrefix != "stbd" {
		t.Errorf("driver frame = %q/%q", cfg.Driver.FrameID, cfg.Driver.FramePrefix)
	}
	if !cfg.Driver.UseRMC {
		t.Error("use_rmc not set")
	}
	if cfg.Driver.EPEQuality1 != 2.5 {
		t.Errorf("epe_quality1 = %v", cfg.Driver.EPEQuality1)
	}
	if cfg.Driver.EchoBlacklist == nil || len(cfg.Driver.EchoBlacklist) != 0 {
		t.Errorf("echo_blacklist = %#v, want empty non-nil", cfg.Driver.EchoBlacklist)
	}
	if cfg.Serial.Port != "/dev/ttyUSB0" || cfg.Serial.Baud != 38400 {
		t.Errorf("serial = %q/%d", cfg.Serial.Port, cfg.Serial.Baud)
	}
	if cfg.MQTT.Broker != "tcp://10.0.0.5:1883" || cfg.MQTT.TopicPrefix != "ship/nav" {
		t.Errorf("mqtt = %q/%q", cfg.MQTT.Broker, cfg.MQTT.TopicPrefix)
	}
	if cfg.Replay.Path != "cruise.nmea" || cfg.Replay.Speed != 2.5 || !cfg.Replay.Loop {
		t.Errorf("replay = %+v", cfg.Replay)
	}
	if cfg.Display.Bus != "1" {
		t.Errorf("display bus = %q, want 1", cfg.Display.Bus)
	}
	if cfg.Driver.StatusEvery() != 2*time.Second {
		t.Errorf("status interval = %v, want 2s", cfg.Driver.StatusEvery())
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "serial:\n  port: /dev/ttyAMA0\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Serial.Baud != 4800 {
		t.Errorf("baud = %d, want 4800", cfg.Serial.Baud)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("broker = %q", cfg.MQTT.Broker)
	}
	if cfg.MQTT.TopicPrefix != "navsat" {
		t.Errorf("topic_prefix = %q", cfg.MQTT.TopicPrefix)
	}
	if cfg.Web.Addr != ":8080" || cfg.Web.Assets != "web" {
		t.Errorf("web = %q/%q", cfg.Web.Addr, cfg.Web.Assets)
	}
	if cfg.Driver.StatusEvery() != 5*time.Second {
		t.Errorf("status interval = %v, want 5s", cfg.Driver.StatusEvery())
	}
	if cfg.Replay.Speed != 1 {
		t.Errorf("replay speed = %v", cfg.Replay.Speed)
	}
	if cfg.Driver.EchoBlacklist != nil {
		t.Errorf("echo_blacklist should stay nil when absent, got %#v", cfg.Driver.EchoBlacklist)
	}
}

func TestLoadRejectsDualSources(t *testing.T) {
	_, err := Load(writeConfig(t, "serial:\n  port: /dev/ttyUSB0\ntcp:\n  addr: 10.0.0.9:10110\n"))
	if err == nil {
		t.Fatal("expected error for serial and tcp both set")
	}
}

func TestLoadRejectsNegativeReplaySpeed(t *testing.T) {
	_, err := Load(writeConfig(t, "replay:\n  path: log.nmea\n  speed: -1\n"))
	if err == nil {
		t.Fatal("expected error for negative replay speed")
	}
}

func TestLoadRejectsBadStatusInterval(t *testing.T) {
	_, err := Load(writeConfig(t, "driver:\n  status_interval: soon\n"))
	if err == nil {
		t.Fatal("expected error for unparsable status_interval")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "driver: [")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
