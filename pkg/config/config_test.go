package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

const showContent = `
# Test show matching the structure of configs/show.yaml
movingHeads:
  - position: [0.0, 0.0, 3.0]
    pan:
      channel: 1
      value: 0.0
      maxValue: 270.0
    tilt:
      channel: 2
      value: 0.0
      maxValue: 135.0
  - name: "stage-right"
    position: {x: 8.0, y: 0.0, z: 3.0}
    pan: {channel: 3, value: 0.0, maxValue: 270.0}
    tilt: {channel: 4, value: 0.0, maxValue: 135.0}
room: [10.0, 12.0, 4.0]
home: [5.0, 6.0, 0.0]
speed: 2.5
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "show.yaml", showContent)

	config, raw, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if string(raw) != showContent {
		t.Errorf("Expected raw YAML to be returned unchanged")
	}

	if len(config.MovingHeads) != 2 {
		t.Fatalf("Expected 2 moving heads, got %d", len(config.MovingHeads))
	}

	first := config.MovingHeads[0]
	if first.Name != "head-1" {
		t.Errorf("Expected default name head-1, got %s", first.Name)
	}
	if first.Position != (Vec3{0, 0, 3}) {
		t.Errorf("Expected position [0 0 3], got %v", first.Position)
	}
	if first.Pan.Channel != 1 || first.Pan.MaxValue != 270 {
		t.Errorf("Unexpected pan channel: %+v", first.Pan)
	}

	second := config.MovingHeads[1]
	if second.Name != "stage-right" {
		t.Errorf("Expected name stage-right, got %s", second.Name)
	}
	if second.Position != (Vec3{8, 0, 3}) {
		t.Errorf("Expected mapping position to decode, got %v", second.Position)
	}

	if config.Room != (Vec3{10, 12, 4}) {
		t.Errorf("Expected room [10 12 4], got %v", config.Room)
	}
	if config.LowerBound() != (Vec3{}) {
		t.Errorf("Expected origin lower bound, got %v", config.LowerBound())
	}
	if config.Speed != 2.5 {
		t.Errorf("Expected speed 2.5, got %v", config.Speed)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}
	if errors.Is(err, ErrInvalidConfig) {
		t.Errorf("A missing file is an I/O error, not ErrInvalidConfig: %v", err)
	}
}

func TestParseConfigValidation(t *testing.T) {
	head := `
movingHeads:
  - position: [0, 0, 0]
    pan: {channel: %PAN%, maxValue: %MAX%}
    tilt: {channel: 2, maxValue: 90}
`
	build := func(pan, max, rest string) string {
		s := strings.ReplaceAll(head, "%PAN%", pan)
		s = strings.ReplaceAll(s, "%MAX%", max)
		return s + rest
	}
	room := "room: [10, 10, 10]\nhome: [1, 1, 1]\nspeed: 1\n"

	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"no fixtures", "movingHeads: []\n" + room, "at least one fixture"},
		{"channel too high", build("256", "90", room), "pan.channel must be between 0 and 255"},
		{"channel negative", build("-1", "90", room), "pan.channel must be between 0 and 255"},
		{"duplicate channel", build("2", "90", room), "channel 2 is used by both"},
		{"zero max value", build("1", "0", room), "pan.maxValue must be > 0"},
		{"negative room", build("1", "90", "room: [-1, 10, 10]\nhome: [0, 0, 0]\nspeed: 1\n"), "room extents must be >= 0"},
		{"home outside room", build("1", "90", "room: [10, 10, 10]\nhome: [11, 0, 0]\nspeed: 1\n"), "outside the room"},
		{"min above room", build("1", "90", "room: [10, 10, 10]\nroomMin: [0, 11, 0]\nhome: [0, 0, 0]\nspeed: 1\n"), "exceeds room"},
		{"negative speed", build("1", "90", "room: [10, 10, 10]\nhome: [0, 0, 0]\nspeed: -1\n"), "speed must be >= 0"},
		{"short vector", build("1", "90", "room: [10, 10]\nhome: [0, 0, 0]\nspeed: 1\n"), "expected 3 components"},
		{"malformed yaml", "movingHeads: [\n", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.content))
			if err == nil {
				t.Fatal("Expected a validation error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected error to wrap ErrInvalidConfig, got %v", err)
			}
			if tc.want != "" && !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseConfigRoomMin(t *testing.T) {
	content := `
movingHeads:
  - position: [0, 0, 0]
    pan: {channel: 1, maxValue: 90}
    tilt: {channel: 2, maxValue: 90}
room: [5, 5, 5]
roomMin: [-5, -5, 0]
home: [-2, 0, 0]
speed: 1
`
	config, err := ParseConfig([]byte(content))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if config.LowerBound() != (Vec3{-5, -5, 0}) {
		t.Errorf("Expected lower bound [-5 -5 0], got %v", config.LowerBound())
	}
}

func TestVec3MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Home Vec3 `yaml:"home"`
	}{Vec3{1, 2.5, 3}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.TrimSpace(string(out)) != "home: [1, 2.5, 3]" {
		t.Errorf("Unexpected YAML: %q", string(out))
	}
}

func TestLoadBootstrapConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BootstrapFileName, `
logging:
  level: debug
server:
  http_port: 9090
zeromq:
  enabled: true
  request_bind_address: "tcp://*:5560"
  publish_bind_address: "tcp://*:5561"
input:
  gamepad:
    enabled: true
    vendor_id: 0x046d
    product_id: 0xc216
    axes:
      x: {offset: 3}
      y: {offset: 4, invert: true}
      z: {offset: 2, invert: true}
data:
  directory: "./configs"
  show_config_file: "show.yaml"
`)

	cfg, err := LoadBootstrapConfig(dir)
	if err != nil {
		t.Fatalf("LoadBootstrapConfig failed: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Server.HTTPPort != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Engine.TickRateHz != 60 {
		t.Errorf("Expected default tick rate 60, got %d", cfg.Engine.TickRateHz)
	}
	if cfg.TickInterval() != time.Second/60 {
		t.Errorf("Unexpected tick interval %v", cfg.TickInterval())
	}
	if cfg.Input.Scale != 0.01 {
		t.Errorf("Expected default scale 0.01, got %v", cfg.Input.Scale)
	}
	if cfg.SampleTimeout() != 250*time.Millisecond {
		t.Errorf("Unexpected sample timeout %v", cfg.SampleTimeout())
	}
	if cfg.Input.Gamepad.VendorID != 0x046d || cfg.Input.Gamepad.ProductID != 0xc216 {
		t.Errorf("Unexpected gamepad ids %#x:%#x", cfg.Input.Gamepad.VendorID, cfg.Input.Gamepad.ProductID)
	}
	if !cfg.Input.Gamepad.Axes.Y.Invert || cfg.Input.Gamepad.Axes.X.Offset != 3 {
		t.Errorf("Unexpected axes %+v", cfg.Input.Gamepad.Axes)
	}
	if cfg.Input.Gamepad.ReconnectInterval() != time.Second {
		t.Errorf("Unexpected reconnect interval %v", cfg.Input.Gamepad.ReconnectInterval())
	}
	if cfg.ShowConfigPath() != filepath.Join("./configs", "show.yaml") {
		t.Errorf("Unexpected show config path %s", cfg.ShowConfigPath())
	}
}

func TestLoadBootstrapConfigMissingFields(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"no data directory", "data:\n  show_config_file: show.yaml\n", "data.directory"},
		{"no show file", "data:\n  directory: .\n", "data.show_config_file"},
		{"zeromq without addresses", "zeromq:\n  enabled: true\ndata:\n  directory: .\n  show_config_file: s.yaml\n", "zeromq.request_bind_address"},
		{"midi without port", "midi:\n  enabled: true\ndata:\n  directory: .\n  show_config_file: s.yaml\n", "midi.port"},
		{"midi channel out of range", "midi:\n  base_channel: 15\ndata:\n  directory: .\n  show_config_file: s.yaml\n", "midi.base_channel"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, BootstrapFileName, tc.content)
			_, err := LoadBootstrapConfig(dir)
			if err == nil {
				t.Fatal("Expected an error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}
