package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// BootstrapFileName is the process configuration looked up in the config directory.
const BootstrapFileName = "controller_config.yaml"

// BootstrapConfig holds the initial configuration loaded from controller_config.yaml
type BootstrapConfig struct {
	Logging LoggingConfig   `yaml:"logging"`
	Server  ServerConfig    `yaml:"server"`
	Engine  EngineConfig    `yaml:"engine"`
	ZeroMQ  ZeroMQBootstrap `yaml:"zeromq"`
	MIDI    MIDIConfig      `yaml:"midi"`
	Input   InputConfig     `yaml:"input"`
	Data    DataConfig      `yaml:"data"`
}

// LoggingConfig holds logging settings from bootstrap
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// ServerConfig holds the inspection HTTP server settings. Port 0 disables it.
type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// EngineConfig controls the targeting loop scheduler.
type EngineConfig struct {
	TickRateHz int `yaml:"tick_rate_hz"`
	Workers    int `yaml:"workers"` // fixture solver workers, 0 solves inline
}

// ZeroMQBootstrap holds ZeroMQ settings from bootstrap
type ZeroMQBootstrap struct {
	Enabled              bool   `yaml:"enabled"`
	RequestBindAddress   string `yaml:"request_bind_address"`
	PublishBindAddress   string `yaml:"publish_bind_address"`
	SampleConnectAddress string `yaml:"sample_connect_address,omitempty"`
}

// MIDIConfig selects the MIDI output port used to drive the fixtures.
type MIDIConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Port        string `yaml:"port"`         // case-insensitive substring of the port name
	BaseChannel int    `yaml:"base_channel"` // 0-14, ids above 127 use BaseChannel+1
}

// AxisConfig locates one axis inside a HID input report.
type AxisConfig struct {
	Offset int  `yaml:"offset"`
	Invert bool `yaml:"invert,omitempty"`
}

// GamepadAxes maps report bytes onto target axes.
type GamepadAxes struct {
	X AxisConfig `yaml:"x"`
	Y AxisConfig `yaml:"y"`
	Z AxisConfig `yaml:"z"`
}

// GamepadConfig describes the USB HID gamepad used to steer the target.
type GamepadConfig struct {
	Enabled             bool        `yaml:"enabled"`
	VendorID            uint16      `yaml:"vendor_id"`
	ProductID           uint16      `yaml:"product_id"`
	Deadzone            float64     `yaml:"deadzone"`
	ReconnectIntervalMs int         `yaml:"reconnect_interval_ms"`
	Axes                GamepadAxes `yaml:"axes"`
}

// InputConfig holds the input sampling settings.
type InputConfig struct {
	Scale           float64       `yaml:"scale"`             // normalized axis to per-tick displacement
	SampleTimeoutMs int           `yaml:"sample_timeout_ms"` // remote samples older than this read as zero
	Gamepad         GamepadConfig `yaml:"gamepad"`
}

// DataConfig holds data directory settings from bootstrap
type DataConfig struct {
	Directory          string `yaml:"directory"`
	ShowConfigFilename string `yaml:"show_config_file"`
}

// LoadBootstrapConfig loads the bootstrap configuration from controller_config.yaml
func LoadBootstrapConfig(configDir string) (*BootstrapConfig, error) {
	bootstrapConfigPath := filepath.Join(configDir, BootstrapFileName)

	data, err := os.ReadFile(bootstrapConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error reading bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	var bootstrapCfg BootstrapConfig
	if err := yaml.Unmarshal(data, &bootstrapCfg); err != nil {
		return nil, fmt.Errorf("%w: error parsing bootstrap config file '%s': %v", ErrInvalidConfig, bootstrapConfigPath, err)
	}

	if err := bootstrapCfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &bootstrapCfg, nil
}

// applyDefaults fills optional fields and rejects missing required ones.
func (b *BootstrapConfig) applyDefaults() error {
	if b.Data.Directory == "" {
		return fmt.Errorf("%w: missing required field in bootstrap config: data.directory", ErrInvalidConfig)
	}
	if b.Data.ShowConfigFilename == "" {
		return fmt.Errorf("%w: missing required field in bootstrap config: data.show_config_file", ErrInvalidConfig)
	}
	if b.ZeroMQ.Enabled {
		if b.ZeroMQ.RequestBindAddress == "" {
			return fmt.Errorf("%w: missing required field in bootstrap config: zeromq.request_bind_address", ErrInvalidConfig)
		}
		if b.ZeroMQ.PublishBindAddress == "" {
			return fmt.Errorf("%w: missing required field in bootstrap config: zeromq.publish_bind_address", ErrInvalidConfig)
		}
	}
	if b.MIDI.Enabled && b.MIDI.Port == "" {
		return fmt.Errorf("%w: missing required field in bootstrap config: midi.port", ErrInvalidConfig)
	}
	if b.MIDI.BaseChannel < 0 || b.MIDI.BaseChannel > 14 {
		return fmt.Errorf("%w: midi.base_channel must be between 0 and 14, got %d", ErrInvalidConfig, b.MIDI.BaseChannel)
	}
	if b.Engine.Workers < 0 {
		return fmt.Errorf("%w: engine.workers must be >= 0, got %d", ErrInvalidConfig, b.Engine.Workers)
	}
	if b.Input.Gamepad.Enabled && b.Input.Gamepad.VendorID == 0 {
		return fmt.Errorf("%w: missing required field in bootstrap config: input.gamepad.vendor_id", ErrInvalidConfig)
	}

	if b.Logging.Level == "" {
		b.Logging.Level = "info"
	}
	if b.Engine.TickRateHz <= 0 {
		b.Engine.TickRateHz = 60
	}
	if b.Input.Scale <= 0 {
		b.Input.Scale = 0.01 // one hundredth of full deflection per tick
	}
	if b.Input.SampleTimeoutMs <= 0 {
		b.Input.SampleTimeoutMs = 250
	}
	if b.Input.Gamepad.Deadzone <= 0 {
		b.Input.Gamepad.Deadzone = 0.08
	}
	if b.Input.Gamepad.ReconnectIntervalMs <= 0 {
		b.Input.Gamepad.ReconnectIntervalMs = 1000
	}
	return nil
}

// ShowConfigPath returns the path of the show configuration file.
func (b *BootstrapConfig) ShowConfigPath() string {
	return filepath.Join(b.Data.Directory, b.Data.ShowConfigFilename)
}

// TickInterval returns the period between two targeting ticks.
func (b *BootstrapConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(b.Engine.TickRateHz)
}

// SampleTimeout returns how long a remote input sample stays valid.
func (b *BootstrapConfig) SampleTimeout() time.Duration {
	return time.Duration(b.Input.SampleTimeoutMs) * time.Millisecond
}

// ReconnectInterval returns the delay between two gamepad open attempts.
func (g GamepadConfig) ReconnectInterval() time.Duration {
	return time.Duration(g.ReconnectIntervalMs) * time.Millisecond
}
