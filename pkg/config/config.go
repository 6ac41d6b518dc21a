package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/golang/geo/r3"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure so callers can
// tell a malformed file from an I/O error.
var ErrInvalidConfig = errors.New("invalid configuration")

// MaxChannelID is the highest hardware channel id a fixture may use.
const MaxChannelID = 255

// Vec3 is a position or extent in room coordinates: X left/right,
// Y forward/back, Z up/down.
//
// It decodes from either a sequence ([1, 2, 3]) or a mapping ({x: 1, y: 2, z: 3}).
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Vec3) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := node.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("line %d: expected 3 components, got %d", node.Line, len(xs))
		}
		v.X, v.Y, v.Z = xs[0], xs[1], xs[2]
		return nil
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		v.X, v.Y, v.Z = m.X, m.Y, m.Z
		return nil
	default:
		return fmt.Errorf("line %d: expected a sequence or mapping for a vector", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler, writing the compact sequence form.
func (v Vec3) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range []float64{v.X, v.Y, v.Z} {
		var n yaml.Node
		if err := n.Encode(c); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &n)
	}
	return node, nil
}

// Vector converts to the r3 vector used by the targeting engine.
func (v Vec3) Vector() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

func (v Vec3) finite() bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ChannelConfig describes one motor channel of a moving head.
type ChannelConfig struct {
	Channel  int     `yaml:"channel" json:"channel"`
	Value    float64 `yaml:"value" json:"value"`       // initial value in degrees
	MaxValue float64 `yaml:"maxValue" json:"maxValue"` // |value| above this is reported
}

// MovingHeadConfig describes one physical fixture.
type MovingHeadConfig struct {
	Name     string        `yaml:"name,omitempty" json:"name"`
	Position Vec3          `yaml:"position" json:"position"`
	Pan      ChannelConfig `yaml:"pan" json:"pan"`
	Tilt     ChannelConfig `yaml:"tilt" json:"tilt"`
}

// Config is the show configuration: the rig and the room it lives in.
type Config struct {
	MovingHeads []MovingHeadConfig `yaml:"movingHeads" json:"movingHeads"`
	Room        Vec3               `yaml:"room" json:"room"`                 // upper bound of the target box
	RoomMin     *Vec3              `yaml:"roomMin,omitempty" json:"roomMin"` // lower bound, origin when omitted
	Home        Vec3               `yaml:"home" json:"home"`                 // target start position
	Speed       float64            `yaml:"speed" json:"speed"`               // gain applied to every input sample
}

// LoadConfig loads the show configuration from the specified file path.
// The returned configuration has passed Validate.
func LoadConfig(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return cfg, data, nil
}

// ParseConfig decodes and validates a show configuration.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for i := range config.MovingHeads {
		if config.MovingHeads[i].Name == "" {
			config.MovingHeads[i].Name = fmt.Sprintf("head-%d", i+1)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LowerBound returns the lower corner of the target box.
func (c *Config) LowerBound() Vec3 {
	if c.RoomMin == nil {
		return Vec3{}
	}
	return *c.RoomMin
}

// Validate checks the configuration. Every error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	if len(c.MovingHeads) == 0 {
		return fmt.Errorf("%w: movingHeads must list at least one fixture", ErrInvalidConfig)
	}

	seen := make(map[int]string)
	for i, head := range c.MovingHeads {
		if !head.Position.finite() {
			return fmt.Errorf("%w: movingHeads[%d] (%s): position must be finite", ErrInvalidConfig, i, head.Name)
		}
		for _, ch := range []struct {
			role string
			cfg  ChannelConfig
		}{{"pan", head.Pan}, {"tilt", head.Tilt}} {
			if ch.cfg.Channel < 0 || ch.cfg.Channel > MaxChannelID {
				return fmt.Errorf("%w: movingHeads[%d] (%s): %s.channel must be between 0 and %d, got %d",
					ErrInvalidConfig, i, head.Name, ch.role, MaxChannelID, ch.cfg.Channel)
			}
			if math.IsNaN(ch.cfg.MaxValue) || math.IsInf(ch.cfg.MaxValue, 0) || ch.cfg.MaxValue <= 0 {
				return fmt.Errorf("%w: movingHeads[%d] (%s): %s.maxValue must be > 0, got %g",
					ErrInvalidConfig, i, head.Name, ch.role, ch.cfg.MaxValue)
			}
			if math.IsNaN(ch.cfg.Value) || math.IsInf(ch.cfg.Value, 0) {
				return fmt.Errorf("%w: movingHeads[%d] (%s): %s.value must be finite", ErrInvalidConfig, i, head.Name, ch.role)
			}
			owner := fmt.Sprintf("%s.%s", head.Name, ch.role)
			if prev, dup := seen[ch.cfg.Channel]; dup {
				return fmt.Errorf("%w: channel %d is used by both %s and %s", ErrInvalidConfig, ch.cfg.Channel, prev, owner)
			}
			seen[ch.cfg.Channel] = owner
		}
	}

	lower := c.LowerBound()
	if !c.Room.finite() || !lower.finite() || !c.Home.finite() {
		return fmt.Errorf("%w: room, roomMin and home must be finite", ErrInvalidConfig)
	}
	if c.RoomMin == nil && (c.Room.X < 0 || c.Room.Y < 0 || c.Room.Z < 0) {
		return fmt.Errorf("%w: room extents must be >= 0, got %v", ErrInvalidConfig, c.Room)
	}
	if lower.X > c.Room.X || lower.Y > c.Room.Y || lower.Z > c.Room.Z {
		return fmt.Errorf("%w: roomMin %v exceeds room %v", ErrInvalidConfig, lower, c.Room)
	}
	if c.Home.X < lower.X || c.Home.X > c.Room.X ||
		c.Home.Y < lower.Y || c.Home.Y > c.Room.Y ||
		c.Home.Z < lower.Z || c.Home.Z > c.Room.Z {
		return fmt.Errorf("%w: home %v lies outside the room [%v, %v]", ErrInvalidConfig, c.Home, lower, c.Room)
	}
	if math.IsNaN(c.Speed) || math.IsInf(c.Speed, 0) || c.Speed < 0 {
		return fmt.Errorf("%w: speed must be >= 0, got %g", ErrInvalidConfig, c.Speed)
	}

	return nil
}
