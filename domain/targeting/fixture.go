package targeting

import (
	"math"

	"github.com/open-teleop/movingheads/pkg/config"
)

// Channel is one motor channel of a fixture. ID is fixed at creation.
type Channel struct {
	ID       uint8   `json:"id"`
	Value    float64 `json:"value"` // degrees
	MaxValue float64 `json:"maxValue"`
}

// InRange reports whether |Value| <= MaxValue.
func (c Channel) InRange() bool {
	return math.Abs(c.Value) <= c.MaxValue
}

// Fixture is a moving head. Its position never changes after creation; only
// the pan and tilt values are rewritten, once per tick.
type Fixture struct {
	name     string
	position Vector3
	pan      Channel
	tilt     Channel
}

// NewFixture creates a fixture mounted at position.
func NewFixture(name string, position Vector3, pan, tilt Channel) *Fixture {
	return &Fixture{
		name:     name,
		position: position,
		pan:      pan,
		tilt:     tilt,
	}
}

// FixturesFromConfig builds the rig described by a validated show config.
func FixturesFromConfig(cfg *config.Config) []*Fixture {
	fixtures := make([]*Fixture, 0, len(cfg.MovingHeads))
	for _, head := range cfg.MovingHeads {
		fixtures = append(fixtures, NewFixture(
			head.Name,
			head.Position.Vector(),
			Channel{ID: uint8(head.Pan.Channel), Value: head.Pan.Value, MaxValue: head.Pan.MaxValue},
			Channel{ID: uint8(head.Tilt.Channel), Value: head.Tilt.Value, MaxValue: head.Tilt.MaxValue},
		))
	}
	return fixtures
}

func (f *Fixture) Name() string      { return f.name }
func (f *Fixture) Position() Vector3 { return f.position }
func (f *Fixture) Pan() Channel      { return f.pan }
func (f *Fixture) Tilt() Channel     { return f.tilt }

// PointAt recomputes pan and tilt for target. On error the previous values
// are left untouched.
func (f *Fixture) PointAt(target Vector3) error {
	pan, tilt, err := Solve(f.position, target)
	if err != nil {
		return err
	}
	f.pan.Value = pan
	f.tilt.Value = tilt
	return nil
}

// FixtureState is a copy of a fixture's state at the end of a tick.
type FixtureState struct {
	Index      int
	Name       string
	Position   Vector3
	Pan        Channel
	Tilt       Channel
	Degenerate bool // previous angles were kept this tick
	OutOfRange bool
}

func (f *Fixture) state(index int) FixtureState {
	return FixtureState{
		Index:    index,
		Name:     f.name,
		Position: f.position,
		Pan:      f.pan,
		Tilt:     f.tilt,
	}
}
