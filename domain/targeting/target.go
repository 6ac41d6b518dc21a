package targeting

import (
	"fmt"
	"math"

	"github.com/open-teleop/movingheads/pkg/config"
)

// TargetController owns the target point, the box it must stay in and the
// speed gain applied to input samples.
//
// It keeps no memory besides the stored position: any number of Integrate
// calls, at any rate, re-derive the result from that position alone.
type TargetController struct {
	position Vector3
	min      Vector3
	max      Vector3
	speed    float64
}

// NewTargetController creates a controller starting at home. The box must be
// well formed, home must lie inside it and speed must be finite and >= 0.
func NewTargetController(home, min, max Vector3, speed float64) (*TargetController, error) {
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return nil, fmt.Errorf("%w: lower bound %v exceeds upper bound %v", config.ErrInvalidConfig, min, max)
	}
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed < 0 {
		return nil, fmt.Errorf("%w: speed must be finite and >= 0, got %g", config.ErrInvalidConfig, speed)
	}
	if clampVector(home, min, max) != home {
		return nil, fmt.Errorf("%w: home %v lies outside [%v, %v]", config.ErrInvalidConfig, home, min, max)
	}
	return &TargetController{
		position: home,
		min:      min,
		max:      max,
		speed:    speed,
	}, nil
}

// TargetFromConfig creates the controller described by a validated show config.
func TargetFromConfig(cfg *config.Config) (*TargetController, error) {
	return NewTargetController(cfg.Home.Vector(), cfg.LowerBound().Vector(), cfg.Room.Vector(), cfg.Speed)
}

// Integrate moves the target by sample*speed and clamps every axis to the box.
// Non-finite sample components count as zero. The clamped position is returned.
func (t *TargetController) Integrate(sample Vector3) Vector3 {
	delta := Vector3{X: finiteOrZero(sample.X), Y: finiteOrZero(sample.Y), Z: finiteOrZero(sample.Z)}
	t.position = clampVector(t.position.Add(delta.Mul(t.speed)), t.min, t.max)
	return t.position
}

// Position returns the current target position.
func (t *TargetController) Position() Vector3 { return t.position }

// Bounds returns the lower and upper corners of the box.
func (t *TargetController) Bounds() (min, max Vector3) { return t.min, t.max }

// Speed returns the gain applied to every sample.
func (t *TargetController) Speed() float64 { return t.speed }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func clampVector(v, lo, hi Vector3) Vector3 {
	return Vector3{
		X: clamp(v.X, lo.X, hi.X),
		Y: clamp(v.Y, lo.Y, hi.Y),
		Z: clamp(v.Z, lo.Z, hi.Z),
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
