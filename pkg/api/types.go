package api

import (
	"github.com/golang/geo/r3"
)

// --- Data Structures for WebSocket Messages ---

// Vector3 defines a standard 3D vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TwistMsg represents a command velocity message, matching geometry_msgs/Twist.
// Only the linear part steers the target.
type TwistMsg struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// Sample returns the linear velocity as a target sample.
func (t TwistMsg) Sample() r3.Vector {
	return r3.Vector{X: t.Linear.X, Y: t.Linear.Y, Z: t.Linear.Z}
}

// SampleWriter stores the latest remote sample.
type SampleWriter interface {
	Set(sample r3.Vector)
}
