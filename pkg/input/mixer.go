package input

import (
	"github.com/golang/geo/r3"
)

// Source yields a normalized sample with every axis in [-1, 1].
type Source interface {
	Sample() r3.Vector
}

// Mixer adds up several sources and converts the result into a per-tick
// displacement.
type Mixer struct {
	sources []Source
	scale   float64
}

// NewMixer creates a mixer. scale is the displacement of a fully deflected
// axis, before the target speed is applied.
func NewMixer(scale float64, sources ...Source) *Mixer {
	return &Mixer{sources: sources, scale: scale}
}

// Add appends a source. Not safe to call while the mixer is being sampled.
func (m *Mixer) Add(s Source) {
	m.sources = append(m.sources, s)
}

// Sample sums all sources, clamps each axis to [-1, 1] and scales it.
func (m *Mixer) Sample() r3.Vector {
	var sum r3.Vector
	for _, s := range m.sources {
		sum = sum.Add(s.Sample())
	}
	return r3.Vector{
		X: clampAxis(sum.X) * m.scale,
		Y: clampAxis(sum.Y) * m.scale,
		Z: clampAxis(sum.Z) * m.scale,
	}
}
