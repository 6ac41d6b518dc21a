package targeting

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateGeometry means the target sits exactly on a fixture, so
	// there is no direction to point in.
	ErrDegenerateGeometry = errors.New("degenerate geometry: target coincides with fixture")
	// ErrOutOfRange means a solved angle exceeds the channel's configured maximum.
	ErrOutOfRange = errors.New("channel value out of range")
)

// DiagnosticKind classifies a per-fixture problem found during a tick.
type DiagnosticKind string

const (
	KindDegenerateGeometry DiagnosticKind = "degenerate_geometry"
	KindOutOfRange         DiagnosticKind = "out_of_range"
)

// Diagnostic reports one fixture failure in one tick. It never aborts the tick.
type Diagnostic struct {
	Kind     DiagnosticKind
	Fixture  int    // index in the rig
	Name     string // fixture name
	Channel  string // "pan" or "tilt", empty for geometry problems
	Value    float64
	MaxValue float64
	Err      error
}

func (d Diagnostic) Error() string {
	return d.Err.Error()
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Report is the diagnostics side of a tick, returned next to its Frame.
type Report struct {
	Sequence    uint64
	Diagnostics []Diagnostic
	SinkErr     error
}

// OK reports whether the tick completed without any diagnostic or sink error.
func (r Report) OK() bool {
	return len(r.Diagnostics) == 0 && r.SinkErr == nil
}

// Count returns the number of diagnostics of the given kind.
func (r Report) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

func degenerateDiagnostic(index int, name string) Diagnostic {
	return Diagnostic{
		Kind:    KindDegenerateGeometry,
		Fixture: index,
		Name:    name,
		Err:     fmt.Errorf("fixture %q: %w", name, ErrDegenerateGeometry),
	}
}

func outOfRangeDiagnostic(index int, name, channel string, c Channel) Diagnostic {
	return Diagnostic{
		Kind:     KindOutOfRange,
		Fixture:  index,
		Name:     name,
		Channel:  channel,
		Value:    c.Value,
		MaxValue: c.MaxValue,
		Err:      fmt.Errorf("fixture %q %s %.2f exceeds ±%.2f: %w", name, channel, c.Value, c.MaxValue, ErrOutOfRange),
	}
}
