package targeting

import (
	"context"
	"errors"
	"time"
)

// Frame is the per-tick snapshot delivered to output sinks and observers.
// It is a copy; holding on to it never aliases engine state.
type Frame struct {
	Sequence  uint64
	Timestamp time.Time
	Target    Vector3
	Fixtures  []FixtureState
}

// OutputSink receives exactly one Frame per tick, after every fixture of the
// tick has been solved.
type OutputSink interface {
	Deliver(ctx context.Context, frame Frame) error
}

// SinkFunc adapts a function to OutputSink.
type SinkFunc func(ctx context.Context, frame Frame) error

func (f SinkFunc) Deliver(ctx context.Context, frame Frame) error {
	return f(ctx, frame)
}

// MultiSink delivers the same frame to several sinks. Every sink is tried;
// the errors are joined.
type MultiSink []OutputSink

func (m MultiSink) Deliver(ctx context.Context, frame Frame) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Deliver(ctx, frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Observer is notified after every tick with the frame and its report.
type Observer interface {
	Observe(frame Frame, report Report)
}

// SampleSource yields the current input sample. A source with no device
// attached returns the zero vector.
type SampleSource interface {
	Sample() Vector3
}
