package targeting

import (
	"context"
	"fmt"
	"time"

	customlog "github.com/open-teleop/movingheads/pkg/log"
)

// Driver is the single writer of a World. Each tick it samples the input,
// integrates it into the target and runs the loop.
type Driver struct {
	world     *World
	loop      *Loop
	source    SampleSource
	interval  time.Duration
	logger    customlog.Logger
	observers []Observer

	sinkFailing bool
}

// DriverOptions configures a Driver.
type DriverOptions struct {
	Sink      OutputSink
	Executor  Executor
	Source    SampleSource
	Interval  time.Duration
	Observers []Observer
}

// NewDriver creates a driver for world.
func NewDriver(world *World, logger customlog.Logger, opts DriverOptions) (*Driver, error) {
	if world == nil || world.Target == nil {
		return nil, fmt.Errorf("driver needs a world with a target")
	}
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("tick interval must be > 0, got %v", opts.Interval)
	}
	if logger == nil {
		logger = customlog.NewDiscardLogger()
	}
	return &Driver{
		world:     world,
		loop:      NewLoop(world, opts.Sink, opts.Executor),
		source:    opts.Source,
		interval:  opts.Interval,
		logger:    logger,
		observers: opts.Observers,
	}, nil
}

// Step runs one complete tick.
func (d *Driver) Step(ctx context.Context) (Frame, Report) {
	var sample Vector3
	if d.source != nil {
		sample = d.source.Sample()
	}
	d.world.Target.Integrate(sample)

	frame, report := d.loop.Run(ctx)
	d.logSink(report)

	for _, o := range d.observers {
		o.Observe(frame, report)
	}
	return frame, report
}

// Run ticks at the configured interval until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Infof("Targeting loop started: %d fixtures, tick every %v", len(d.world.Fixtures), d.interval)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Infof("Targeting loop stopped")
			return nil
		case <-ticker.C:
			d.Step(ctx)
		}
	}
}

// logSink logs sink failures when they start and when they clear.
func (d *Driver) logSink(report Report) {
	switch {
	case report.SinkErr != nil && !d.sinkFailing:
		d.sinkFailing = true
		d.logger.Errorf("Output sink failed at tick %d: %v", report.Sequence, report.SinkErr)
	case report.SinkErr == nil && d.sinkFailing:
		d.sinkFailing = false
		d.logger.Infof("Output sink recovered at tick %d", report.Sequence)
	}
}
