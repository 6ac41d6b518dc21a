package targeting

import (
	"context"
	"time"
)

// World is the state a tick works on: one target and a fixed rig.
type World struct {
	Target   *TargetController
	Fixtures []*Fixture
}

// Executor runs a batch of independent tasks and returns once all of them
// are done.
type Executor interface {
	Execute(tasks []func())
}

type inlineExecutor struct{}

func (inlineExecutor) Execute(tasks []func()) {
	for _, task := range tasks {
		task()
	}
}

// Loop is the per-tick orchestrator. It must only be run from one goroutine.
type Loop struct {
	world    *World
	sink     OutputSink
	executor Executor
	sequence uint64
	now      func() time.Time
}

// NewLoop creates a loop over world. A nil sink drops frames; a nil executor
// solves fixtures one after another.
func NewLoop(world *World, sink OutputSink, executor Executor) *Loop {
	if executor == nil {
		executor = inlineExecutor{}
	}
	return &Loop{
		world:    world,
		sink:     sink,
		executor: executor,
		now:      time.Now,
	}
}

// Run executes one tick: every fixture is aimed at a snapshot of the target,
// then the complete frame goes to the sink exactly once. Per-fixture failures
// end up in the report and never stop the other fixtures.
func (l *Loop) Run(ctx context.Context) (Frame, Report) {
	l.sequence++
	target := l.world.Target.Position()

	fixtures := l.world.Fixtures
	states := make([]FixtureState, len(fixtures))
	diagnostics := make([][]Diagnostic, len(fixtures))

	tasks := make([]func(), len(fixtures))
	for i, f := range fixtures {
		i, f := i, f
		tasks[i] = func() {
			states[i], diagnostics[i] = aim(i, f, target)
		}
	}
	l.executor.Execute(tasks)

	frame := Frame{
		Sequence:  l.sequence,
		Timestamp: l.now(),
		Target:    target,
		Fixtures:  states,
	}
	report := Report{Sequence: l.sequence}
	for _, d := range diagnostics {
		report.Diagnostics = append(report.Diagnostics, d...)
	}

	if l.sink != nil {
		report.SinkErr = l.sink.Deliver(ctx, frame)
	}
	return frame, report
}

// aim solves one fixture and range-checks the result. It only touches f, so
// fixtures can be aimed concurrently.
func aim(index int, f *Fixture, target Vector3) (FixtureState, []Diagnostic) {
	if err := f.PointAt(target); err != nil {
		state := f.state(index)
		state.Degenerate = true
		return state, []Diagnostic{degenerateDiagnostic(index, f.name)}
	}

	state := f.state(index)
	var diags []Diagnostic
	if !f.pan.InRange() {
		diags = append(diags, outOfRangeDiagnostic(index, f.name, "pan", f.pan))
	}
	if !f.tilt.InRange() {
		diags = append(diags, outOfRangeDiagnostic(index, f.name, "tilt", f.tilt))
	}
	state.OutOfRange = len(diags) > 0
	return state, diags
}
