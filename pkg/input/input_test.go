package input

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/golang/geo/r3"

	"github.com/open-teleop/movingheads/pkg/config"
)

func TestLatestExpires(t *testing.T) {
	now := time.Date(2025, 4, 6, 12, 0, 0, 0, time.UTC)
	l := NewLatest(250 * time.Millisecond)
	l.now = func() time.Time { return now }

	if got := l.Sample(); got != (r3.Vector{}) {
		t.Errorf("empty sample = %v, want zero", got)
	}

	l.Set(r3.Vector{X: 0.5, Y: -0.25, Z: 1})
	now = now.Add(200 * time.Millisecond)
	if got := l.Sample(); got != (r3.Vector{X: 0.5, Y: -0.25, Z: 1}) {
		t.Errorf("fresh sample = %v", got)
	}

	now = now.Add(100 * time.Millisecond)
	if got := l.Sample(); got != (r3.Vector{}) {
		t.Errorf("stale sample = %v, want zero", got)
	}
}

func TestLatestClampsAndClears(t *testing.T) {
	l := NewLatest(0)
	l.Set(r3.Vector{X: 3, Y: math.NaN(), Z: -7})
	if got := l.Sample(); got != (r3.Vector{X: 1, Y: 0, Z: -1}) {
		t.Errorf("Sample = %v, want (1,0,-1)", got)
	}
	l.Clear()
	if got := l.Sample(); got != (r3.Vector{}) {
		t.Errorf("cleared sample = %v", got)
	}
}

type constSource r3.Vector

func (c constSource) Sample() r3.Vector { return r3.Vector(c) }

func TestMixerSumsClampsAndScales(t *testing.T) {
	m := NewMixer(0.5,
		constSource{X: 0.75, Y: -0.5},
		constSource{X: 0.75, Y: 0.25, Z: -0.5},
	)
	want := r3.Vector{X: 0.5, Y: -0.125, Z: -0.25}
	if got := m.Sample(); got != want {
		t.Errorf("Sample = %v, want %v", got, want)
	}

	m.Add(constSource{Z: -2})
	if got := m.Sample().Z; got != -0.5 {
		t.Errorf("clamped Z = %v, want -0.5", got)
	}
}

func TestMixerWithoutSourcesIsZero(t *testing.T) {
	if got := NewMixer(1).Sample(); got != (r3.Vector{}) {
		t.Errorf("Sample = %v", got)
	}
}

func TestNormalizeAxis(t *testing.T) {
	cases := []struct {
		raw    byte
		invert bool
		want   float64
	}{
		{0x00, false, -1},
		{0xff, false, 1},
		{0xff, true, -1},
		{0x80, false, 0}, // inside deadzone
		{0x7f, false, 0},
	}
	for _, c := range cases {
		if got := normalizeAxis(c.raw, c.invert, 0.08); got != c.want {
			t.Errorf("normalizeAxis(%#x, %v) = %v, want %v", c.raw, c.invert, got, c.want)
		}
	}
	if got := normalizeAxis(0xc0, false, 0.08); math.Abs(got-(192-127.5)/127.5) > 1e-12 {
		t.Errorf("normalizeAxis(0xc0) = %v", got)
	}
}

// fakeDevice serves queued reports, then blocks until closed.
type fakeDevice struct {
	reports chan []byte
	closed  chan struct{}
	once    sync.Once
}

func newFakeDevice(reports ...[]byte) *fakeDevice {
	d := &fakeDevice{reports: make(chan []byte, len(reports)), closed: make(chan struct{})}
	for _, r := range reports {
		d.reports <- r
	}
	return d
}

func (d *fakeDevice) GetInputReport() (byte, []byte, error) {
	select {
	case r := <-d.reports:
		return 0, r, nil
	case <-d.closed:
		return 0, nil, errors.New("device closed")
	}
}

func (d *fakeDevice) Close() error {
	d.once.Do(func() { close(d.closed) })
	return nil
}

func testGamepadConfig() config.GamepadConfig {
	return config.GamepadConfig{
		Enabled:             true,
		VendorID:            0x046d,
		Deadzone:            0.08,
		ReconnectIntervalMs: 5,
		Axes: config.GamepadAxes{
			X: config.AxisConfig{Offset: 3},
			Y: config.AxisConfig{Offset: 4, Invert: true},
			Z: config.AxisConfig{Offset: 2, Invert: true},
		},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestGamepadDecodesReports(t *testing.T) {
	dev := newFakeDevice([]byte{0x80, 0x80, 0x00, 0xff, 0x00})
	g := NewGamepad(testGamepadConfig(), nil)
	g.open = func() (reportReader, string, error) { return dev, "fake pad", nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	want := r3.Vector{X: 1, Y: 1, Z: 1}
	waitFor(t, func() bool { return g.Sample() == want })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
	if g.Connected() || g.Sample() != (r3.Vector{}) {
		t.Errorf("gamepad should read as disconnected after shutdown")
	}
}

func TestGamepadReconnects(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	first := newFakeDevice()
	second := newFakeDevice([]byte{0, 0, 0x80, 0x00, 0x80})

	g := NewGamepad(testGamepadConfig(), nil)
	g.open = func() (reportReader, string, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		switch attempts {
		case 1:
			return nil, "", ErrNoGamepad
		case 2:
			first.Close()
			return first, "pad", nil
		default:
			return second, "pad", nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	waitFor(t, func() bool { return g.Sample() == r3.Vector{X: -1} })
	mu.Lock()
	defer mu.Unlock()
	if attempts < 3 {
		t.Errorf("attempts = %d, want at least 3", attempts)
	}
}

func TestGamepadShortReportReadsZero(t *testing.T) {
	g := NewGamepad(testGamepadConfig(), nil)
	if got := g.decode([]byte{0xff}); got != (r3.Vector{}) {
		t.Errorf("decode = %v, want zero", got)
	}
}
