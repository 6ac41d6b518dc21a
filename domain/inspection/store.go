// Package inspection keeps the latest tick result for read-only consumers:
// the HTTP API, the state websocket, ZeroMQ snapshot requests and the console.
package inspection

import (
	"sync"
	"time"

	"github.com/open-teleop/movingheads/domain/targeting"
)

// Vec is a JSON friendly 3D point.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func vec(v targeting.Vector3) Vec {
	return Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// FixtureView is one fixture in a Snapshot.
type FixtureView struct {
	Index      int               `json:"index"`
	Name       string            `json:"name"`
	Position   Vec               `json:"position"`
	Pan        targeting.Channel `json:"pan"`
	Tilt       targeting.Channel `json:"tilt"`
	Degenerate bool              `json:"degenerate,omitempty"`
	OutOfRange bool              `json:"outOfRange,omitempty"`
}

// DiagnosticView is one diagnostic in a Snapshot.
type DiagnosticView struct {
	Kind     targeting.DiagnosticKind `json:"kind"`
	Fixture  int                      `json:"fixture"`
	Name     string                   `json:"name"`
	Channel  string                   `json:"channel,omitempty"`
	Value    float64                  `json:"value,omitempty"`
	MaxValue float64                  `json:"maxValue,omitempty"`
	Message  string                   `json:"message"`
}

// Snapshot is the JSON view of one tick.
type Snapshot struct {
	Sequence    uint64           `json:"sequence"`
	Timestamp   time.Time        `json:"timestamp"`
	Target      Vec              `json:"target"`
	Fixtures    []FixtureView    `json:"fixtures"`
	Diagnostics []DiagnosticView `json:"diagnostics"`
	SinkError   string           `json:"sinkError,omitempty"`
}

// NewSnapshot converts a tick result into its JSON view.
func NewSnapshot(frame targeting.Frame, report targeting.Report) Snapshot {
	s := Snapshot{
		Sequence:    frame.Sequence,
		Timestamp:   frame.Timestamp,
		Target:      vec(frame.Target),
		Fixtures:    make([]FixtureView, len(frame.Fixtures)),
		Diagnostics: make([]DiagnosticView, 0, len(report.Diagnostics)),
	}
	for i, f := range frame.Fixtures {
		s.Fixtures[i] = FixtureView{
			Index:      f.Index,
			Name:       f.Name,
			Position:   vec(f.Position),
			Pan:        f.Pan,
			Tilt:       f.Tilt,
			Degenerate: f.Degenerate,
			OutOfRange: f.OutOfRange,
		}
	}
	for _, d := range report.Diagnostics {
		s.Diagnostics = append(s.Diagnostics, DiagnosticView{
			Kind:     d.Kind,
			Fixture:  d.Fixture,
			Name:     d.Name,
			Channel:  d.Channel,
			Value:    d.Value,
			MaxValue: d.MaxValue,
			Message:  d.Error(),
		})
	}
	if report.SinkErr != nil {
		s.SinkError = report.SinkErr.Error()
	}
	return s
}

// Store is a targeting.Observer that keeps the latest snapshot and fans it
// out to subscribers.
type Store struct {
	mu      sync.RWMutex
	latest  Snapshot
	ok      bool
	clients map[chan Snapshot]struct{}
}

var _ targeting.Observer = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{clients: make(map[chan Snapshot]struct{})}
}

// Observe records a tick and broadcasts it. Slow subscribers miss snapshots.
func (s *Store) Observe(frame targeting.Frame, report targeting.Report) {
	snap := NewSnapshot(frame, report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snap
	s.ok = true

	for ch := range s.clients {
		select {
		case ch <- snap:
		default:
			// channel full, skip
		}
	}
}

// Latest returns the most recent snapshot. ok is false before the first tick.
func (s *Store) Latest() (snap Snapshot, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.ok
}

// Subscribe returns a channel of snapshots and a cleanup function the caller
// must call when done.
func (s *Store) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.clients, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}

// SubscriberCount returns the number of active subscribers.
func (s *Store) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
