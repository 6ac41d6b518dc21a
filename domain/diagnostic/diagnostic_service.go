package diagnostic

import (
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/open-teleop/movingheads/domain/targeting"
	customlog "github.com/open-teleop/movingheads/pkg/log"
)

// Metrics summarizes the diagnostics seen since startup
type Metrics struct {
	Timestamp     time.Time          `json:"timestamp"`
	Ticks         uint64             `json:"ticks"`
	Counts        map[string]int64   `json:"counts"` // diagnostics per kind
	SinkErrors    int64              `json:"sink_errors"`
	LastSinkError string             `json:"last_sink_error,omitempty"`
	Conditions    []FixtureCondition `json:"conditions"` // fixtures with an active problem
}

// FixtureCondition is the current problem state of one fixture
type FixtureCondition struct {
	Index      int      `json:"index"`
	Name       string   `json:"name"`
	Degenerate bool     `json:"degenerate,omitempty"`
	OutOfRange []string `json:"out_of_range,omitempty"` // channel names
}

// condition identifies one problem of one fixture
type condition struct {
	fixture int
	kind    targeting.DiagnosticKind
	channel string
}

// DiagnosticService aggregates tick reports. It logs when a fixture enters or
// leaves a problem state rather than on every tick.
type DiagnosticService struct {
	mu         sync.RWMutex
	logger     customlog.Logger
	ticks      uint64
	counts     map[targeting.DiagnosticKind]int64
	sinkErrors int64
	lastSink   string
	active     map[condition]targeting.Diagnostic
	now        func() time.Time
}

var _ targeting.Observer = (*DiagnosticService)(nil)

// NewDiagnosticService creates a new diagnostic service instance
func NewDiagnosticService(logger customlog.Logger) *DiagnosticService {
	if logger == nil {
		logger = customlog.NewDiscardLogger()
	}
	return &DiagnosticService{
		logger: logger.WithField("component", "diagnostics"),
		counts: make(map[targeting.DiagnosticKind]int64),
		active: make(map[condition]targeting.Diagnostic),
		now:    time.Now,
	}
}

// Observe records the report of one tick
func (s *DiagnosticService) Observe(frame targeting.Frame, report targeting.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks++
	if report.SinkErr != nil {
		s.sinkErrors++
		s.lastSink = report.SinkErr.Error()
	}

	seen := make(map[condition]targeting.Diagnostic, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		s.counts[d.Kind]++
		seen[condition{fixture: d.Fixture, kind: d.Kind, channel: d.Channel}] = d
	}

	for c, d := range seen {
		if _, ok := s.active[c]; !ok {
			s.fixtureLogger(d).Warnf("Fixture problem started: %v", d)
		}
		s.active[c] = d
	}
	for c, d := range s.active {
		if _, ok := seen[c]; !ok {
			s.fixtureLogger(d).Infof("Fixture problem cleared: %s", c.kind)
			delete(s.active, c)
		}
	}
}

func (s *DiagnosticService) fixtureLogger(d targeting.Diagnostic) customlog.Logger {
	fields := map[string]interface{}{
		"fixture": d.Name,
		"index":   d.Fixture,
	}
	if d.Channel != "" {
		fields["channel"] = d.Channel
	}
	return s.logger.WithFields(fields)
}

// GetMetrics returns the current diagnostics summary
func (s *DiagnosticService) GetMetrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := Metrics{
		Timestamp:     s.now(),
		Ticks:         s.ticks,
		Counts:        make(map[string]int64, len(s.counts)),
		SinkErrors:    s.sinkErrors,
		LastSinkError: s.lastSink,
		Conditions:    []FixtureCondition{},
	}
	for kind, n := range s.counts {
		m.Counts[string(kind)] = n
	}

	byFixture := make(map[int]*FixtureCondition)
	for c, d := range s.active {
		fc, ok := byFixture[c.fixture]
		if !ok {
			fc = &FixtureCondition{Index: c.fixture, Name: d.Name}
			byFixture[c.fixture] = fc
		}
		switch c.kind {
		case targeting.KindDegenerateGeometry:
			fc.Degenerate = true
		case targeting.KindOutOfRange:
			fc.OutOfRange = append(fc.OutOfRange, c.channel)
		}
	}
	for _, fc := range byFixture {
		sort.Strings(fc.OutOfRange)
		m.Conditions = append(m.Conditions, *fc)
	}
	sort.Slice(m.Conditions, func(i, j int) bool { return m.Conditions[i].Index < m.Conditions[j].Index })
	return m
}

// GetMetricsHandler handles API requests for the diagnostics summary
func (s *DiagnosticService) GetMetricsHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"metrics": s.GetMetrics(),
	})
}
