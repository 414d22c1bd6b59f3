package trace

import (
	"time"

	"github.com/Ramsey-B/briar/pkg/models"
)

// ScoringContext receives scoring lifecycle events. Scorers call it
// unconditionally; whether anything happens depends on which implementation
// the caller handed in. A context belongs to exactly one scoring session and
// must not be shared across concurrent sessions.
type ScoringContext interface {
	// Record appends a simple event.
	Record(phase Phase, description string)
	// RecordData appends an event with extra data. The callback runs only
	// when tracing is enabled, so building the map costs nothing otherwise.
	RecordData(phase Phase, description string, data func() map[string]any)
	// Traced runs op, recording its duration and outcome. A failure is
	// recorded and then returned unchanged; tracing augments errors, it
	// never swallows them.
	Traced(phase Phase, description string, op func() error) error
	// WithMetadata attaches a key to the final trace without adding an event.
	WithMetadata(key string, value any)
	// SetBreakdown stores the final score breakdown on the trace.
	SetBreakdown(breakdown models.ScoreBreakdown)
	// Enabled reports whether events are being collected.
	Enabled() bool
	// ToTrace snapshots the session. Returns nil when tracing is disabled.
	ToTrace() *ScoringTrace
}

// Disabled is the shared no-op context used for all untraced scoring
var Disabled ScoringContext = disabledContext{}

type disabledContext struct{}

func (disabledContext) Record(Phase, string) {}

func (disabledContext) RecordData(Phase, string, func() map[string]any) {}

func (disabledContext) Traced(_ Phase, _ string, op func() error) error { return op() }

func (disabledContext) WithMetadata(string, any) {}

func (disabledContext) SetBreakdown(models.ScoreBreakdown) {}

func (disabledContext) Enabled() bool { return false }

func (disabledContext) ToTrace() *ScoringTrace { return nil }

// recordingContext collects events for one scoring session. Not safe for
// concurrent use; callers serialize scoring when tracing is on.
type recordingContext struct {
	sessionID string
	startTime time.Time
	events    []ScoringEvent
	metadata  map[string]any
	breakdown *models.ScoreBreakdown
}

// NewContext creates a recording context for one scoring session
func NewContext(sessionID string) ScoringContext {
	return &recordingContext{
		sessionID: sessionID,
		startTime: time.Now(),
		events:    make([]ScoringEvent, 0, 64),
		metadata:  make(map[string]any),
	}
}

func (c *recordingContext) Record(phase Phase, description string) {
	c.events = append(c.events, ScoringEvent{
		Timestamp:   time.Now(),
		Phase:       phase,
		Description: description,
	})
}

func (c *recordingContext) RecordData(phase Phase, description string, data func() map[string]any) {
	c.events = append(c.events, ScoringEvent{
		Timestamp:   time.Now(),
		Phase:       phase,
		Description: description,
		Data:        data(),
	})
}

func (c *recordingContext) Traced(phase Phase, description string, op func() error) error {
	start := time.Now()
	err := op()
	data := map[string]any{
		"durationMs": time.Since(start).Milliseconds(),
		"success":    err == nil,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	c.events = append(c.events, ScoringEvent{
		Timestamp:   time.Now(),
		Phase:       phase,
		Description: description,
		Data:        data,
	})
	return err
}

func (c *recordingContext) WithMetadata(key string, value any) {
	c.metadata[key] = value
}

func (c *recordingContext) SetBreakdown(breakdown models.ScoreBreakdown) {
	c.breakdown = &breakdown
}

func (c *recordingContext) Enabled() bool {
	return true
}

func (c *recordingContext) ToTrace() *ScoringTrace {
	events := make([]ScoringEvent, len(c.events))
	copy(events, c.events)
	metadata := make(map[string]any, len(c.metadata))
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return &ScoringTrace{
		SessionID:  c.sessionID,
		Events:     events,
		Metadata:   metadata,
		Breakdown:  c.breakdown,
		DurationMs: time.Since(c.startTime).Milliseconds(),
	}
}
