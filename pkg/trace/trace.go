// Package trace records the scoring lifecycle for debugging and audit.
// Tracing is off in the hot path: the disabled context is a no-op singleton
// and data callbacks are never invoked through it, so production scoring pays
// nothing for the capability.
package trace

import (
	"time"

	"github.com/Ramsey-B/briar/pkg/models"
)

// ScoringEvent is one recorded step in a scoring session
type ScoringEvent struct {
	Timestamp   time.Time      `json:"timestamp"`
	Phase       Phase          `json:"phase"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"`
}

// ScoringTrace is the complete record of a scoring session, returned to
// clients that requested tracing and persisted for later inspection.
type ScoringTrace struct {
	SessionID  string                 `json:"sessionId"`
	Events     []ScoringEvent         `json:"events"`
	Metadata   map[string]any         `json:"metadata,omitempty"`
	Breakdown  *models.ScoreBreakdown `json:"breakdown,omitempty"`
	DurationMs int64                  `json:"durationMs"`
}

// EventCount returns the number of recorded events
func (t *ScoringTrace) EventCount() int {
	return len(t.Events)
}

// EventsForPhase returns the events recorded under one phase
func (t *ScoringTrace) EventsForPhase(phase Phase) []ScoringEvent {
	var out []ScoringEvent
	for _, e := range t.Events {
		if e.Phase == phase {
			out = append(out, e)
		}
	}
	return out
}
