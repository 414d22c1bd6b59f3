// Package traces exposes persisted scoring traces: the raw per-candidate
// records of a screening session, a session-level analyst summary, and
// deletion once a review is closed.
package traces

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/briar/internal/repositories/scoringtrace"
	"github.com/Ramsey-B/briar/pkg/trace"
)

// Register registers trace routes
func Register(g *echo.Group) {
	g.GET("/:sessionId", GetSession)
	g.GET("/:sessionId/summary", GetSessionSummary)
	g.DELETE("/:sessionId", DeleteSession)
}

// TraceRecord is one stored trace with its document decoded
type TraceRecord struct {
	SessionID      string              `json:"sessionId"`
	QueryName      string              `json:"queryName"`
	EntitySource   string              `json:"entitySource"`
	EntitySourceID string              `json:"entitySourceId"`
	FinalScore     float64             `json:"finalScore"`
	Trace          *trace.ScoringTrace `json:"trace"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// GetSession returns every trace recorded under one session, oldest first
func GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("sessionId")

	stored, err := getSessionTraces(ctx, sessionID)
	if err != nil {
		return err
	}

	records := make([]TraceRecord, 0, len(stored))
	for i := range stored {
		decoded, err := stored[i].Decode()
		if err != nil {
			return err
		}
		records = append(records, TraceRecord{
			SessionID:      stored[i].SessionID,
			QueryName:      stored[i].QueryName,
			EntitySource:   stored[i].EntitySource,
			EntitySourceID: stored[i].EntitySourceID,
			FinalScore:     stored[i].FinalScore,
			Trace:          decoded,
			CreatedAt:      stored[i].CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, records)
}

// GetSessionSummary condenses a session's traces into one analyst report.
// Per-candidate traces are merged before summarizing; the breakdown of the
// best-scoring candidate stands in for the session.
func GetSessionSummary(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("sessionId")

	stored, err := getSessionTraces(ctx, sessionID)
	if err != nil {
		return err
	}

	merged := &trace.ScoringTrace{SessionID: sessionID}
	best := -1.0
	for i := range stored {
		decoded, err := stored[i].Decode()
		if err != nil {
			return err
		}
		merged.Events = append(merged.Events, decoded.Events...)
		merged.DurationMs += decoded.DurationMs
		if stored[i].FinalScore > best {
			best = stored[i].FinalScore
			merged.Breakdown = decoded.Breakdown
			merged.Metadata = decoded.Metadata
		}
	}

	return c.JSON(http.StatusOK, trace.Summarize(merged))
}

// DeleteSession removes every trace recorded under one session
func DeleteSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("sessionId")

	ctx, repo, err := ectoinject.GetContext[*scoringtrace.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	deleted, err := repo.DeleteBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "session not found")
	}

	return c.NoContent(http.StatusNoContent)
}

// getSessionTraces loads a session's stored traces, 404ing when none exist
func getSessionTraces(ctx context.Context, sessionID string) ([]scoringtrace.StoredTrace, error) {
	ctx, repo, err := ectoinject.GetContext[*scoringtrace.Repository](ctx)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	stored, err := repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return stored, nil
}
