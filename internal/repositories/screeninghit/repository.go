package screeninghit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/briar/pkg/database"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

// Hit is a persisted screening match. Every query that scored a list entry at
// or above the audit threshold leaves one of these behind for compliance
// review, whether or not the caller acted on it.
type Hit struct {
	ID             string          `db:"id"`
	SessionID      string          `db:"session_id"`
	QueryName      string          `db:"query_name"`
	EntitySource   string          `db:"entity_source"`
	EntitySourceID string          `db:"entity_source_id"`
	EntityName     string          `db:"entity_name"`
	Score          float64         `db:"score"`
	Breakdown      json.RawMessage `db:"breakdown"`
	CreatedAt      time.Time       `db:"created_at"`
}

// DecodeBreakdown unmarshals the stored factor breakdown
func (h *Hit) DecodeBreakdown() (*models.ScoreBreakdown, error) {
	var b models.ScoreBreakdown
	if err := json.Unmarshal(h.Breakdown, &b); err != nil {
		return nil, fmt.Errorf("decoding breakdown for hit %s: %w", h.ID, err)
	}
	return &b, nil
}

// Repository handles screening hit persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new screening hit repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// RecordRequest carries one hit to persist
type RecordRequest struct {
	SessionID      string
	QueryName      string
	EntitySource   models.SourceList
	EntitySourceID string
	EntityName     string
	Score          float64
	Breakdown      models.ScoreBreakdown
}

// Record persists a screening hit and returns its id
func (r *Repository) Record(ctx context.Context, req RecordRequest) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "screeninghit.Repository.Record")
	defer span.End()

	breakdown, err := json.Marshal(req.Breakdown)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to encode score breakdown")
		return "", httperror.NewHTTPError(http.StatusBadRequest, "invalid score breakdown")
	}

	id := uuid.New().String()
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("screening_hits")
	ib.Cols("id", "session_id", "query_name", "entity_source", "entity_source_id", "entity_name", "score", "breakdown", "created_at")
	ib.Values(
		id, req.SessionID, req.QueryName, string(req.EntitySource),
		req.EntitySourceID, req.EntityName, req.Score,
		json.RawMessage(breakdown), time.Now().UTC(),
	)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"entity_source":    req.EntitySource,
			"entity_source_id": req.EntitySourceID,
			"score":            req.Score,
		}).Error("Failed to record screening hit")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to record screening hit")
	}
	return id, nil
}

// ListRecent returns the newest hits, newest first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Hit, error) {
	ctx, span := tracing.StartSpan(ctx, "screeninghit.Repository.ListRecent")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "session_id", "query_name", "entity_source", "entity_source_id", "entity_name", "score", "breakdown", "created_at")
	sb.From("screening_hits")
	sb.OrderBy("created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var hits []Hit
	if err := r.db.SelectContext(ctx, &hits, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list screening hits")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list screening hits")
	}
	return hits, nil
}

// ListByEntity returns the hits recorded against one list entry, newest first
func (r *Repository) ListByEntity(ctx context.Context, source models.SourceList, sourceID string, limit int) ([]Hit, error) {
	ctx, span := tracing.StartSpan(ctx, "screeninghit.Repository.ListByEntity")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "session_id", "query_name", "entity_source", "entity_source_id", "entity_name", "score", "breakdown", "created_at")
	sb.From("screening_hits")
	sb.Where(
		sb.Equal("entity_source", string(source)),
		sb.Equal("entity_source_id", sourceID),
	)
	sb.OrderBy("created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var hits []Hit
	if err := r.db.SelectContext(ctx, &hits, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"entity_source": source, "entity_source_id": sourceID}).Error("Failed to list screening hits for entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list screening hits")
	}
	return hits, nil
}
