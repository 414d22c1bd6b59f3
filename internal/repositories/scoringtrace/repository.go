package scoringtrace

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
	"github.com/Ramsey-B/briar/pkg/trace"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

// StoredTrace is a persisted scoring trace row
type StoredTrace struct {
	ID             string          `db:"id"`
	SessionID      string          `db:"session_id"`
	QueryName      string          `db:"query_name"`
	EntitySource   string          `db:"entity_source"`
	EntitySourceID string          `db:"entity_source_id"`
	FinalScore     float64         `db:"final_score"`
	Trace          json.RawMessage `db:"trace"`
	CreatedAt      time.Time       `db:"created_at"`
}

// Decode unmarshals the stored trace document
func (st *StoredTrace) Decode() (*trace.ScoringTrace, error) {
	var t trace.ScoringTrace
	if err := json.Unmarshal(st.Trace, &t); err != nil {
		return nil, fmt.Errorf("decoding trace %s: %w", st.ID, err)
	}
	return &t, nil
}

// Record is one trace ready to persist. A search session that traces five
// candidates produces five records sharing one session id.
type Record struct {
	SessionID      string
	QueryName      string
	EntitySource   string
	EntitySourceID string
	FinalScore     float64
	Trace          *trace.ScoringTrace
}

// Repository handles scoring trace persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new scoring trace repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// SaveAll persists a batch of traces in a single insert
func (r *Repository) SaveAll(ctx context.Context, records []Record) error {
	ctx, span := tracing.StartSpan(ctx, "scoringtrace.Repository.SaveAll")
	defer span.End()

	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("scoring_traces")
	ib.Cols("id", "session_id", "query_name", "entity_source", "entity_source_id", "final_score", "trace", "created_at")

	for _, rec := range records {
		if rec.Trace == nil {
			continue
		}
		doc, err := json.Marshal(rec.Trace)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"session_id": rec.SessionID}).Error("Failed to encode scoring trace")
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid scoring trace")
		}
		ib.Values(
			uuid.New().String(), rec.SessionID, rec.QueryName,
			rec.EntitySource, rec.EntitySourceID, rec.FinalScore,
			json.RawMessage(doc), now,
		)
	}

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"count": len(records)}).Error("Failed to save scoring traces")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save scoring traces")
	}
	return nil
}

// GetBySessionID returns every trace recorded under one session, oldest first
func (r *Repository) GetBySessionID(ctx context.Context, sessionID string) ([]StoredTrace, error) {
	ctx, span := tracing.StartSpan(ctx, "scoringtrace.Repository.GetBySessionID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "session_id", "query_name", "entity_source", "entity_source_id", "final_score", "trace", "created_at")
	sb.From("scoring_traces")
	sb.Where(sb.Equal("session_id", sessionID))
	sb.OrderBy("created_at", "id")

	query, args := sb.Build()
	var traces []StoredTrace
	if err := r.db.SelectContext(ctx, &traces, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"session_id": sessionID}).Error("Failed to get scoring traces")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get scoring traces")
	}
	return traces, nil
}

// DeleteBySessionID removes every trace recorded under one session
func (r *Repository) DeleteBySessionID(ctx context.Context, sessionID string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "scoringtrace.Repository.DeleteBySessionID")
	defer span.End()

	del := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	del.DeleteFrom("scoring_traces")
	del.Where(del.Equal("session_id", sessionID))

	query, args := del.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"session_id": sessionID}).Error("Failed to delete scoring traces")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete scoring traces")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete scoring traces")
	}
	return affected, nil
}

// DeleteOlderThan removes traces created before the cutoff. Traces are debug
// artifacts; the retention sweep keeps the table from growing without bound.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "scoringtrace.Repository.DeleteOlderThan")
	defer span.End()

	del := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	del.DeleteFrom("scoring_traces")
	del.Where(del.LessThan("created_at", cutoff))

	query, args := del.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"cutoff": cutoff}).Error("Failed to sweep old scoring traces")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to sweep scoring traces")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to sweep scoring traces")
	}
	return affected, nil
}
