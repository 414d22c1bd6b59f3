package listentity

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
	"github.com/Ramsey-B/briar/pkg/normalize"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

// ListEntity is a persisted sanctions list entry. The full entity document
// lives in Data; the scalar columns exist for querying and reporting.
type ListEntity struct {
	ID                  string          `db:"id"`
	Source              string          `db:"source"`
	SourceID            string          `db:"source_id"`
	EntityType          string          `db:"entity_type"`
	Name                string          `db:"name"`
	Data                json.RawMessage `db:"data"`
	Fingerprint         string          `db:"fingerprint"`
	PreviousFingerprint string          `db:"previous_fingerprint"`
	RunID               string          `db:"run_id"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
	DeletedAt           *time.Time      `db:"deleted_at"`
}

// Entity decodes the stored entity document
func (le *ListEntity) Entity() (*models.Entity, error) {
	var e models.Entity
	if err := json.Unmarshal(le.Data, &e); err != nil {
		return nil, fmt.Errorf("decoding list entity %s/%s: %w", le.Source, le.SourceID, err)
	}
	return &e, nil
}

// SourceCount is one row of the per-list entity census
type SourceCount struct {
	Source string `db:"source"`
	Count  int    `db:"count"`
}

// Repository handles list entity persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new list entity repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// UpsertResult contains the result of an upsert operation
type UpsertResult struct {
	Entity *ListEntity
	// IsNew is true when the row was inserted rather than updated.
	IsNew bool
	// IsChanged is true when the stored fingerprint moved; unchanged upserts
	// let callers skip reindexing and event emission.
	IsChanged bool
}

// Upsert creates or updates a list entity keyed on (source, source_id). A
// previously delisted entry that reappears in the feed is revived and reports
// IsChanged even when its content is identical, so it re-enters the index.
// The write is a single atomic INSERT ... ON CONFLICT; fingerprint movement
// is read back from the returned row. runID is the list publication run that
// carried the update; entries the next completed run does not touch are
// reconciled by DelistAbsent. Pass "" for updates outside a refresh run.
func (r *Repository) Upsert(ctx context.Context, e *models.Entity, runID string) (*UpsertResult, error) {
	ctx, span := tracing.StartSpan(ctx, "listentity.Repository.Upsert")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"source":      e.Source,
		"source_id":   e.SourceID,
		"entity_type": e.EntityType,
	})

	if e.SourceID == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "entity has no source id")
	}

	fp := ""
	if e.Prepared != nil {
		fp = e.Prepared.Fingerprint
	}
	if fp == "" {
		fp = normalize.Fingerprint(e)
	}

	data, err := json.Marshal(e)
	if err != nil {
		log.WithError(err).Error("Failed to encode entity document")
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "invalid entity document")
	}

	now := time.Now().UTC()
	query := `
		WITH upsert AS (
			INSERT INTO list_entities (
				id, source, source_id, entity_type, name, data,
				fingerprint, previous_fingerprint, run_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (source, source_id)
			DO UPDATE SET
				entity_type = EXCLUDED.entity_type,
				name = EXCLUDED.name,
				data = EXCLUDED.data,
				previous_fingerprint = CASE
					WHEN list_entities.deleted_at IS NULL THEN list_entities.fingerprint
					ELSE ''
				END,
				fingerprint = EXCLUDED.fingerprint,
				run_id = EXCLUDED.run_id,
				updated_at = EXCLUDED.updated_at,
				deleted_at = NULL
			RETURNING
				id, source, source_id, entity_type, name, data, fingerprint,
				previous_fingerprint, run_id, created_at, updated_at, deleted_at,
				(xmax = 0) AS inserted
		)
		SELECT * FROM upsert
	`

	var row struct {
		ListEntity
		Inserted bool `db:"inserted"`
	}
	if err := r.db.GetContext(ctx, &row, query,
		uuid.New().String(), string(e.Source), e.SourceID, string(e.EntityType), e.Name,
		json.RawMessage(data), fp, "", runID, now, now,
	); err != nil {
		log.WithError(err).Error("Failed to upsert list entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert list entity")
	}

	result := &UpsertResult{
		Entity:    &row.ListEntity,
		IsNew:     row.Inserted,
		IsChanged: row.Inserted || row.PreviousFingerprint != row.Fingerprint,
	}
	if result.IsNew {
		log.WithFields(map[string]any{"id": row.ID}).Info("Created list entity")
	}
	return result, nil
}

// GetBySourceID retrieves a single non-deleted entry by its list identity.
// Returns nil when no such entry exists.
func (r *Repository) GetBySourceID(ctx context.Context, source models.SourceList, sourceID string) (*ListEntity, error) {
	ctx, span := tracing.StartSpan(ctx, "listentity.Repository.GetBySourceID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "source", "source_id", "entity_type", "name", "data", "fingerprint", "previous_fingerprint", "run_id", "created_at", "updated_at", "deleted_at")
	sb.From("list_entities")
	sb.Where(
		sb.Equal("source", string(source)),
		sb.Equal("source_id", sourceID),
		sb.IsNull("deleted_at"),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var entity ListEntity
	if err := r.db.GetContext(ctx, &entity, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source": source, "source_id": sourceID}).Error("Failed to get list entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get list entity")
	}
	return &entity, nil
}

// ListActive returns every non-deleted entry. The processor replays this at
// startup to warm the in-memory index.
func (r *Repository) ListActive(ctx context.Context) ([]ListEntity, error) {
	ctx, span := tracing.StartSpan(ctx, "listentity.Repository.ListActive")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "source", "source_id", "entity_type", "name", "data", "fingerprint", "previous_fingerprint", "run_id", "created_at", "updated_at", "deleted_at")
	sb.From("list_entities")
	sb.Where(sb.IsNull("deleted_at"))
	sb.OrderBy("source", "source_id")

	query, args := sb.Build()
	var entities []ListEntity
	if err := r.db.SelectContext(ctx, &entities, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list active entities")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list entities")
	}
	return entities, nil
}

// ListBySource returns the non-deleted entries published by one list
func (r *Repository) ListBySource(ctx context.Context, source models.SourceList) ([]ListEntity, error) {
	ctx, span := tracing.StartSpan(ctx, "listentity.Repository.ListBySource")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "source", "source_id", "entity_type", "name", "data", "fingerprint", "previous_fingerprint", "run_id", "created_at", "updated_at", "deleted_at")
	sb.From("list_entities")
	sb.Where(
		sb.Equal("source", string(source)),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("source_id")

	query, args := sb.Build()
	var entities []ListEntity
	if err := r.db.SelectContext(ctx, &entities, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source": source}).Error("Failed to list entities by source")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list entities")
	}
	return entities, nil
}

// SoftDelete marks an entry delisted without destroying its audit history.
// Returns true when a row transitioned to deleted.
func (r *Repository) SoftDelete(ctx context.Context, source models.SourceList, sourceID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "listentity.Repository.SoftDelete")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("list_entities")
	ub.Set(
		ub.Assign("deleted_at", time.Now().UTC()),
	)
	ub.Where(
		ub.Equal("source", string(source)),
		ub.Equal("source_id", sourceID),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source": source, "source_id": sourceID}).Error("Failed to soft delete list entity")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete list entity")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete list entity")
	}
	return affected > 0, nil
}

// DelistAbsent soft-deletes every entry of a source that the given publication
// run did not touch, and returns the delisted rows. A full refresh enumerates
// the whole list, so an untouched entry is an entry the list no longer
// carries. Callers must only invoke this for runs that completed successfully;
// a partial run proves nothing about absence.
func (r *Repository) DelistAbsent(ctx context.Context, source models.SourceList, runID string) ([]ListEntity, error) {
	ctx, span := tracing.StartSpan(ctx, "listentity.Repository.DelistAbsent")
	defer span.End()

	if runID == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "run id is required")
	}

	query := `
		UPDATE list_entities
		SET deleted_at = $1
		WHERE source = $2 AND run_id <> $3 AND deleted_at IS NULL
		RETURNING
			id, source, source_id, entity_type, name, data, fingerprint,
			previous_fingerprint, run_id, created_at, updated_at, deleted_at
	`

	var delisted []ListEntity
	if err := r.db.SelectContext(ctx, &delisted, query, time.Now().UTC(), string(source), runID); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source": source, "run_id": runID}).Error("Failed to delist absent entities")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delist absent entities")
	}
	if len(delisted) > 0 {
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"source":   source,
			"run_id":   runID,
			"delisted": len(delisted),
		}).Info("Delisted entities absent from refresh")
	}
	return delisted, nil
}

// CountBySource returns the non-deleted entry count per list
func (r *Repository) CountBySource(ctx context.Context) ([]SourceCount, error) {
	ctx, span := tracing.StartSpan(ctx, "listentity.Repository.CountBySource")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("source", "COUNT(*) AS count")
	sb.From("list_entities")
	sb.Where(sb.IsNull("deleted_at"))
	sb.GroupBy("source")
	sb.OrderBy("source")

	query, args := sb.Build()
	var counts []SourceCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count entities by source")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count entities")
	}
	return counts, nil
}
