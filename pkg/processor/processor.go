// Package processor ingests list update messages and keeps the screening
// state aligned with the upstream sanctions feeds. Every accepted update
// moves three stores together: the Postgres list entry, the in-memory search
// index, and the affiliation graph. Skippable problems (malformed payloads,
// validation failures) are logged and committed so the consumer never wedges
// on a poison message; store failures are returned so the message redelivers.
package processor

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/briar/internal/repositories/listentity"
	"github.com/Ramsey-B/briar/pkg/events"
	"github.com/Ramsey-B/briar/pkg/index"
	"github.com/Ramsey-B/briar/pkg/kafka"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/normalize"
	"github.com/Ramsey-B/briar/pkg/schema"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

// EntityStore persists list entries
type EntityStore interface {
	Upsert(ctx context.Context, e *models.Entity, runID string) (*listentity.UpsertResult, error)
	ListActive(ctx context.Context) ([]listentity.ListEntity, error)
	SoftDelete(ctx context.Context, source models.SourceList, sourceID string) (bool, error)
	DelistAbsent(ctx context.Context, source models.SourceList, runID string) ([]listentity.ListEntity, error)
}

// GraphMirror maintains the affiliation graph alongside the index
type GraphMirror interface {
	SyncEntity(ctx context.Context, e *models.Entity) error
	RemoveEntity(ctx context.Context, source models.SourceList, sourceID string) error
}

// EventEmitter publishes list entity lifecycle events
type EventEmitter interface {
	EmitListEntityCreated(ctx context.Context, e *models.Entity) error
	EmitListEntityUpdated(ctx context.Context, e *models.Entity) error
	EmitListEntityDelisted(ctx context.Context, source models.SourceList, sourceID, reason string) error
}

// Processor handles list update messages from the consumer
type Processor struct {
	logger     ectologger.Logger
	entities   EntityStore
	idx        *index.Index
	normalizer *normalize.TextNormalizer
	validator  *schema.Validator
	graph      GraphMirror
	emitter    EventEmitter
}

// NewProcessor creates a message processor. graph and emitter may be nil when
// the affiliation graph or event publishing is disabled; entity ingestion
// works the same without them.
func NewProcessor(
	logger ectologger.Logger,
	entities EntityStore,
	idx *index.Index,
	normalizer *normalize.TextNormalizer,
	validator *schema.Validator,
	graph GraphMirror,
	emitter EventEmitter,
) *Processor {
	return &Processor{
		logger:     logger,
		entities:   entities,
		idx:        idx,
		normalizer: normalizer,
		validator:  validator,
		graph:      graph,
		emitter:    emitter,
	}
}

// ProcessMessage is the consumer handler for the list-update topic. Returning
// nil commits the message; returning an error leaves it uncommitted for
// redelivery.
func (p *Processor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.ProcessMessage")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	if msg.IsRefreshCompleted() {
		return p.handleRefreshCompleted(ctx, msg)
	}

	if err := msg.ParseListUpdate(); err != nil {
		log.WithError(err).Warn("Skipping malformed list update")
		return nil
	}
	update := msg.ListUpdate

	log = log.WithFields(map[string]any{
		"action":    update.Action,
		"source":    update.Source,
		"source_id": update.SourceID,
		"run_id":    update.RunID,
	})

	switch {
	case msg.IsDelete():
		if update.SourceID == "" {
			log.Warn("Skipping delete with no source id")
			return nil
		}
		return p.handleDelete(ctx, update, log)
	case update.Action == kafka.ActionUpsert:
		return p.handleUpsert(ctx, msg, update, log)
	default:
		log.Warn("Skipping list update with unknown action")
		return nil
	}
}

// handleUpsert validates, normalizes and stores one list entry, then brings
// the index, graph and event stream along
func (p *Processor) handleUpsert(ctx context.Context, msg *kafka.IncomingMessage, update *kafka.ListUpdateMessage, log ectologger.Logger) error {
	ctx, span := tracing.StartSpan(ctx, "processor.handleUpsert")
	defer span.End()

	entity, err := msg.DecodeEntity()
	if err != nil {
		log.WithError(err).Warn("Skipping list update with undecodable entity payload")
		return nil
	}
	if entity == nil {
		log.Warn("Skipping upsert with no entity payload")
		return nil
	}

	// A record that fails validation will not become valid on redelivery, so
	// it is dropped rather than retried.
	if result := p.validator.ValidateListEntry(entity); !result.Valid {
		log.WithFields(map[string]any{"errors": result.Errors}).Warn("Skipping list entry that failed validation")
		return nil
	}

	p.normalizer.PrepareEntity(entity)

	result, err := p.entities.Upsert(ctx, entity, update.RunID)
	if err != nil {
		log.WithError(err).Error("Failed to upsert list entity")
		return err
	}

	if !result.IsChanged {
		log.Debug("List entry fingerprint unchanged, skipping reindex")
		return nil
	}

	p.idx.Upsert(entity)

	if p.graph != nil {
		if err := p.graph.SyncEntity(ctx, entity); err != nil {
			log.WithError(err).Warn("Failed to mirror entity to affiliation graph")
		}
	}

	if p.emitter != nil {
		emit := p.emitter.EmitListEntityUpdated
		if result.IsNew {
			emit = p.emitter.EmitListEntityCreated
		}
		if err := emit(ctx, entity); err != nil {
			log.WithError(err).Warn("Failed to emit list entity event")
		}
	}

	log.WithFields(map[string]any{
		"is_new":     result.IsNew,
		"index_size": p.idx.Size(),
	}).Info("List entry indexed")
	return nil
}

// handleDelete delists one entry across the stores
func (p *Processor) handleDelete(ctx context.Context, update *kafka.ListUpdateMessage, log ectologger.Logger) error {
	ctx, span := tracing.StartSpan(ctx, "processor.handleDelete")
	defer span.End()

	deleted, err := p.entities.SoftDelete(ctx, update.Source, update.SourceID)
	if err != nil {
		log.WithError(err).Error("Failed to delist entity")
		return err
	}

	// The index and graph are cleaned regardless so the stores converge even
	// when the row was already gone.
	removed := p.idx.Remove(update.Source, update.SourceID)
	if p.graph != nil {
		if err := p.graph.RemoveEntity(ctx, update.Source, update.SourceID); err != nil {
			log.WithError(err).Warn("Failed to remove entity from affiliation graph")
		}
	}

	// Emit only on the row transition so redeliveries do not produce
	// duplicate delist events.
	if p.emitter != nil && deleted {
		if err := p.emitter.EmitListEntityDelisted(ctx, update.Source, update.SourceID, events.DelistReasonExplicit); err != nil {
			log.WithError(err).Warn("Failed to emit delist event")
		}
	}

	if !deleted && !removed {
		log.Debug("Delete for unknown entity, nothing to do")
		return nil
	}

	log.WithFields(map[string]any{
		"deleted":            deleted,
		"removed_from_index": removed,
	}).Info("Entity delisted")
	return nil
}

// handleRefreshCompleted reconciles state after a full list publication run.
// Entries the run did not touch have dropped off the list and are delisted;
// the index is then rebuilt so cross-list merging reflects the new list.
func (p *Processor) handleRefreshCompleted(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.handleRefreshCompleted")
	defer span.End()

	evt, err := msg.ParseRefreshCompleted()
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to parse refresh completion marker")
		return err
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"source":   evt.Source,
		"run_id":   evt.RunID,
		"status":   evt.Status,
		"upserts":  evt.Stats.Upserts,
		"deletes":  evt.Stats.Deletes,
		"entities": evt.Stats.TotalEntities,
	})
	log.Info("List refresh completed")

	if evt.Status == "failed" {
		log.Debug("Skipping reconciliation for failed refresh")
		return nil
	}

	// Absence only proves delisting when the run enumerated the whole list.
	// Partial runs keep their upserts but delist nothing.
	if evt.Status == "success" && evt.RunID != "" && evt.Source != "" {
		if err := p.delistAbsent(ctx, evt, log); err != nil {
			log.WithError(err).Error("Failed to delist entries absent from refresh")
			// The rebuild below still runs; the next refresh retries the delisting.
		}
	}

	if _, err := p.ReloadIndex(ctx); err != nil {
		log.WithError(err).Error("Failed to rebuild index after refresh")
		return err
	}
	return nil
}

// delistAbsent soft-deletes the entries of a source that the completed run
// never touched and propagates the delisting to the index, graph and event
// stream
func (p *Processor) delistAbsent(ctx context.Context, evt *kafka.RefreshCompletedMessage, log ectologger.Logger) error {
	ctx, span := tracing.StartSpan(ctx, "processor.delistAbsent")
	defer span.End()

	delisted, err := p.entities.DelistAbsent(ctx, evt.Source, evt.RunID)
	if err != nil {
		return err
	}
	if len(delisted) == 0 {
		return nil
	}

	for i := range delisted {
		source := models.SourceList(delisted[i].Source)
		sourceID := delisted[i].SourceID

		p.idx.Remove(source, sourceID)
		if p.graph != nil {
			if err := p.graph.RemoveEntity(ctx, source, sourceID); err != nil {
				log.WithError(err).WithFields(map[string]any{"source_id": sourceID}).Warn("Failed to remove entity from affiliation graph")
			}
		}
		if p.emitter != nil {
			if err := p.emitter.EmitListEntityDelisted(ctx, source, sourceID, events.DelistReasonRefreshAbsent); err != nil {
				log.WithError(err).WithFields(map[string]any{"source_id": sourceID}).Warn("Failed to emit delist event")
			}
		}
	}

	log.WithFields(map[string]any{"delisted": len(delisted)}).Info("Delisted entries absent from refresh")
	return nil
}

// ReloadIndex rebuilds the in-memory index from every active list entry in
// Postgres. The platform calls this once at startup before wiring the
// consumer; the processor calls it again after each completed refresh so
// records upserted individually get re-merged with their cross-list
// counterparts. Returns the indexed record count.
func (p *Processor) ReloadIndex(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.ReloadIndex")
	defer span.End()

	rows, err := p.entities.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	prepared := make([]*models.Entity, 0, len(rows))
	for i := range rows {
		entity, err := rows[i].Entity()
		if err != nil {
			p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"source":    rows[i].Source,
				"source_id": rows[i].SourceID,
			}).Warn("Skipping undecodable list entity during index reload")
			continue
		}
		prepared = append(prepared, p.normalizer.PrepareEntity(entity))
	}

	p.idx.ReplaceAllWithMerge(prepared)

	size := p.idx.Size()
	p.logger.WithContext(ctx).WithFields(map[string]any{
		"loaded":  len(prepared),
		"indexed": size,
	}).Info("Rebuilt entity index")
	return size, nil
}
