// Package events handles event emission for list entity lifecycle changes and screening hits
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/briar/pkg/kafka"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter handles event emission for Briar
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitListEntityCreated emits a list_entity.created event
func (e *Emitter) EmitListEntityCreated(ctx context.Context, entity *models.Entity) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitListEntityCreated")
	defer span.End()

	event, err := listEntityEvent("list_entity.created", entity)
	if err != nil {
		return err
	}

	if err := e.producer.PublishListEntityEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit list_entity.created event")
		return err
	}

	return nil
}

// EmitListEntityUpdated emits a list_entity.updated event
func (e *Emitter) EmitListEntityUpdated(ctx context.Context, entity *models.Entity) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitListEntityUpdated")
	defer span.End()

	event, err := listEntityEvent("list_entity.updated", entity)
	if err != nil {
		return err
	}

	if err := e.producer.PublishListEntityEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit list_entity.updated event")
		return err
	}

	return nil
}

// EmitListEntityDelisted emits a list_entity.delisted event. The reason is
// one of the DelistReason constants.
func (e *Emitter) EmitListEntityDelisted(ctx context.Context, source models.SourceList, sourceID, reason string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitListEntityDelisted")
	defer span.End()

	var data json.RawMessage
	if reason != "" {
		data, _ = json.Marshal(map[string]string{"reason": reason})
	}

	event := &kafka.ListEntityEvent{
		EventType: "list_entity.delisted",
		Source:    string(source),
		SourceID:  sourceID,
		Data:      data,
	}

	if err := e.producer.PublishListEntityEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit list_entity.delisted event")
		return err
	}

	return nil
}

// EmitScreeningHit emits a screening.hit event for a result at or above the alert threshold
func (e *Emitter) EmitScreeningHit(ctx context.Context, sessionID string, queryName string, entity *models.Entity, score float64, breakdown *models.ScoreBreakdown) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitScreeningHit")
	defer span.End()

	var breakdownJSON json.RawMessage
	if breakdown != nil {
		data, err := json.Marshal(breakdown)
		if err != nil {
			return err
		}
		breakdownJSON = data
	}

	event := &kafka.ScreeningHitEvent{
		EventType:      "screening.hit",
		SessionID:      sessionID,
		QueryName:      queryName,
		EntitySource:   string(entity.Source),
		EntitySourceID: entity.SourceID,
		EntityName:     entity.Name,
		Score:          score,
		Breakdown:      breakdownJSON,
	}

	if err := e.producer.PublishScreeningHitEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit screening.hit event")
		return err
	}

	return nil
}

func listEntityEvent(eventType string, entity *models.Entity) (*kafka.ListEntityEvent, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}

	return &kafka.ListEntityEvent{
		EventType:  eventType,
		Source:     string(entity.Source),
		SourceID:   entity.SourceID,
		EntityType: string(entity.EntityType),
		Name:       entity.Name,
		Data:       data,
	}, nil
}
