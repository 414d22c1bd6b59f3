package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of event
type EventType string

const (
	// List entity events
	EventTypeListEntityCreated  EventType = "list_entity.created"
	EventTypeListEntityUpdated  EventType = "list_entity.updated"
	EventTypeListEntityDelisted EventType = "list_entity.delisted"

	// Screening events
	EventTypeScreeningHit EventType = "screening.hit"

	// Consumed control events
	EventTypeListRefreshCompleted EventType = "list_refresh.completed"
)

// Delist reasons carried on list_entity.delisted events
const (
	// DelistReasonExplicit marks a delete message published by the list loader.
	DelistReasonExplicit = "explicit"
	// DelistReasonRefreshAbsent marks an entry that stopped appearing in a
	// full list refresh and was reconciled away.
	DelistReasonRefreshAbsent = "refresh_absent"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// ListEntityCreatedEvent is emitted when an entity first appears on a sanctions list
type ListEntityCreatedEvent struct {
	BaseEvent
	Source     string          `json:"source"`
	SourceID   string          `json:"source_id"`
	EntityType string          `json:"entity_type"`
	Name       string          `json:"name"`
	Data       json.RawMessage `json:"data"`
}

// ListEntityUpdatedEvent is emitted when a listed entity's details change
type ListEntityUpdatedEvent struct {
	BaseEvent
	Source        string          `json:"source"`
	SourceID      string          `json:"source_id"`
	EntityType    string          `json:"entity_type"`
	Name          string          `json:"name"`
	Data          json.RawMessage `json:"data"`
	OldData       json.RawMessage `json:"old_data,omitempty"`
	ChangedFields []string        `json:"changed_fields,omitempty"`
}

// ListEntityDelistedEvent is emitted when an entity is removed from a sanctions list
type ListEntityDelistedEvent struct {
	BaseEvent
	Source   string `json:"source"`
	SourceID string `json:"source_id"`
	Reason   string `json:"reason,omitempty"` // explicit, refresh_absent
}

// ScreeningHitEvent is emitted when a screening result meets the alert threshold
type ScreeningHitEvent struct {
	BaseEvent
	SessionID      string          `json:"session_id"`
	QueryName      string          `json:"query_name"`
	EntitySource   string          `json:"entity_source"`
	EntitySourceID string          `json:"entity_source_id"`
	EntityName     string          `json:"entity_name"`
	Score          float64         `json:"score"`
	Breakdown      json.RawMessage `json:"breakdown,omitempty"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
