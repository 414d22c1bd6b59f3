package kafka

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Ramsey-B/briar/pkg/models"
)

// Actions carried by list update messages
const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// ListUpdateMessage is the payload on the list-update topic. Upstream list
// loaders publish one message per entity change, plus a refresh-completed
// marker once a full list publication run has finished.
type ListUpdateMessage struct {
	Action      string            `json:"action"` // upsert, delete
	Source      models.SourceList `json:"source"`
	SourceID    string            `json:"source_id"`
	Entity      json.RawMessage   `json:"entity,omitempty"`
	RunID       string            `json:"run_id,omitempty"`
	PublishedAt time.Time         `json:"published_at,omitempty"`
}

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	ListUpdate *ListUpdateMessage
}

// ParseListUpdate parses the message value as a list update
func (m *IncomingMessage) ParseListUpdate() error {
	var msg ListUpdateMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return err
	}
	if msg.Action == "" {
		return fmt.Errorf("list update message missing action")
	}
	if msg.Source == "" {
		return fmt.Errorf("list update message missing source")
	}
	m.ListUpdate = &msg
	return nil
}

// IsDelete returns true if this message removes an entity from its list
func (m *IncomingMessage) IsDelete() bool {
	return m.ListUpdate != nil && m.ListUpdate.Action == ActionDelete
}

// GetSource returns the source list the update belongs to
func (m *IncomingMessage) GetSource() models.SourceList {
	if m.ListUpdate != nil {
		return m.ListUpdate.Source
	}
	return models.SourceList(m.Headers["source"])
}

// GetSourceID returns the list-assigned identifier for the entity
func (m *IncomingMessage) GetSourceID() string {
	if m.ListUpdate != nil && m.ListUpdate.SourceID != "" {
		return m.ListUpdate.SourceID
	}
	// Loaders key messages by source/source_id
	if _, id, ok := strings.Cut(m.Key, "/"); ok {
		return id
	}
	return m.Key
}

// GetRunID returns the list publication run the update belongs to
func (m *IncomingMessage) GetRunID() string {
	if m.ListUpdate != nil {
		return m.ListUpdate.RunID
	}
	return ""
}

// DecodeEntity decodes the embedded entity payload. Identity fields omitted
// from the payload are backfilled from the envelope.
func (m *IncomingMessage) DecodeEntity() (*models.Entity, error) {
	if m.ListUpdate == nil || len(m.ListUpdate.Entity) == 0 {
		return nil, nil
	}

	var entity models.Entity
	if err := json.Unmarshal(m.ListUpdate.Entity, &entity); err != nil {
		return nil, err
	}

	if entity.Source == "" {
		entity.Source = m.ListUpdate.Source
	}
	if entity.SourceID == "" {
		entity.SourceID = m.ListUpdate.SourceID
	}

	return &entity, nil
}

// RefreshCompletedMessage marks the end of a full list publication run
type RefreshCompletedMessage struct {
	Type      string            `json:"type"` // "list_refresh.completed"
	Source    models.SourceList `json:"source"`
	RunID     string            `json:"run_id"`
	Status    string            `json:"status"` // "success", "partial", "failed"
	Timestamp time.Time         `json:"timestamp"`
	Stats     RefreshStats      `json:"stats,omitempty"`
}

// RefreshStats contains statistics about the list publication run
type RefreshStats struct {
	TotalEntities int   `json:"total_entities"`
	Upserts       int   `json:"upserts"`
	Deletes       int   `json:"deletes"`
	DurationMs    int64 `json:"duration_ms"`
}

// IsRefreshCompleted checks if the message is a list_refresh.completed marker
func (m *IncomingMessage) IsRefreshCompleted() bool {
	// Check header first
	if msgType := m.Headers["type"]; msgType == "list_refresh.completed" {
		return true
	}

	var evt RefreshCompletedMessage
	if err := json.Unmarshal(m.Value, &evt); err == nil {
		return evt.Type == "list_refresh.completed"
	}

	return false
}

// ParseRefreshCompleted parses the message as a list_refresh.completed marker
func (m *IncomingMessage) ParseRefreshCompleted() (*RefreshCompletedMessage, error) {
	var evt RefreshCompletedMessage
	if err := json.Unmarshal(m.Value, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
