package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/briar/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	requiredAcks := kafka.RequiredAcks(cfg.RequiredAcks)

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           requiredAcks,
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// ListEntityEvent represents a lifecycle change to a stored list entity
type ListEntityEvent struct {
	EventType  string          `json:"event_type"` // created, updated, delisted
	Source     string          `json:"source"`
	SourceID   string          `json:"source_id"`
	EntityType string          `json:"entity_type"`
	Name       string          `json:"name"`
	Data       json.RawMessage `json:"data,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ScreeningHitEvent represents a screening result at or above the alert threshold
type ScreeningHitEvent struct {
	EventType      string          `json:"event_type"` // screening.hit
	SessionID      string          `json:"session_id"`
	QueryName      string          `json:"query_name"`
	EntitySource   string          `json:"entity_source"`
	EntitySourceID string          `json:"entity_source_id"`
	EntityName     string          `json:"entity_name"`
	Score          float64         `json:"score"`
	Breakdown      json.RawMessage `json:"breakdown,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// PublishListEntityEvent publishes a list entity event to Kafka
func (p *Producer) PublishListEntityEvent(ctx context.Context, event *ListEntityEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishListEntityEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Source + "/" + event.SourceID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "source", Value: []byte(event.Source)},
			{Key: "entity_type", Value: []byte(event.EntityType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish list entity event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"source":     event.Source,
		"source_id":  event.SourceID,
	}).Debug("Published list entity event")

	return nil
}

// PublishScreeningHitEvent publishes a screening hit event to Kafka.
// Messages are keyed by the listed entity so all hits against the same
// record land on one partition for downstream case management.
func (p *Producer) PublishScreeningHitEvent(ctx context.Context, event *ScreeningHitEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishScreeningHitEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.EntitySource + "/" + event.EntitySourceID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "session_id", Value: []byte(event.SessionID)},
			{Key: "entity_source", Value: []byte(event.EntitySource)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish screening hit event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": event.SessionID,
		"source":     event.EntitySource,
		"source_id":  event.EntitySourceID,
		"score":      event.Score,
	}).Debug("Published screening hit event")

	return nil
}

// PublishListEntityEvents publishes multiple list entity events in a batch
func (p *Producer) PublishListEntityEvents(ctx context.Context, events []*ListEntityEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishListEntityEvents")
	defer span.End()

	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(events))
	for i, event := range events {
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}

		data, err := json.Marshal(event)
		if err != nil {
			return err
		}

		messages[i] = kafka.Message{
			Topic: p.topic,
			Key:   []byte(event.Source + "/" + event.SourceID),
			Value: data,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
				{Key: "source", Value: []byte(event.Source)},
				{Key: "entity_type", Value: []byte(event.EntityType)},
				{Key: "schema_version", Value: []byte("1.0")},
			},
		}
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"batch_size": len(events),
		}).Error("Failed to publish list entity events batch")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_size": len(events),
	}).Debug("Published list entity events batch")

	return nil
}
