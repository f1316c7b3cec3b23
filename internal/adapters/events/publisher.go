package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nischaysood/creator-connect/internal/contracts"
)

// KafkaDomainPublisher writes envelope JSON to one topic per event type,
// keyed by the envelope's partition key so per-campaign ordering holds.
type KafkaDomainPublisher struct {
	writer       *kafka.Writer
	topicByEvent map[string]string
}

func NewKafkaDomainPublisher(brokers []string, topicByEvent map[string]string) (*KafkaDomainPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaDomainPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topicByEvent: topicByEvent,
	}, nil
}

func (p *KafkaDomainPublisher) PublishDomain(ctx context.Context, event contracts.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	topic := event.EventType
	if mapped, ok := p.topicByEvent[event.EventType]; ok && mapped != "" {
		topic = mapped
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(event.PartitionKey),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaDomainPublisher) Close() error {
	return p.writer.Close()
}

// LoggingDLQPublisher records dead-lettered events in the structured log.
// Used when no dedicated DLQ topic is configured.
type LoggingDLQPublisher struct{}

func (LoggingDLQPublisher) PublishDLQ(ctx context.Context, record contracts.DLQRecord) error {
	slog.Default().ErrorContext(ctx, "event dead lettered",
		"module", "events",
		"layer", "adapter",
		"operation", "publish_dlq",
		"event_id", record.OriginalEvent.EventID,
		"event_type", record.OriginalEvent.EventType,
		"error", record.ErrorSummary,
		"dlq_topic", record.DLQTopic,
		"trace_id", record.TraceID,
	)
	return nil
}

// KafkaDLQPublisher writes dead-letter records to a single DLQ topic.
type KafkaDLQPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaDLQPublisher(brokers []string, topic string) (*KafkaDLQPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka dlq publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka dlq publisher requires a topic")
	}
	return &KafkaDLQPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

func (p *KafkaDLQPublisher) PublishDLQ(ctx context.Context, record contracts.DLQRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal dlq record: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(record.OriginalEvent.EventID),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaDLQPublisher) Close() error {
	return p.writer.Close()
}

// MemoryDomainPublisher captures published envelopes for tests.
type MemoryDomainPublisher struct {
	mu     sync.Mutex
	Events []contracts.EventEnvelope
	Fail   error
}

func (p *MemoryDomainPublisher) PublishDomain(_ context.Context, event contracts.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail != nil {
		return p.Fail
	}
	p.Events = append(p.Events, event)
	return nil
}

// MemoryDLQPublisher captures dead-lettered records for tests.
type MemoryDLQPublisher struct {
	mu      sync.Mutex
	Records []contracts.DLQRecord
}

func (p *MemoryDLQPublisher) PublishDLQ(_ context.Context, record contracts.DLQRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Records = append(p.Records, record)
	return nil
}
