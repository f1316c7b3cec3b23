package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nischaysood/creator-connect/internal/contracts"
	"github.com/nischaysood/creator-connect/internal/domain"
	"github.com/nischaysood/creator-connect/internal/ports"
)

// FlushOutbox publishes pending outbox records and marks them sent.
// Failed publishes go to the DLQ and abort the batch so the record is
// retried on the next flush.
func (s *Service) FlushOutbox(ctx context.Context) error {
	if s.outbox == nil {
		return nil
	}
	pending, err := s.outbox.ListPending(ctx, s.cfg.OutboxFlushBatchSize)
	if err != nil {
		return err
	}
	for _, rec := range pending {
		now := s.nowFn()
		switch rec.EventClass {
		case domain.CanonicalEventClassDomain:
			if s.domainEvents != nil {
				if err := s.domainEvents.PublishDomain(ctx, rec.Envelope); err != nil {
					if s.dlq != nil {
						n := s.nowFn()
						_ = s.dlq.PublishDLQ(ctx, contracts.DLQRecord{
							OriginalEvent: rec.Envelope,
							ErrorSummary:  err.Error(),
							RetryCount:    1,
							FirstSeenAt:   n,
							LastErrorAt:   n,
							SourceTopic:   rec.Envelope.EventType,
							DLQTopic:      "creator-connect-verification-agent.dlq",
							TraceID:       rec.Envelope.TraceID,
						})
					}
					return err
				}
			}
		default:
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedEventClass, rec.EventClass)
		}
		if err := s.outbox.MarkSent(ctx, rec.RecordID, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) enqueueDomainEvent(ctx context.Context, eventType, traceID string, data any, partitionKey string, now time.Time) error {
	if s.outbox == nil {
		return nil
	}
	if !domain.IsCanonicalEmittedEvent(eventType) {
		return domain.ErrUnsupportedEventType
	}
	b, err := json.Marshal(data)
	if err != nil {
		return domain.ErrInvalidInput
	}
	if strings.TrimSpace(traceID) == "" {
		traceID = uuid.NewString()
	}
	env := contracts.EventEnvelope{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		EventClass:       domain.CanonicalEventClass(eventType),
		OccurredAt:       now,
		PartitionKeyPath: domain.CanonicalPartitionKeyPath(eventType),
		PartitionKey:     partitionKey,
		SourceService:    s.cfg.ServiceName,
		TraceID:          traceID,
		SchemaVersion:    "v1",
		Data:             b,
	}
	return s.outbox.Enqueue(ctx, ports.OutboxRecord{RecordID: uuid.NewString(), EventClass: env.EventClass, Envelope: env, CreatedAt: now})
}

func (s *Service) enqueueVerificationCompleted(ctx context.Context, v domain.Verification, traceID string, now time.Time) error {
	return s.enqueueDomainEvent(ctx, domain.EventVerificationCompleted, traceID, contracts.VerificationCompletedPayload{
		VerificationID: v.VerificationID,
		CampaignID:     v.CampaignID,
		CreatorAddress: v.CreatorAddress,
		Platform:       string(v.Platform),
		Verified:       v.Verified,
		Score:          v.Score,
		CompletedAt:    v.CreatedAt.UTC().Format(time.RFC3339),
	}, v.CampaignID, now)
}

func (s *Service) enqueuePaymentReleased(ctx context.Context, v domain.Verification, traceID string, now time.Time) error {
	return s.enqueueDomainEvent(ctx, domain.EventPaymentReleased, traceID, contracts.PaymentReleasedPayload{
		VerificationID: v.VerificationID,
		CampaignID:     v.CampaignID,
		CreatorAddress: v.CreatorAddress,
		TransactionID:  v.TransactionID,
		ReleasedAt:     now.UTC().Format(time.RFC3339),
	}, v.CampaignID, now)
}
