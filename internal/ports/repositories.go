package ports

import (
	"context"
	"time"

	"github.com/nischaysood/creator-connect/internal/contracts"
	"github.com/nischaysood/creator-connect/internal/domain"
)

type VerificationRepository interface {
	Create(ctx context.Context, row domain.Verification) error
	GetByID(ctx context.Context, verificationID string) (domain.Verification, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.Verification, error)
}

type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string, now time.Time) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
	// Release drops an uncompleted reservation so a failed request can be
	// retried before the TTL expires.
	Release(ctx context.Context, key string) error
}

type OutboxRecord struct {
	RecordID   string
	EventClass string
	Envelope   contracts.EventEnvelope
	CreatedAt  time.Time
	SentAt     *time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, record OutboxRecord) error
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, recordID string, at time.Time) error
}
