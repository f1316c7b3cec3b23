package application

import (
	"time"

	"github.com/nischaysood/creator-connect/internal/ports"
)

type Config struct {
	ServiceName          string
	IdempotencyTTL       time.Duration
	MetadataTimeout      time.Duration
	AnalyzerTimeout      time.Duration
	OutboxFlushBatchSize int
	RequireEnrollment    bool
}

type Actor struct {
	SubjectID      string
	Role           string
	RequestID      string
	IdempotencyKey string
}

type VerifyInput struct {
	URL                  string
	CampaignID           string
	CreatorAddress       string
	CampaignRequirements string
}

type Service struct {
	cfg Config

	verifications ports.VerificationRepository
	idempotency   ports.IdempotencyRepository
	outbox        ports.OutboxRepository

	fetcher  ports.MetadataFetcher
	analyzer ports.ContentAnalyzer
	escrow   ports.EscrowClient

	domainEvents ports.DomainPublisher
	dlq          ports.DLQPublisher
	nowFn        func() time.Time
}

type Dependencies struct {
	Config Config

	Verifications ports.VerificationRepository
	Idempotency   ports.IdempotencyRepository
	Outbox        ports.OutboxRepository

	Fetcher  ports.MetadataFetcher
	Analyzer ports.ContentAnalyzer
	Escrow   ports.EscrowClient

	DomainEvents ports.DomainPublisher
	DLQ          ports.DLQPublisher
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "creator-connect-verification-agent"
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.MetadataTimeout <= 0 {
		cfg.MetadataTimeout = 8 * time.Second
	}
	if cfg.AnalyzerTimeout <= 0 {
		cfg.AnalyzerTimeout = 30 * time.Second
	}
	if cfg.OutboxFlushBatchSize <= 0 {
		cfg.OutboxFlushBatchSize = 100
	}
	return &Service{
		cfg:           cfg,
		verifications: deps.Verifications,
		idempotency:   deps.Idempotency,
		outbox:        deps.Outbox,
		fetcher:       deps.Fetcher,
		analyzer:      deps.Analyzer,
		escrow:        deps.Escrow,
		domainEvents:  deps.DomainEvents,
		dlq:           deps.DLQ,
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}
