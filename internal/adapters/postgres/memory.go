package postgres

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nischaysood/creator-connect/internal/domain"
	"github.com/nischaysood/creator-connect/internal/ports"
)

// MemoryRepositories is the in-process storage bundle used by unit and
// contract tests, mirroring the Postgres repositories' semantics.
type MemoryRepositories struct {
	Verifications *MemoryVerificationRepository
	Idempotency   *MemoryIdempotencyRepository
	Outbox        *MemoryOutboxRepository
}

func NewMemoryRepositories() *MemoryRepositories {
	return &MemoryRepositories{
		Verifications: &MemoryVerificationRepository{byID: map[string]domain.Verification{}},
		Idempotency:   &MemoryIdempotencyRepository{rows: map[string]ports.IdempotencyRecord{}},
		Outbox:        &MemoryOutboxRepository{rows: map[string]ports.OutboxRecord{}, order: []string{}},
	}
}

type MemoryVerificationRepository struct {
	mu   sync.Mutex
	byID map[string]domain.Verification
}

func (r *MemoryVerificationRepository) Create(_ context.Context, row domain.Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[row.VerificationID]; ok {
		return domain.ErrConflict
	}
	r.byID[row.VerificationID] = row
	return nil
}

func (r *MemoryVerificationRepository) GetByID(_ context.Context, verificationID string) (domain.Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[strings.TrimSpace(verificationID)]
	if !ok {
		return domain.Verification{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *MemoryVerificationRepository) ListByCampaign(_ context.Context, campaignID string) ([]domain.Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cid := strings.TrimSpace(campaignID)
	out := make([]domain.Verification, 0)
	for _, row := range r.byID {
		if row.CampaignID == cid {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type MemoryIdempotencyRepository struct {
	mu   sync.Mutex
	rows map[string]ports.IdempotencyRecord
}

func (r *MemoryIdempotencyRepository) Get(_ context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[key]
	if !ok {
		return nil, nil
	}
	if now.After(row.ExpiresAt) {
		delete(r.rows, key)
		return nil, nil
	}
	cpy := row
	cpy.ResponseBody = append([]byte(nil), row.ResponseBody...)
	return &cpy, nil
}

func (r *MemoryIdempotencyRepository) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[key]; ok && time.Now().UTC().Before(row.ExpiresAt) {
		return domain.ErrConflict
	}
	r.rows[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, ExpiresAt: expiresAt}
	return nil
}

func (r *MemoryIdempotencyRepository) Complete(_ context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[key]
	if !ok {
		return domain.ErrNotFound
	}
	row.ResponseCode = responseCode
	row.ResponseBody = append([]byte(nil), responseBody...)
	r.rows[key] = row
	return nil
}

func (r *MemoryIdempotencyRepository) Release(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, key)
	return nil
}

type MemoryOutboxRepository struct {
	mu    sync.Mutex
	rows  map[string]ports.OutboxRecord
	order []string
}

func (r *MemoryOutboxRepository) Enqueue(_ context.Context, row ports.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.RecordID]; ok {
		return domain.ErrConflict
	}
	r.rows[row.RecordID] = row
	r.order = append(r.order, row.RecordID)
	return nil
}

func (r *MemoryOutboxRepository) ListPending(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	out := make([]ports.OutboxRecord, 0, limit)
	for _, id := range r.order {
		row, ok := r.rows[id]
		if !ok || row.SentAt != nil {
			continue
		}
		out = append(out, row)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryOutboxRepository) MarkSent(_ context.Context, recordID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	row.SentAt = &at
	r.rows[recordID] = row
	return nil
}
