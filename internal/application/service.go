package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/nischaysood/creator-connect/internal/domain"
	"github.com/nischaysood/creator-connect/internal/ports"
)

// VerifyContent runs the full pipeline for one submitted URL:
// classify -> fetch metadata -> analyze -> decide -> (on verified) release
// payment, then records the outcome and enqueues domain events. Content
// judgments are never errors; the only hard failures are bad input and a
// missing analyzer credential.
func (s *Service) VerifyContent(ctx context.Context, actor Actor, input VerifyInput) (domain.Verification, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Verification{}, domain.ErrUnauthorized
	}
	input.URL = strings.TrimSpace(input.URL)
	input.CampaignID = strings.TrimSpace(input.CampaignID)
	input.CreatorAddress = strings.TrimSpace(input.CreatorAddress)
	if input.URL == "" || input.CreatorAddress == "" {
		return domain.Verification{}, domain.ErrInvalidInput
	}

	requestHash := hashJSON(input)
	if cached, ok, err := s.getIdempotentBody(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return domain.Verification{}, err
	} else if ok {
		var out domain.Verification
		if err := json.Unmarshal(cached, &out); err == nil {
			return out, nil
		}
	}
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return domain.Verification{}, err
	}

	descriptor := domain.Classify(input.URL)

	var meta domain.ContentMetadata
	var analysis domain.AIAnalysis
	if descriptor.Platform != domain.PlatformUnknown && descriptor.IsValid {
		fetchCtx, cancelFetch := context.WithTimeout(ctx, s.cfg.MetadataTimeout)
		meta = s.fetcher.Fetch(fetchCtx, input.URL, descriptor.Platform)
		cancelFetch()

		if meta.Exists {
			analyzeCtx, cancelAnalyze := context.WithTimeout(ctx, s.cfg.AnalyzerTimeout)
			var err error
			analysis, err = s.analyzer.Analyze(analyzeCtx, ports.AnalysisInput{
				Title:        meta.Title,
				Platform:     descriptor.Platform,
				ContentType:  descriptor.ContentType,
				Requirements: input.CampaignRequirements,
			})
			cancelAnalyze()
			if err != nil {
				s.releaseIdempotency(ctx, actor.IdempotencyKey)
				return domain.Verification{}, err
			}
		}
	}

	now := s.nowFn()
	verification := domain.Decide(descriptor, meta, analysis)
	verification.VerificationID = uuid.NewString()
	verification.CampaignID = input.CampaignID
	verification.CreatorAddress = input.CreatorAddress
	verification.URL = input.URL
	verification.CreatedAt = now

	if verification.Verified {
		s.releasePayment(ctx, &verification)
	}

	if s.verifications != nil {
		if err := s.verifications.Create(ctx, verification); err != nil {
			s.releaseIdempotency(ctx, actor.IdempotencyKey)
			return domain.Verification{}, err
		}
	}

	if err := s.enqueueVerificationCompleted(ctx, verification, actor.RequestID, now); err != nil {
		s.releaseIdempotency(ctx, actor.IdempotencyKey)
		return domain.Verification{}, err
	}
	if verification.TransactionID != "" {
		if err := s.enqueuePaymentReleased(ctx, verification, actor.RequestID, now); err != nil {
			s.releaseIdempotency(ctx, actor.IdempotencyKey)
			return domain.Verification{}, err
		}
	}

	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 200, verification)
	return verification, nil
}

// releasePayment issues at most one escrow write. Any failure lands in
// PayoutError; the already-computed Verified flag is never touched.
func (s *Service) releasePayment(ctx context.Context, v *domain.Verification) {
	if s.escrow == nil {
		v.PayoutError = "escrow client not configured"
		return
	}
	if v.CampaignID == "" {
		v.PayoutError = "campaign id required for payout"
		return
	}
	campaignID, err := strconv.ParseUint(v.CampaignID, 10, 64)
	if err != nil {
		v.PayoutError = "invalid campaign id: " + v.CampaignID
		return
	}

	if s.cfg.RequireEnrollment {
		enrollment, err := s.escrow.GetEnrollment(ctx, campaignID, v.CreatorAddress)
		if err != nil {
			v.PayoutError = "enrollment check failed: " + err.Error()
			return
		}
		if enrollment.Paid {
			v.PayoutError = "creator already paid for this campaign"
			return
		}
	}

	txHash, err := s.escrow.VerifyAndRelease(ctx, campaignID, v.CreatorAddress)
	if err != nil {
		v.PayoutError = "payment release failed: " + err.Error()
		return
	}
	v.TransactionID = txHash
}

func (s *Service) GetVerification(ctx context.Context, actor Actor, verificationID string) (domain.Verification, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Verification{}, domain.ErrUnauthorized
	}
	verificationID = strings.TrimSpace(verificationID)
	if verificationID == "" {
		return domain.Verification{}, domain.ErrInvalidInput
	}
	if s.verifications == nil {
		return domain.Verification{}, domain.ErrNotFound
	}
	return s.verifications.GetByID(ctx, verificationID)
}

func (s *Service) ListCampaignVerifications(ctx context.Context, actor Actor, campaignID string) ([]domain.Verification, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return nil, domain.ErrUnauthorized
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, domain.ErrInvalidInput
	}
	if s.verifications == nil {
		return []domain.Verification{}, nil
	}
	return s.verifications.ListByCampaign(ctx, campaignID)
}

func (s *Service) getIdempotentBody(ctx context.Context, key, requestHash string) ([]byte, bool, error) {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return nil, false, nil
	}
	rec, err := s.idempotency.Get(ctx, key, s.nowFn())
	if err != nil || rec == nil {
		return nil, false, err
	}
	if rec.RequestHash != requestHash {
		return nil, false, domain.ErrIdempotencyConflict
	}
	if len(rec.ResponseBody) == 0 {
		return nil, false, nil
	}
	return append([]byte(nil), rec.ResponseBody...), true, nil
}

func (s *Service) reserveIdempotency(ctx context.Context, key, requestHash string) error {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	err := s.idempotency.Reserve(ctx, key, requestHash, s.nowFn().Add(s.cfg.IdempotencyTTL))
	if err == domain.ErrConflict {
		return domain.ErrIdempotencyConflict
	}
	return err
}

// releaseIdempotency drops the reservation after a hard failure so the
// client can retry with the same key instead of waiting out the TTL.
func (s *Service) releaseIdempotency(ctx context.Context, key string) {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return
	}
	_ = s.idempotency.Release(ctx, key)
}

func (s *Service) completeIdempotencyJSON(ctx context.Context, key string, code int, payload any) error {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	b, _ := json.Marshal(payload)
	return s.idempotency.Complete(ctx, key, code, b, s.nowFn())
}

func hashJSON(v any) string {
	b, _ := json.Marshal(v)
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
