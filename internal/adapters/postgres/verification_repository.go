package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nischaysood/creator-connect/internal/domain"
	"github.com/nischaysood/creator-connect/internal/ports"
)

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) ports.VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(ctx context.Context, row domain.Verification) error {
	rec, err := toVerificationModel(row)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *verificationRepository) GetByID(ctx context.Context, verificationID string) (domain.Verification, error) {
	var rec verificationModel
	err := r.db.WithContext(ctx).Where("verification_id = ?", verificationID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Verification{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Verification{}, err
	}
	return fromVerificationModel(rec)
}

func (r *verificationRepository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Verification, error) {
	var recs []verificationModel
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Verification, 0, len(recs))
	for _, rec := range recs {
		row, err := fromVerificationModel(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func toVerificationModel(row domain.Verification) (verificationModel, error) {
	rec := verificationModel{
		VerificationID: row.VerificationID,
		CampaignID:     row.CampaignID,
		CreatorAddress: row.CreatorAddress,
		URL:            row.URL,
		Verified:       row.Verified,
		Score:          row.Score,
		Reason:         row.Reason,
		Platform:       string(row.Platform),
		ContentType:    string(row.ContentType),
		ContentID:      row.ContentID,
		TransactionID:  row.TransactionID,
		PayoutError:    row.PayoutError,
		CreatedAt:      row.CreatedAt,
	}
	if row.AIAnalysis != nil {
		b, err := json.Marshal(row.AIAnalysis)
		if err != nil {
			return verificationModel{}, fmt.Errorf("marshal ai analysis: %w", err)
		}
		s := string(b)
		rec.AIAnalysis = &s
	}
	return rec, nil
}

func fromVerificationModel(rec verificationModel) (domain.Verification, error) {
	row := domain.Verification{
		VerificationID: rec.VerificationID,
		CampaignID:     rec.CampaignID,
		CreatorAddress: rec.CreatorAddress,
		URL:            rec.URL,
		Verified:       rec.Verified,
		Score:          rec.Score,
		Reason:         rec.Reason,
		Platform:       domain.Platform(rec.Platform),
		ContentType:    domain.ContentType(rec.ContentType),
		ContentID:      rec.ContentID,
		TransactionID:  rec.TransactionID,
		PayoutError:    rec.PayoutError,
		CreatedAt:      rec.CreatedAt,
	}
	if rec.AIAnalysis != nil && *rec.AIAnalysis != "" {
		var analysis domain.AIAnalysis
		if err := json.Unmarshal([]byte(*rec.AIAnalysis), &analysis); err != nil {
			return domain.Verification{}, fmt.Errorf("unmarshal ai analysis: %w", err)
		}
		row.AIAnalysis = &analysis
	}
	return row, nil
}
