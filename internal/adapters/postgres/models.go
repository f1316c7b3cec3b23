package postgres

import "time"

type verificationModel struct {
	VerificationID string    `gorm:"column:verification_id;type:uuid;primaryKey"`
	CampaignID     string    `gorm:"column:campaign_id"`
	CreatorAddress string    `gorm:"column:creator_address"`
	URL            string    `gorm:"column:url"`
	Verified       bool      `gorm:"column:verified"`
	Score          int       `gorm:"column:score"`
	Reason         string    `gorm:"column:reason"`
	Platform       string    `gorm:"column:platform"`
	ContentType    string    `gorm:"column:content_type"`
	ContentID      string    `gorm:"column:content_id"`
	AIAnalysis     *string   `gorm:"column:ai_analysis;type:jsonb"`
	TransactionID  string    `gorm:"column:transaction_id"`
	PayoutError    string    `gorm:"column:payout_error"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (verificationModel) TableName() string { return "verifications" }

type outboxModel struct {
	RecordID   string     `gorm:"column:record_id;type:uuid;primaryKey"`
	EventClass string     `gorm:"column:event_class"`
	Envelope   string     `gorm:"column:envelope;type:jsonb"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	SentAt     *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "verification_outbox" }
