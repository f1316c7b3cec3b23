package contracts

import (
	"encoding/json"
	"time"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	EventClass       string          `json:"event_class"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path,omitempty"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

type DLQRecord struct {
	OriginalEvent EventEnvelope `json:"original_event"`
	ErrorSummary  string        `json:"error_summary"`
	RetryCount    int           `json:"retry_count"`
	FirstSeenAt   time.Time     `json:"first_seen_at"`
	LastErrorAt   time.Time     `json:"last_error_at"`
	SourceTopic   string        `json:"source_topic"`
	DLQTopic      string        `json:"dlq_topic"`
	TraceID       string        `json:"trace_id"`
}

type VerificationCompletedPayload struct {
	VerificationID string `json:"verification_id"`
	CampaignID     string `json:"campaign_id"`
	CreatorAddress string `json:"creator_address"`
	Platform       string `json:"platform"`
	Verified       bool   `json:"verified"`
	Score          int    `json:"score"`
	CompletedAt    string `json:"completed_at"`
}

type PaymentReleasedPayload struct {
	VerificationID string `json:"verification_id"`
	CampaignID     string `json:"campaign_id"`
	CreatorAddress string `json:"creator_address"`
	TransactionID  string `json:"transaction_id"`
	ReleasedAt     string `json:"released_at"`
}
