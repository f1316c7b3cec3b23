package domain

const (
	CanonicalEventClassDomain        = "domain"
	CanonicalEventClassAnalyticsOnly = "analytics_only"
)

const (
	EventVerificationCompleted = "verification.completed"
	EventPaymentReleased       = "payment.released"
)

func IsCanonicalEmittedEvent(eventType string) bool {
	switch eventType {
	case EventVerificationCompleted, EventPaymentReleased:
		return true
	default:
		return false
	}
}

func CanonicalEventClass(eventType string) string {
	if IsCanonicalEmittedEvent(eventType) {
		return CanonicalEventClassDomain
	}
	return ""
}

func CanonicalPartitionKeyPath(eventType string) string {
	if IsCanonicalEmittedEvent(eventType) {
		return "data.campaign_id"
	}
	return ""
}
