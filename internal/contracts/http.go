package contracts

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Status    string       `json:"status"`
	Code      string       `json:"code,omitempty"`
	Message   string       `json:"message,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Error     ErrorPayload `json:"error"`
}

type VerifyRequest struct {
	URL                  string `json:"url"`
	CampaignID           string `json:"campaign_id"`
	CreatorAddress       string `json:"creator_address"`
	CampaignRequirements string `json:"campaign_requirements,omitempty"`
}

type AIAnalysisResponse struct {
	ContentAppropriate    bool     `json:"is_content_appropriate"`
	BrandSafe             bool     `json:"is_brand_safe"`
	SponsorshipDisclosure bool     `json:"has_sponsorship_disclosure"`
	Description           string   `json:"description,omitempty"`
	MatchedRequirements   []string `json:"matched_requirements,omitempty"`
	UnmetRequirements     []string `json:"unmet_requirements,omitempty"`
	RequirementMatchScore int      `json:"requirement_match_score"`
	Warnings              []string `json:"warnings,omitempty"`
	Degraded              bool     `json:"degraded,omitempty"`
}

type VerificationResponse struct {
	VerificationID string              `json:"verification_id"`
	CampaignID     string              `json:"campaign_id,omitempty"`
	CreatorAddress string              `json:"creator_address"`
	URL            string              `json:"url"`
	Verified       bool                `json:"verified"`
	Score          int                 `json:"score"`
	Reason         string              `json:"reason"`
	Platform       string              `json:"platform"`
	ContentType    string              `json:"content_type"`
	ContentID      string              `json:"content_id,omitempty"`
	AIAnalysis     *AIAnalysisResponse `json:"ai_analysis,omitempty"`
	TransactionID  string              `json:"transaction_id,omitempty"`
	PayoutError    string              `json:"payout_error,omitempty"`
	CreatedAt      string              `json:"created_at"`
}

type ListVerificationsResponse struct {
	Verifications []VerificationResponse `json:"verifications"`
}
