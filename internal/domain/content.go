package domain

import "time"

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformUnknown   Platform = "unknown"
)

type ContentType string

const (
	ContentTypeVideo   ContentType = "video"
	ContentTypeShort   ContentType = "short"
	ContentTypeReel    ContentType = "reel"
	ContentTypePost    ContentType = "post"
	ContentTypeUnknown ContentType = "unknown"
)

// PlatformDescriptor is the structured result of classifying a submitted
// content URL. IsValid=true always implies a non-empty ContentID.
type PlatformDescriptor struct {
	Platform    Platform
	ContentType ContentType
	ContentID   string
	Username    string
	IsValid     bool
}

// ContentMetadata is the best-effort oEmbed lookup result for a content URL.
// Error is only populated when Exists is false.
type ContentMetadata struct {
	Exists       bool
	Title        string
	Author       string
	ThumbnailURL string
	Error        string
}

// AIAnalysis is the normalized verdict from the generative model.
// Degraded marks the conservative fallback produced when the model call or
// response parsing failed; a degraded analysis can never reach the payout
// threshold (see Decide).
type AIAnalysis struct {
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

// DegradedAnalysis returns the conservative default applied when the model
// is unreachable or returns an unparseable response.
func DegradedAnalysis(warning string) AIAnalysis {
	if warning == "" {
		warning = "AI analysis temporarily unavailable"
	}
	return AIAnalysis{
		ContentAppropriate: true,
		BrandSafe:          true,
		Warnings:           []string{warning},
		Degraded:           true,
	}
}

// Verification is the final pipeline outcome and the row persisted to the
// audit log. TransactionID is set only when Verified is true and the escrow
// write succeeded; PayoutError carries the payout outcome separately so a
// failed release never downgrades Verified.
type Verification struct {
	VerificationID string
	CampaignID     string
	CreatorAddress string
	URL            string
	Verified       bool
	Score          int
	Reason         string
	Platform       Platform
	ContentType    ContentType
	ContentID      string
	AIAnalysis     *AIAnalysis
	TransactionID  string
	PayoutError    string
	CreatedAt      time.Time
}
