package ports

import (
	"context"

	"github.com/nischaysood/creator-connect/internal/domain"
)

// AnalysisInput carries everything the generative model needs to judge a
// piece of submitted content against a campaign.
type AnalysisInput struct {
	Title        string
	Platform     domain.Platform
	ContentType  domain.ContentType
	Requirements string
}

// ContentAnalyzer performs exactly one model call per invocation. Call or
// parse failures come back as a degraded domain.AIAnalysis with a nil error;
// domain.ErrAnalyzerNotConfigured is the only expected hard failure.
type ContentAnalyzer interface {
	Analyze(ctx context.Context, input AnalysisInput) (domain.AIAnalysis, error)
}

// MetadataFetcher performs the best-effort oEmbed lookup. It never fails:
// the failure policy is encoded in the returned ContentMetadata.
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string, platform domain.Platform) domain.ContentMetadata
}

// Enrollment mirrors one entry of the escrow contract's
// getCampaignEnrollments tuple array.
type Enrollment struct {
	Creator       string
	SubmissionURL string
	Verified      bool
	Paid          bool
}

// EscrowClient is the on-chain collaborator. VerifyAndRelease makes exactly
// one state-changing attempt; retries are the caller's concern.
type EscrowClient interface {
	VerifyAndRelease(ctx context.Context, campaignID uint64, creatorAddress string) (string, error)
	GetEnrollment(ctx context.Context, campaignID uint64, creatorAddress string) (Enrollment, error)
}
