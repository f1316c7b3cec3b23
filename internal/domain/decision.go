package domain

import (
	"fmt"
	"strings"
)

const (
	verifyThreshold  = 60
	maxScore         = 99
	degradedScoreCap = 59

	reasonSeparator = " • "
	titleMaxLen     = 60
)

// Decide combines the classifier, metadata and AI stages into one verdict.
// It is a pure function of its inputs: rejection short-circuits are
// evaluated in order and do not stack, otherwise an additive score is
// computed and clamped to [0, maxScore]. Verified requires the score
// threshold plus both hard safety gates, regardless of the numeric score.
func Decide(desc PlatformDescriptor, meta ContentMetadata, analysis AIAnalysis) Verification {
	if desc.Platform == PlatformUnknown {
		return rejected(desc, 0, "URL is not from a supported platform")
	}
	if !desc.IsValid {
		return rejected(desc, 15, fmt.Sprintf("Invalid %s URL", desc.Platform))
	}
	if !meta.Exists {
		return rejected(desc, 25, "Content not found or is private")
	}

	score := 35
	findings := []string{fmt.Sprintf("Content confirmed on %s", desc.Platform)}

	switch desc.Platform {
	case PlatformYouTube:
		score += 20
	case PlatformTikTok:
		score += 18
	default:
		score += 15
	}

	switch desc.ContentType {
	case ContentTypeVideo, ContentTypeReel, ContentTypeShort:
		score += 10
		findings = append(findings, fmt.Sprintf("%s format matches campaign media", desc.ContentType))
	}

	if analysis.SponsorshipDisclosure {
		score += 20
		findings = append(findings, "Sponsorship disclosure present")
	} else {
		score -= 5
		findings = append(findings, "No sponsorship disclosure detected")
	}

	if analysis.BrandSafe {
		score += 10
		findings = append(findings, "Content is brand safe")
	} else {
		score -= 20
		findings = append(findings, "Content flagged as not brand safe")
	}

	if analysis.ContentAppropriate {
		score += 5
	} else {
		score -= 25
		findings = append(findings, "Content flagged as inappropriate")
	}

	switch {
	case analysis.RequirementMatchScore >= 80:
		score += 10
	case analysis.RequirementMatchScore >= 60:
		score += 5
	}

	if analysis.Degraded {
		// Conservative fallback must never reach the payout threshold.
		if score > degradedScoreCap {
			score = degradedScoreCap
		}
		findings = append(findings, "AI analysis unavailable, score capped")
	}

	if meta.Title != "" {
		findings = append(findings, fmt.Sprintf("Title: %q", truncate(meta.Title, titleMaxLen)))
	}

	if score < 0 {
		score = 0
	}
	if score > maxScore {
		score = maxScore
	}

	a := analysis
	return Verification{
		Verified:    score >= verifyThreshold && analysis.BrandSafe && analysis.ContentAppropriate,
		Score:       score,
		Reason:      strings.Join(findings, reasonSeparator),
		Platform:    desc.Platform,
		ContentType: desc.ContentType,
		ContentID:   desc.ContentID,
		AIAnalysis:  &a,
	}
}

func rejected(desc PlatformDescriptor, score int, reason string) Verification {
	return Verification{
		Score:       score,
		Reason:      reason,
		Platform:    desc.Platform,
		ContentType: desc.ContentType,
		ContentID:   desc.ContentID,
	}
}

// truncate shortens s to at most max runes, never splitting a multi-byte
// character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
