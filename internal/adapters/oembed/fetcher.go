package oembed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nischaysood/creator-connect/internal/domain"
)

// Endpoints that answer unauthenticated oEmbed lookups. Instagram's endpoint
// requires an app token, so that platform is resolved optimistically without
// a network call.
var oembedEndpoints = map[domain.Platform]string{
	domain.PlatformYouTube: "https://www.youtube.com/oembed",
	domain.PlatformTwitter: "https://publish.twitter.com/oembed",
	domain.PlatformTikTok:  "https://www.tiktok.com/oembed",
}

type Fetcher struct {
	client    *http.Client
	logger    *slog.Logger
	endpoints map[domain.Platform]string
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		logger:    slog.Default().With("module", "oembed", "layer", "adapter"),
		endpoints: oembedEndpoints,
	}
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Fetch resolves best-effort metadata for a content URL. A definitive HTTP
// rejection (status >= 400) reports the content as missing; transport and
// decode failures fall back to an optimistic result so a flaky provider
// cannot block verification on its own.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, platform domain.Platform) domain.ContentMetadata {
	endpoint, ok := f.endpoints[platform]
	if !ok {
		return optimisticMetadata(platform)
	}

	lookup := endpoint + "?format=json&url=" + url.QueryEscape(rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookup, nil)
	if err != nil {
		return optimisticMetadata(platform)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.WarnContext(ctx, "oembed lookup failed",
			"operation", "fetch", "outcome", "degraded", "platform", string(platform), "error", err.Error())
		return optimisticMetadata(platform)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return domain.ContentMetadata{
			Exists: false,
			Error:  fmt.Sprintf("oembed lookup returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return optimisticMetadata(platform)
	}
	var payload oembedResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		f.logger.WarnContext(ctx, "oembed response unparseable",
			"operation", "fetch", "outcome", "degraded", "platform", string(platform), "error", err.Error())
		return optimisticMetadata(platform)
	}

	meta := domain.ContentMetadata{
		Exists:       true,
		Title:        payload.Title,
		Author:       payload.AuthorName,
		ThumbnailURL: payload.ThumbnailURL,
	}
	if meta.Title == "" {
		meta.Title = genericTitle(platform)
	}
	return meta
}

func optimisticMetadata(platform domain.Platform) domain.ContentMetadata {
	return domain.ContentMetadata{Exists: true, Title: genericTitle(platform)}
}

func genericTitle(platform domain.Platform) string {
	switch platform {
	case domain.PlatformYouTube:
		return "YouTube content"
	case domain.PlatformInstagram:
		return "Instagram content"
	case domain.PlatformTikTok:
		return "TikTok content"
	case domain.PlatformTwitter:
		return "Twitter/X content"
	default:
		return "Social media content"
	}
}
