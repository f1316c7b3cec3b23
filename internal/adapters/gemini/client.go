package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nischaysood/creator-connect/internal/domain"
	"github.com/nischaysood/creator-connect/internal/ports"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client judges submitted content with a single Gemini call per Analyze.
// Model or parse failures degrade to the conservative fallback verdict
// instead of failing the request; the only hard error is a missing API key.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default().With("module", "gemini", "layer", "adapter"),
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// aiVerdict mirrors the JSON object the prompt instructs the model to emit.
// The required fields use pointers so a response that omits any of them is
// rejected instead of silently defaulting to zero values.
type aiVerdict struct {
	RequirementMatch     *int     `json:"requirementMatch"`
	IsContentAppropriate *bool    `json:"isContentAppropriate"`
	IsBrandSafe          *bool    `json:"isBrandSafe"`
	HasSponsorship       bool     `json:"hasSponsorship"`
	ContentDescription   string   `json:"contentDescription"`
	MatchedRequirements  []string `json:"matchedRequirements"`
	MissedRequirements   []string `json:"missedRequirements"`
	ConfidenceScore      int      `json:"confidenceScore"`
	Recommendation       string   `json:"recommendation"`
	Reason               string   `json:"reason"`
}

func (c *Client) Analyze(ctx context.Context, input ports.AnalysisInput) (domain.AIAnalysis, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return domain.AIAnalysis{}, domain.ErrAnalyzerNotConfigured
	}

	text, err := c.generate(ctx, buildPrompt(input))
	if err != nil {
		c.logger.WarnContext(ctx, "model call failed",
			"operation", "analyze", "outcome", "degraded", "error", err.Error())
		return domain.DegradedAnalysis(""), nil
	}

	verdict, err := parseVerdict(text)
	if err != nil {
		c.logger.WarnContext(ctx, "model verdict unparseable",
			"operation", "analyze", "outcome", "degraded", "error", err.Error())
		return domain.DegradedAnalysis(""), nil
	}

	score := *verdict.RequirementMatch
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	analysis := domain.AIAnalysis{
		ContentAppropriate:    *verdict.IsContentAppropriate,
		BrandSafe:             *verdict.IsBrandSafe,
		SponsorshipDisclosure: verdict.HasSponsorship,
		Description:           verdict.ContentDescription,
		MatchedRequirements:   verdict.MatchedRequirements,
		UnmetRequirements:     verdict.MissedRequirements,
		RequirementMatchScore: score,
	}
	if analysis.Description == "" {
		analysis.Description = verdict.Reason
	}
	if rec := strings.ToUpper(strings.TrimSpace(verdict.Recommendation)); rec == "REJECT" || rec == "REVIEW" {
		warning := "model recommends " + rec
		if verdict.Reason != "" {
			warning += ": " + verdict.Reason
		}
		analysis.Warnings = append(analysis.Warnings, warning)
	}
	return analysis, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	apiURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, url.QueryEscape(c.cfg.APIKey))

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini api request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini api error (status %d): %s", resp.StatusCode, string(raw))
	}

	var payload geminiResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if payload.Error != nil {
		return "", fmt.Errorf("gemini api returned error: %s", payload.Error.Message)
	}
	if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned from gemini")
	}
	return payload.Candidates[0].Content.Parts[0].Text, nil
}

func buildPrompt(input ports.AnalysisInput) string {
	requirements := strings.TrimSpace(input.Requirements)
	if requirements == "" {
		requirements = "general social media promotion"
	}
	var b strings.Builder
	b.WriteString("You are a strict brand-safety reviewer for an influencer marketing platform.\n")
	b.WriteString("Judge the following piece of creator content from its metadata.\n\n")
	fmt.Fprintf(&b, "Platform: %s\n", input.Platform)
	fmt.Fprintf(&b, "Content type: %s\n", input.ContentType)
	fmt.Fprintf(&b, "Title: %s\n", input.Title)
	fmt.Fprintf(&b, "Campaign requirements: %s\n\n", requirements)
	b.WriteString("Respond with ONLY a JSON object, no markdown fences, using exactly these keys:\n")
	b.WriteString(`{"requirementMatch": number 0-100, "isContentAppropriate": bool, "isBrandSafe": bool, ` +
		`"hasSponsorship": bool, "contentDescription": string, "matchedRequirements": [string], ` +
		`"missedRequirements": [string], "confidenceScore": number 0-100, ` +
		`"recommendation": "APPROVE" | "REJECT" | "REVIEW", "reason": string}`)
	b.WriteString("\nBe conservative: when in doubt, mark the content as not brand safe.")
	return b.String()
}

func parseVerdict(text string) (aiVerdict, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return aiVerdict{}, err
	}
	var verdict aiVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return aiVerdict{}, fmt.Errorf("verdict is not valid json: %w", err)
	}
	if verdict.IsContentAppropriate == nil || verdict.IsBrandSafe == nil || verdict.RequirementMatch == nil {
		return aiVerdict{}, fmt.Errorf("verdict missing required fields")
	}
	return verdict, nil
}

// extractJSONObject returns the first balanced top-level JSON object in the
// model output, tolerating markdown fences and prose around it.
func extractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("no json object in model output")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced json object in model output")
}
