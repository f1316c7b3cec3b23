package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	eventadapter "github.com/nischaysood/creator-connect/internal/adapters/events"
	httpadapter "github.com/nischaysood/creator-connect/internal/adapters/http"
	"github.com/nischaysood/creator-connect/internal/adapters/postgres"
	"github.com/nischaysood/creator-connect/internal/application"
	"github.com/nischaysood/creator-connect/internal/domain"
	"github.com/nischaysood/creator-connect/internal/ports"
)

type stubFetcher struct{ meta domain.ContentMetadata }

func (f stubFetcher) Fetch(_ context.Context, _ string, _ domain.Platform) domain.ContentMetadata {
	return f.meta
}

type stubAnalyzer struct {
	analysis domain.AIAnalysis
	err      error
}

func (a stubAnalyzer) Analyze(_ context.Context, _ ports.AnalysisInput) (domain.AIAnalysis, error) {
	return a.analysis, a.err
}

func newRouter(analyzer ports.ContentAnalyzer) http.Handler {
	repos := postgres.NewMemoryRepositories()
	if analyzer == nil {
		analyzer = stubAnalyzer{analysis: domain.AIAnalysis{
			ContentAppropriate:    true,
			BrandSafe:             true,
			SponsorshipDisclosure: true,
			RequirementMatchScore: 90,
		}}
	}
	svc := application.NewService(application.Dependencies{
		Verifications: repos.Verifications,
		Idempotency:   repos.Idempotency,
		Outbox:        repos.Outbox,
		Fetcher:       stubFetcher{meta: domain.ContentMetadata{Exists: true, Title: "Sponsored unboxing"}},
		Analyzer:      analyzer,
		DomainEvents:  &eventadapter.MemoryDomainPublisher{},
		DLQ:           &eventadapter.MemoryDLQPublisher{},
	})
	return httpadapter.NewRouter(httpadapter.NewHandler(svc), httpadapter.RouterConfig{})
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, path, bytes.NewBuffer(raw))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer brand_1")
	return req
}

func TestVerifyReturnsEnvelopeWithVerdict(t *testing.T) {
	t.Parallel()
	router := newRouter(nil)

	req := jsonRequest(t, http.MethodPost, "/v1/verifications", map[string]any{
		"url":             "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"campaign_id":     "7",
		"creator_address": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["status"] != "success" {
		t.Fatalf("expected success envelope, got %v", payload["status"])
	}
	data, _ := payload["data"].(map[string]any)
	if data["verified"] != true {
		t.Fatalf("expected verified=true, got %v", data["verified"])
	}
	if data["platform"] != "youtube" {
		t.Fatalf("expected platform=youtube, got %v", data["platform"])
	}
	if _, ok := data["verification_id"].(string); !ok {
		t.Fatalf("expected verification_id, got %v", data["verification_id"])
	}
	if data["payout_error"] == nil || data["payout_error"] == "" {
		t.Fatal("expected payout_error when no escrow client is configured")
	}
}

func TestVerifyUnsupportedPlatformIsStillOK(t *testing.T) {
	t.Parallel()
	router := newRouter(nil)

	req := jsonRequest(t, http.MethodPost, "/v1/verifications", map[string]any{
		"url":             "https://vimeo.com/12345",
		"creator_address": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("content judgments are not transport errors; expected 200, got %d", res.Code)
	}
	var payload map[string]any
	_ = json.Unmarshal(res.Body.Bytes(), &payload)
	data, _ := payload["data"].(map[string]any)
	if data["verified"] != false {
		t.Fatalf("expected verified=false, got %v", data["verified"])
	}
	if data["score"] != float64(0) {
		t.Fatalf("expected score 0, got %v", data["score"])
	}
}

func TestVerifyMissingURLReturnsBadRequest(t *testing.T) {
	t.Parallel()
	router := newRouter(nil)

	req := jsonRequest(t, http.MethodPost, "/v1/verifications", map[string]any{
		"creator_address": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["code"] != "invalid_input" {
		t.Fatalf("expected top-level code invalid_input, got %v", payload["code"])
	}
	nested, _ := payload["error"].(map[string]any)
	if nested["code"] != "invalid_input" {
		t.Fatalf("expected nested error code, got %v", nested["code"])
	}
}

func TestVerifyWithoutBearerTokenIsRejected(t *testing.T) {
	t.Parallel()
	router := newRouter(nil)

	req := jsonRequest(t, http.MethodPost, "/v1/verifications", map[string]any{
		"url":             "https://youtu.be/dQw4w9WgXcQ",
		"creator_address": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	})
	req.Header.Del("Authorization")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestVerifyAnalyzerNotConfiguredIsServerError(t *testing.T) {
	t.Parallel()
	router := newRouter(stubAnalyzer{err: domain.ErrAnalyzerNotConfigured})

	req := jsonRequest(t, http.MethodPost, "/v1/verifications", map[string]any{
		"url":             "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"creator_address": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	var payload map[string]any
	_ = json.Unmarshal(res.Body.Bytes(), &payload)
	if payload["code"] != "analyzer_not_configured" {
		t.Fatalf("expected analyzer_not_configured, got %v", payload["code"])
	}
}

func TestGetVerificationLookup(t *testing.T) {
	t.Parallel()
	router := newRouter(nil)

	req := jsonRequest(t, http.MethodPost, "/v1/verifications", map[string]any{
		"url":             "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"campaign_id":     "9",
		"creator_address": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("seed verify failed: %d", res.Code)
	}
	var payload map[string]any
	_ = json.Unmarshal(res.Body.Bytes(), &payload)
	data, _ := payload["data"].(map[string]any)
	id, _ := data["verification_id"].(string)

	getReq, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/v1/verifications/"+id, nil)
	getReq.Header.Set("Authorization", "Bearer brand_1")
	getRes := httptest.NewRecorder()
	router.ServeHTTP(getRes, getReq)
	if getRes.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getRes.Code)
	}

	missReq, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/v1/verifications/does-not-exist", nil)
	missReq.Header.Set("Authorization", "Bearer brand_1")
	missRes := httptest.NewRecorder()
	router.ServeHTTP(missRes, missReq)
	if missRes.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missRes.Code)
	}

	listReq, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/v1/campaigns/9/verifications", nil)
	listReq.Header.Set("Authorization", "Bearer brand_1")
	listRes := httptest.NewRecorder()
	router.ServeHTTP(listRes, listReq)
	if listRes.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listRes.Code)
	}
	var listPayload map[string]any
	_ = json.Unmarshal(listRes.Body.Bytes(), &listPayload)
	listData, _ := listPayload["data"].(map[string]any)
	items, _ := listData["verifications"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 verification for campaign, got %d", len(items))
	}
}

func TestHealthEndpointsAreUnauthenticated(t *testing.T) {
	t.Parallel()
	router := newRouter(nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, path, nil)
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d", path, res.Code)
		}
	}
}
