package unit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	eventadapter "github.com/nischaysood/creator-connect/internal/adapters/events"
	"github.com/nischaysood/creator-connect/internal/adapters/postgres"
	"github.com/nischaysood/creator-connect/internal/application"
	"github.com/nischaysood/creator-connect/internal/domain"
	"github.com/nischaysood/creator-connect/internal/ports"
)

const creatorAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

type fakeFetcher struct {
	meta  domain.ContentMetadata
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, _ domain.Platform) domain.ContentMetadata {
	f.calls++
	return f.meta
}

type fakeAnalyzer struct {
	analysis domain.AIAnalysis
	err      error
	calls    int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ ports.AnalysisInput) (domain.AIAnalysis, error) {
	f.calls++
	return f.analysis, f.err
}

type fakeEscrow struct {
	txHash     string
	releaseErr error
	enrollment ports.Enrollment
	enrollErr  error
	releases   int
}

func (f *fakeEscrow) VerifyAndRelease(_ context.Context, _ uint64, _ string) (string, error) {
	f.releases++
	if f.releaseErr != nil {
		return "", f.releaseErr
	}
	return f.txHash, nil
}

func (f *fakeEscrow) GetEnrollment(_ context.Context, _ uint64, _ string) (ports.Enrollment, error) {
	return f.enrollment, f.enrollErr
}

type deps struct {
	repos    *postgres.MemoryRepositories
	fetcher  *fakeFetcher
	analyzer *fakeAnalyzer
	escrow   *fakeEscrow
	events   *eventadapter.MemoryDomainPublisher
	dlq      *eventadapter.MemoryDLQPublisher
}

func newService(cfg application.Config, d *deps) *application.Service {
	if d.repos == nil {
		d.repos = postgres.NewMemoryRepositories()
	}
	if d.fetcher == nil {
		d.fetcher = &fakeFetcher{meta: domain.ContentMetadata{Exists: true, Title: "Sponsored review"}}
	}
	if d.analyzer == nil {
		d.analyzer = &fakeAnalyzer{analysis: domain.AIAnalysis{
			ContentAppropriate:    true,
			BrandSafe:             true,
			SponsorshipDisclosure: true,
			RequirementMatchScore: 90,
		}}
	}
	if d.events == nil {
		d.events = &eventadapter.MemoryDomainPublisher{}
	}
	if d.dlq == nil {
		d.dlq = &eventadapter.MemoryDLQPublisher{}
	}
	var escrow ports.EscrowClient
	if d.escrow != nil {
		escrow = d.escrow
	}
	return application.NewService(application.Dependencies{
		Config:        cfg,
		Verifications: d.repos.Verifications,
		Idempotency:   d.repos.Idempotency,
		Outbox:        d.repos.Outbox,
		Fetcher:       d.fetcher,
		Analyzer:      d.analyzer,
		Escrow:        escrow,
		DomainEvents:  d.events,
		DLQ:           d.dlq,
	})
}

func actor(idemKey string) application.Actor {
	return application.Actor{SubjectID: "brand_1", Role: "brand", RequestID: "req_1", IdempotencyKey: idemKey}
}

func verifyInput() application.VerifyInput {
	return application.VerifyInput{
		URL:                  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		CampaignID:           "7",
		CreatorAddress:       creatorAddr,
		CampaignRequirements: "mention the product",
	}
}

func TestVerifyContentReleasesPaymentOnce(t *testing.T) {
	d := &deps{escrow: &fakeEscrow{txHash: "0xdeadbeef"}}
	svc := newService(application.Config{}, d)

	row, err := svc.VerifyContent(context.Background(), actor(""), verifyInput())
	if err != nil {
		t.Fatalf("VerifyContent: %v", err)
	}
	if !row.Verified {
		t.Fatalf("expected verified, got %+v", row)
	}
	if row.TransactionID != "0xdeadbeef" {
		t.Fatalf("expected transaction id, got %q", row.TransactionID)
	}
	if row.PayoutError != "" {
		t.Fatalf("unexpected payout error %q", row.PayoutError)
	}
	if d.escrow.releases != 1 {
		t.Fatalf("expected exactly one release attempt, got %d", d.escrow.releases)
	}
	if d.fetcher.calls != 1 || d.analyzer.calls != 1 {
		t.Fatalf("expected one fetch and one analyze, got %d/%d", d.fetcher.calls, d.analyzer.calls)
	}

	pending, err := d.repos.Outbox.ListPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 outbox events (completed + released), got %d", len(pending))
	}
	types := map[string]bool{}
	for _, rec := range pending {
		types[rec.Envelope.EventType] = true
		if rec.Envelope.PartitionKey != "7" {
			t.Fatalf("expected campaign partition key, got %q", rec.Envelope.PartitionKey)
		}
	}
	if !types[domain.EventVerificationCompleted] || !types[domain.EventPaymentReleased] {
		t.Fatalf("unexpected event types %v", types)
	}

	stored, err := d.repos.Verifications.GetByID(context.Background(), row.VerificationID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Score != row.Score || !stored.Verified {
		t.Fatalf("stored row diverges: %+v", stored)
	}
}

func TestVerifyContentPayoutFailureKeepsVerified(t *testing.T) {
	d := &deps{escrow: &fakeEscrow{releaseErr: errors.New("execution reverted")}}
	svc := newService(application.Config{}, d)

	row, err := svc.VerifyContent(context.Background(), actor(""), verifyInput())
	if err != nil {
		t.Fatalf("VerifyContent: %v", err)
	}
	if !row.Verified {
		t.Fatal("payout failure must not downgrade verified")
	}
	if row.TransactionID != "" {
		t.Fatalf("expected no transaction id, got %q", row.TransactionID)
	}
	if row.PayoutError == "" {
		t.Fatal("expected payout error to be surfaced")
	}

	pending, _ := d.repos.Outbox.ListPending(context.Background(), 10)
	if len(pending) != 1 || pending[0].Envelope.EventType != domain.EventVerificationCompleted {
		t.Fatalf("expected only verification.completed, got %+v", pending)
	}
}

func TestVerifyContentUnverifiedSkipsEscrow(t *testing.T) {
	d := &deps{
		analyzer: &fakeAnalyzer{analysis: domain.AIAnalysis{ContentAppropriate: true, BrandSafe: false}},
		escrow:   &fakeEscrow{txHash: "0x1"},
	}
	svc := newService(application.Config{}, d)

	row, err := svc.VerifyContent(context.Background(), actor(""), verifyInput())
	if err != nil {
		t.Fatalf("VerifyContent: %v", err)
	}
	if row.Verified {
		t.Fatal("expected unverified")
	}
	if d.escrow.releases != 0 {
		t.Fatalf("escrow must not be called for unverified content, got %d calls", d.escrow.releases)
	}
}

func TestVerifyContentMissingCampaignStillVerifies(t *testing.T) {
	d := &deps{escrow: &fakeEscrow{txHash: "0x1"}}
	svc := newService(application.Config{}, d)

	input := verifyInput()
	input.CampaignID = ""
	row, err := svc.VerifyContent(context.Background(), actor(""), input)
	if err != nil {
		t.Fatalf("VerifyContent: %v", err)
	}
	if !row.Verified {
		t.Fatal("missing campaign id must not block verification")
	}
	if d.escrow.releases != 0 {
		t.Fatal("payout requires a campaign id")
	}
	if row.PayoutError == "" {
		t.Fatal("expected payout error explaining the missing campaign id")
	}
}

func TestVerifyContentUnknownPlatformSkipsPipeline(t *testing.T) {
	d := &deps{}
	svc := newService(application.Config{}, d)

	input := verifyInput()
	input.URL = "https://vimeo.com/12345"
	row, err := svc.VerifyContent(context.Background(), actor(""), input)
	if err != nil {
		t.Fatalf("VerifyContent: %v", err)
	}
	if row.Verified || row.Score != 0 {
		t.Fatalf("expected score 0 unverified, got %+v", row)
	}
	if d.fetcher.calls != 0 || d.analyzer.calls != 0 {
		t.Fatalf("unsupported URLs must not reach fetch/analyze, got %d/%d", d.fetcher.calls, d.analyzer.calls)
	}
}

func TestVerifyContentMissingMetadataSkipsAnalyzer(t *testing.T) {
	d := &deps{fetcher: &fakeFetcher{meta: domain.ContentMetadata{Exists: false, Error: "gone"}}}
	svc := newService(application.Config{}, d)

	row, err := svc.VerifyContent(context.Background(), actor(""), verifyInput())
	if err != nil {
		t.Fatalf("VerifyContent: %v", err)
	}
	if row.Score != 25 {
		t.Fatalf("expected score 25 for missing content, got %d", row.Score)
	}
	if d.analyzer.calls != 0 {
		t.Fatal("analyzer must not run without metadata")
	}
}

func TestVerifyContentInputValidation(t *testing.T) {
	svc := newService(application.Config{}, &deps{})

	if _, err := svc.VerifyContent(context.Background(), application.Actor{}, verifyInput()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	input := verifyInput()
	input.URL = "  "
	if _, err := svc.VerifyContent(context.Background(), actor(""), input); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing url, got %v", err)
	}

	input = verifyInput()
	input.CreatorAddress = ""
	if _, err := svc.VerifyContent(context.Background(), actor(""), input); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing creator, got %v", err)
	}
}

func TestVerifyContentAnalyzerNotConfigured(t *testing.T) {
	d := &deps{analyzer: &fakeAnalyzer{err: domain.ErrAnalyzerNotConfigured}}
	svc := newService(application.Config{}, d)

	if _, err := svc.VerifyContent(context.Background(), actor(""), verifyInput()); !errors.Is(err, domain.ErrAnalyzerNotConfigured) {
		t.Fatalf("expected ErrAnalyzerNotConfigured, got %v", err)
	}
}

func TestVerifyContentIdempotentReplay(t *testing.T) {
	d := &deps{escrow: &fakeEscrow{txHash: "0x1"}}
	svc := newService(application.Config{}, d)

	first, err := svc.VerifyContent(context.Background(), actor("idem-1"), verifyInput())
	if err != nil {
		t.Fatalf("first VerifyContent: %v", err)
	}
	second, err := svc.VerifyContent(context.Background(), actor("idem-1"), verifyInput())
	if err != nil {
		t.Fatalf("second VerifyContent: %v", err)
	}
	if first.VerificationID != second.VerificationID {
		t.Fatalf("expected replayed verification, got %s vs %s", first.VerificationID, second.VerificationID)
	}
	if d.escrow.releases != 1 {
		t.Fatalf("replay must not re-release payment, got %d releases", d.escrow.releases)
	}
	if d.analyzer.calls != 1 {
		t.Fatalf("replay must not re-run analysis, got %d calls", d.analyzer.calls)
	}
}

func TestVerifyContentIdempotencyConflict(t *testing.T) {
	d := &deps{escrow: &fakeEscrow{txHash: "0x1"}}
	svc := newService(application.Config{}, d)

	if _, err := svc.VerifyContent(context.Background(), actor("idem-2"), verifyInput()); err != nil {
		t.Fatalf("first VerifyContent: %v", err)
	}
	other := verifyInput()
	other.URL = "https://youtu.be/dQw4w9WgXcQ"
	if _, err := svc.VerifyContent(context.Background(), actor("idem-2"), other); !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("expected ErrIdempotencyConflict, got %v", err)
	}
}

func TestVerifyContentRetryAfterHardFailure(t *testing.T) {
	d := &deps{
		escrow:   &fakeEscrow{txHash: "0x1"},
		analyzer: &fakeAnalyzer{err: domain.ErrAnalyzerNotConfigured},
	}
	svc := newService(application.Config{}, d)

	if _, err := svc.VerifyContent(context.Background(), actor("idem-retry"), verifyInput()); !errors.Is(err, domain.ErrAnalyzerNotConfigured) {
		t.Fatalf("expected ErrAnalyzerNotConfigured, got %v", err)
	}

	// a hard failure must free the reservation so the same key can retry
	// before the TTL runs out
	d.analyzer.err = nil
	d.analyzer.analysis = domain.AIAnalysis{
		ContentAppropriate:    true,
		BrandSafe:             true,
		SponsorshipDisclosure: true,
		RequirementMatchScore: 90,
	}
	row, err := svc.VerifyContent(context.Background(), actor("idem-retry"), verifyInput())
	if err != nil {
		t.Fatalf("retry with same key: %v", err)
	}
	if !row.Verified {
		t.Fatalf("expected verified on retry, got %+v", row)
	}
}

func TestVerifyContentEnrollmentPreCheck(t *testing.T) {
	d := &deps{escrow: &fakeEscrow{
		txHash:     "0x1",
		enrollment: ports.Enrollment{Creator: creatorAddr, Paid: true},
	}}
	svc := newService(application.Config{RequireEnrollment: true}, d)

	row, err := svc.VerifyContent(context.Background(), actor(""), verifyInput())
	if err != nil {
		t.Fatalf("VerifyContent: %v", err)
	}
	if !row.Verified {
		t.Fatal("already-paid creator still gets a verified verdict")
	}
	if d.escrow.releases != 0 {
		t.Fatal("already-paid creator must not be paid again")
	}
	if row.PayoutError == "" {
		t.Fatal("expected payout error for already-paid enrollment")
	}
}

func TestGetVerificationNotFound(t *testing.T) {
	svc := newService(application.Config{}, &deps{})
	if _, err := svc.GetVerification(context.Background(), actor(""), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCampaignVerifications(t *testing.T) {
	d := &deps{}
	svc := newService(application.Config{}, d)

	for i := 0; i < 3; i++ {
		input := verifyInput()
		input.CampaignID = "42"
		input.URL = fmt.Sprintf("https://www.youtube.com/watch?v=dQw4w9WgXc%d", i)
		if _, err := svc.VerifyContent(context.Background(), actor(""), input); err != nil {
			t.Fatalf("VerifyContent %d: %v", i, err)
		}
	}
	rows, err := svc.ListCampaignVerifications(context.Background(), actor(""), "42")
	if err != nil {
		t.Fatalf("ListCampaignVerifications: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}

func TestFlushOutboxPublishesAndMarksSent(t *testing.T) {
	d := &deps{escrow: &fakeEscrow{txHash: "0x1"}}
	svc := newService(application.Config{}, d)

	if _, err := svc.VerifyContent(context.Background(), actor(""), verifyInput()); err != nil {
		t.Fatalf("VerifyContent: %v", err)
	}
	if err := svc.FlushOutbox(context.Background()); err != nil {
		t.Fatalf("FlushOutbox: %v", err)
	}
	if len(d.events.Events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(d.events.Events))
	}
	pending, _ := d.repos.Outbox.ListPending(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("expected empty outbox after flush, got %d", len(pending))
	}
}

func TestFlushOutboxDeadLettersOnPublishFailure(t *testing.T) {
	d := &deps{
		escrow: &fakeEscrow{txHash: "0x1"},
		events: &eventadapter.MemoryDomainPublisher{Fail: errors.New("broker down")},
	}
	svc := newService(application.Config{}, d)

	if _, err := svc.VerifyContent(context.Background(), actor(""), verifyInput()); err != nil {
		t.Fatalf("VerifyContent: %v", err)
	}
	if err := svc.FlushOutbox(context.Background()); err == nil {
		t.Fatal("expected flush error on publish failure")
	}
	if len(d.dlq.Records) != 1 {
		t.Fatalf("expected 1 dlq record, got %d", len(d.dlq.Records))
	}
	pending, _ := d.repos.Outbox.ListPending(context.Background(), 10)
	if len(pending) == 0 {
		t.Fatal("failed record must stay pending for retry")
	}
}
