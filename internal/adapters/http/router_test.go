package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
	"github.com/bzrsoft/bzr-portal/internal/core/ports"
	"github.com/bzrsoft/bzr-portal/internal/observability/metrics"
)

type readerFake struct {
	dueWithin []domain.LegalObligation
	overdue   []domain.LegalObligation
	byCompany []domain.LegalObligation
	err       error
}

func (f *readerFake) DueWithin(_ context.Context, _ int, _ domain.ObligationFilter) ([]domain.LegalObligation, error) {
	return f.dueWithin, f.err
}

func (f *readerFake) Overdue(_ context.Context, _ domain.ObligationFilter) ([]domain.LegalObligation, error) {
	return f.overdue, f.err
}

func (f *readerFake) ByCompany(_ context.Context, _ string) ([]domain.LegalObligation, error) {
	return f.byCompany, f.err
}

type obligationRepoStub struct {
	completeErr  error
	completedIDs []string
}

func (s *obligationRepoStub) CreateIfAbsent(context.Context, *domain.LegalObligation) (bool, error) {
	return false, nil
}

func (s *obligationRepoStub) GetByID(context.Context, string) (*domain.LegalObligation, error) {
	return nil, domain.WrapError(domain.ErrNotFound, "get obligation", domain.ErrNotFound)
}

func (s *obligationRepoStub) ListByCompany(context.Context, string) ([]domain.LegalObligation, error) {
	return nil, nil
}

func (s *obligationRepoStub) ListDueWithin(context.Context, time.Time, time.Time, domain.ObligationFilter) ([]domain.LegalObligation, error) {
	return nil, nil
}

func (s *obligationRepoStub) ListOverdue(context.Context, time.Time, domain.ObligationFilter) ([]domain.LegalObligation, error) {
	return nil, nil
}

func (s *obligationRepoStub) ListNotificationCandidates(context.Context, time.Time) ([]domain.LegalObligation, error) {
	return nil, nil
}

func (s *obligationRepoStub) MarkNotified(context.Context, string, domain.NotificationGate) (bool, error) {
	return false, nil
}

func (s *obligationRepoStub) ExpireOverdue(context.Context, time.Time, string) (int, error) {
	return 0, nil
}

func (s *obligationRepoStub) Complete(_ context.Context, id string) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	s.completedIDs = append(s.completedIDs, id)
	return nil
}

type notifierFake struct {
	result domain.NotifyResult
	err    error
}

func (f *notifierFake) Run(context.Context, time.Time) (domain.NotifyResult, error) {
	return f.result, f.err
}

type sweepQueueFake struct {
	published []string
	err       error
}

func (f *sweepQueueFake) PublishSweepRequested(_ context.Context, companyID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, companyID)
	return nil
}

func (f *sweepQueueFake) SubscribeSweepRequested(context.Context, func(context.Context, string) error) error {
	return nil
}

type assessmentSvcFake struct {
	created *domain.HazardAssessment
	listed  []domain.HazardAssessment
	err     error
}

func (f *assessmentSvcFake) Create(_ context.Context, input ports.AssessmentInput) (*domain.HazardAssessment, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &domain.HazardAssessment{
		ID:        "ha-1",
		CompanyID: input.CompanyID,
		Initial:   input.Initial,
		Residual:  input.Residual,
	}
	return f.created, nil
}

func (f *assessmentSvcFake) ListByPosition(context.Context, string, string) ([]domain.HazardAssessment, error) {
	return f.listed, f.err
}

type injurySvcFake struct {
	listed []domain.InjuryReport
	err    error
}

func (f *injurySvcFake) Create(_ context.Context, input ports.InjuryInput) (*domain.InjuryReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.InjuryReport{ID: "ir-1", CompanyID: input.CompanyID, Codes: input.Codes}, nil
}

func (f *injurySvcFake) ListByCompany(context.Context, string) ([]domain.InjuryReport, error) {
	return f.listed, f.err
}

type routerFixture struct {
	reader      *readerFake
	repo        *obligationRepoStub
	notifier    *notifierFake
	queue       *sweepQueueFake
	assessments *assessmentSvcFake
	injuries    *injurySvcFake
	handler     http.Handler
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		reader:      &readerFake{},
		repo:        &obligationRepoStub{},
		notifier:    &notifierFake{},
		queue:       &sweepQueueFake{},
		assessments: &assessmentSvcFake{},
		injuries:    &injurySvcFake{},
	}
	router := NewRouter(
		f.reader,
		f.repo,
		f.notifier,
		f.queue,
		f.assessments,
		f.injuries,
		metrics.NewHTTPServerMetrics("api-test"),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	f.handler = router.Handler()
	return f
}

func TestAccessLogGoesThroughInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	router := NewRouter(
		&readerFake{},
		&obligationRepoStub{},
		&notifierFake{},
		&sweepQueueFake{},
		&assessmentSvcFake{},
		&injurySvcFake{},
		metrics.NewHTTPServerMetrics("api-test"),
		slog.New(slog.NewJSONHandler(&buf, nil)),
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	router.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("inbound request id must be echoed, got %q", got)
	}
	line := buf.String()
	if !strings.Contains(line, `"request_id":"req-42"`) || !strings.Contains(line, "/healthz") {
		t.Fatalf("access log must flow through the injected logger, got %q", line)
	}
}

func TestClassifyRiskReturnsScore(t *testing.T) {
	f := newRouterFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/risk/classify", strings.NewReader(`{"severity":4,"probability":4,"frequency":4}`))
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var score domain.Score
	if err := json.Unmarshal(rec.Body.Bytes(), &score); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if score.Value != 64 || score.Band != domain.BandMonitor {
		t.Fatalf("unexpected score: %+v", score)
	}
}

func TestClassifyRiskRejectsOutOfRangeFactor(t *testing.T) {
	f := newRouterFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/risk/classify", strings.NewReader(`{"severity":7,"probability":1,"frequency":1}`))
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequestSweepQueuesCompany(t *testing.T) {
	f := newRouterFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/companies/c-1/obligations/sync", nil)
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.queue.published) != 1 || f.queue.published[0] != "c-1" {
		t.Fatalf("unexpected queue state: %v", f.queue.published)
	}
}

func TestRequestSweepMapsTemporaryErrorTo503(t *testing.T) {
	f := newRouterFixture()
	f.queue.err = domain.WrapError(domain.ErrTemporary, "nats publish", context.DeadlineExceeded)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/companies/c-1/obligations/sync", nil)
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestCompleteObligation(t *testing.T) {
	f := newRouterFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/obligations/ob-1/complete", nil)
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.repo.completedIDs) != 1 || f.repo.completedIDs[0] != "ob-1" {
		t.Fatalf("unexpected completions: %v", f.repo.completedIDs)
	}
}

func TestCompleteNonActiveObligationConflicts(t *testing.T) {
	f := newRouterFixture()
	f.repo.completeErr = domain.WrapError(domain.ErrConflict, "complete obligation", domain.ErrConflict)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/obligations/ob-1/complete", nil)
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestUpcomingObligationsRejectsMalformedDays(t *testing.T) {
	f := newRouterFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/obligations/upcoming?days=soon", nil)
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpcomingObligationsReturnsList(t *testing.T) {
	f := newRouterFixture()
	f.reader.dueWithin = []domain.LegalObligation{{ID: "ob-1", Type: domain.TypeTraining}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/obligations/upcoming?days=30&agency_id=a-1", nil)
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Obligations []domain.LegalObligation `json:"obligations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Obligations) != 1 || body.Obligations[0].ID != "ob-1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRunNotificationsReturnsResult(t *testing.T) {
	f := newRouterFixture()
	f.notifier.result = domain.NotifyResult{Sent: 3, Failed: 1}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/notifications/run", nil)
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result domain.NotifyResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Sent != 3 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestExportRegisterStreamsWorkbook(t *testing.T) {
	f := newRouterFixture()
	f.reader.byCompany = []domain.LegalObligation{{
		ID: "ob-1", Type: domain.TypeMedicalExam, Status: domain.ObligationActive,
		DueAt: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/companies/c-1/obligations/export", nil)
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type: %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}
}

func TestCreateAssessmentRejectsNonReducingResidual(t *testing.T) {
	f := newRouterFixture()
	f.assessments.err = domain.WrapError(domain.ErrInvalidInput, "create assessment", domain.ErrInvalidInput)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/assessments", strings.NewReader(`{"company_id":"c-1"}`))
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateInjuryReturnsCreated(t *testing.T) {
	f := newRouterFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/injuries", strings.NewReader(`{"company_id":"c-1","worker_name":"Petar"}`))
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListInjuriesRequiresCompany(t *testing.T) {
	f := newRouterFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/injuries", nil)
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
