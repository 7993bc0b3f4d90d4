package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
	"github.com/bzrsoft/bzr-portal/internal/core/ports"
	"github.com/bzrsoft/bzr-portal/internal/infrastructure/export/xlsx"
	"github.com/bzrsoft/bzr-portal/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	reader      ports.ObligationReader
	obligations ports.ObligationRepository
	notifier    ports.DeadlineNotifier
	sweepQueue  ports.SweepQueue
	assessments ports.AssessmentService
	injuries    ports.InjuryService
	metrics     *metrics.HTTPServerMetrics
	log         *slog.Logger
	now         func() time.Time
}

func NewRouter(
	reader ports.ObligationReader,
	obligations ports.ObligationRepository,
	notifier ports.DeadlineNotifier,
	sweepQueue ports.SweepQueue,
	assessments ports.AssessmentService,
	injuries ports.InjuryService,
	serverMetrics *metrics.HTTPServerMetrics,
	log *slog.Logger,
) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		reader:      reader,
		obligations: obligations,
		notifier:    notifier,
		sweepQueue:  sweepQueue,
		assessments: assessments,
		injuries:    injuries,
		metrics:     serverMetrics,
		log:         log,
		now:         time.Now,
	}
}

// WithClock fixes the notifier reference time in tests.
func (rt *Router) WithClock(now func() time.Time) *Router {
	rt.now = now
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/metrics", rt.metricsEndpoint)
	mux.HandleFunc("/v1/risk/classify", rt.classifyRisk)
	mux.HandleFunc("/v1/notifications/run", rt.runNotifications)
	mux.HandleFunc("/v1/obligations/upcoming", rt.upcomingObligations)
	mux.HandleFunc("/v1/obligations/overdue", rt.overdueObligations)
	mux.HandleFunc("/v1/obligations/", rt.obligationByID)
	mux.HandleFunc("/v1/companies/", rt.companySubresource)
	mux.HandleFunc("/v1/assessments", rt.handleAssessments)
	mux.HandleFunc("/v1/injuries", rt.handleInjuries)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(rt.log, handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) metricsEndpoint(w http.ResponseWriter, r *http.Request) {
	if rt.metrics == nil {
		http.NotFound(w, r)
		return
	}
	rt.metrics.Handler().ServeHTTP(w, r)
}

func (rt *Router) classifyRisk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.Factors
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	score, err := domain.Classify(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRiskClassification(serviceName, string(score.Band))
	}
	writeJSON(w, http.StatusOK, score)
}

func (rt *Router) runNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	result, err := rt.notifier.Run(r.Context(), rt.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) upcomingObligations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	out, err := rt.reader.DueWithin(r.Context(), days, filterFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"obligations": out})
}

func (rt *Router) overdueObligations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	out, err := rt.reader.Overdue(r.Context(), filterFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"obligations": out})
}

// obligationByID serves POST /v1/obligations/{id}/complete.
func (rt *Router) obligationByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/obligations/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "obligation id is required"})
		return
	}

	if action != "complete" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := rt.obligations.Complete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(domain.ObligationCompleted)})
}

// companySubresource serves
//
//	POST /v1/companies/{id}/obligations/sync
//	GET  /v1/companies/{id}/obligations
//	GET  /v1/companies/{id}/obligations/export
func (rt *Router) companySubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/companies/")
	companyID, sub, _ := strings.Cut(rest, "/")
	if companyID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company id is required"})
		return
	}

	switch sub {
	case "obligations/sync":
		rt.requestSweep(w, r, companyID)
	case "obligations":
		rt.companyObligations(w, r, companyID)
	case "obligations/export":
		rt.exportRegister(w, r, companyID)
	default:
		http.NotFound(w, r)
	}
}

func (rt *Router) requestSweep(w http.ResponseWriter, r *http.Request, companyID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := rt.sweepQueue.PublishSweepRequested(r.Context(), companyID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"company_id": companyID, "status": "queued"})
}

func (rt *Router) companyObligations(w http.ResponseWriter, r *http.Request, companyID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	out, err := rt.reader.ByCompany(r.Context(), companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"obligations": out})
}

func (rt *Router) exportRegister(w http.ResponseWriter, r *http.Request, companyID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	obligations, err := rt.reader.ByCompany(r.Context(), companyID)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := xlsx.ObligationRegister(obligations)
	if rt.metrics != nil {
		rt.metrics.RecordRegisterExport(serviceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "evidencija-obaveza-"+companyID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) handleAssessments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var input ports.AssessmentInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		assessment, err := rt.assessments.Create(r.Context(), input)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, assessment)
	case http.MethodGet:
		companyID := r.URL.Query().Get("company_id")
		positionID := r.URL.Query().Get("position_id")
		if companyID == "" || positionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company_id and position_id are required"})
			return
		}
		out, err := rt.assessments.ListByPosition(r.Context(), companyID, positionID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"assessments": out})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) handleInjuries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var input ports.InjuryInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		report, err := rt.injuries.Create(r.Context(), input)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, report)
	case http.MethodGet:
		companyID := r.URL.Query().Get("company_id")
		if companyID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company_id is required"})
			return
		}
		out, err := rt.injuries.ListByCompany(r.Context(), companyID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"injuries": out})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func filterFromQuery(r *http.Request) domain.ObligationFilter {
	return domain.ObligationFilter{
		CompanyID: r.URL.Query().Get("company_id"),
		AgencyID:  r.URL.Query().Get("agency_id"),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
