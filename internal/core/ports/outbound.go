package ports

import (
	"context"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
)

// ObligationRepository persists legal-obligation tracking rows. Every
// read-then-write decision (dedupe, gate flags) goes through conditional
// writes here rather than in-process state.
type ObligationRepository interface {
	// CreateIfAbsent inserts the obligation unless one already exists for
	// the same (company, source table, source record). Returns false on a
	// dedupe hit.
	CreateIfAbsent(ctx context.Context, ob *domain.LegalObligation) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.LegalObligation, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.LegalObligation, error)
	// ListDueWithin returns active obligations with due dates in (from, to].
	ListDueWithin(ctx context.Context, from, to time.Time, filter domain.ObligationFilter) ([]domain.LegalObligation, error)
	// ListOverdue returns past-due obligations that were never completed.
	ListOverdue(ctx context.Context, now time.Time, filter domain.ObligationFilter) ([]domain.LegalObligation, error)
	// ListNotificationCandidates returns obligations any gate could fire
	// for: active ones due up to the horizon plus expired ones whose
	// expiry notice has not gone out.
	ListNotificationCandidates(ctx context.Context, horizon time.Time) ([]domain.LegalObligation, error)
	// MarkNotified flips one one-shot gate flag; the expired gate also
	// transitions status to istekao. Returns false when the flag was
	// already set (lost race or repeat sweep).
	MarkNotified(ctx context.Context, id string, gate domain.NotificationGate) (bool, error)
	// ExpireOverdue bulk-transitions active past-due obligations to
	// istekao and returns the number of rows moved.
	ExpireOverdue(ctx context.Context, now time.Time, companyID string) (int, error)
	// Complete transitions an active obligation to the terminal zavrsen
	// state on explicit user action.
	Complete(ctx context.Context, id string) error
}

// SourceRecordRepository reads the upstream domain tables the detector
// derives obligations from.
type SourceRecordRepository interface {
	ListByCompany(ctx context.Context, companyID string) ([]domain.SourceRecord, error)
	ListCompanyIDs(ctx context.Context) ([]string, error)
}

// CompanyDirectory resolves companies and agencies to notification contacts.
type CompanyDirectory interface {
	GetCompany(ctx context.Context, id string) (*domain.Company, error)
	GetAgency(ctx context.Context, id string) (*domain.Agency, error)
}

// Mailer delivers one notification email. Transport details (SMTP, relay
// API) live behind this port.
type Mailer interface {
	Send(ctx context.Context, msg domain.Email) error
}

// SweepQueue carries on-demand per-company sweep requests from the API to
// the worker.
type SweepQueue interface {
	PublishSweepRequested(ctx context.Context, companyID string) error
	SubscribeSweepRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// AssessmentRepository persists hazard assessments. There is no update
// operation: reassessment supersedes.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *domain.HazardAssessment) error
	GetByID(ctx context.Context, id string) (*domain.HazardAssessment, error)
	ListByPosition(ctx context.Context, companyID, positionID string) ([]domain.HazardAssessment, error)
}

// InjuryReportRepository persists coded injury reports.
type InjuryReportRepository interface {
	Create(ctx context.Context, report *domain.InjuryReport) error
	ListByCompany(ctx context.Context, companyID string) ([]domain.InjuryReport, error)
}
