package ports

import (
	"context"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
)

// ObligationSyncer is the inbound contract for detector runs.
type ObligationSyncer interface {
	SyncCompany(ctx context.Context, companyID string) (domain.SyncResult, error)
	SyncAll(ctx context.Context) (domain.SyncResult, error)
}

// DeadlineNotifier is the inbound contract for notification sweeps.
type DeadlineNotifier interface {
	Run(ctx context.Context, now time.Time) (domain.NotifyResult, error)
}

// ObligationReader is the inbound read model for obligation queries.
type ObligationReader interface {
	DueWithin(ctx context.Context, days int, filter domain.ObligationFilter) ([]domain.LegalObligation, error)
	Overdue(ctx context.Context, filter domain.ObligationFilter) ([]domain.LegalObligation, error)
	ByCompany(ctx context.Context, companyID string) ([]domain.LegalObligation, error)
}

// AssessmentService is the inbound contract for the risk-assessment wizard's
// terminal step.
type AssessmentService interface {
	Create(ctx context.Context, input AssessmentInput) (*domain.HazardAssessment, error)
	ListByPosition(ctx context.Context, companyID, positionID string) ([]domain.HazardAssessment, error)
}

// AssessmentInput carries the wizard's collected fields.
type AssessmentInput struct {
	CompanyID    string         `json:"company_id"`
	PositionID   string         `json:"position_id"`
	HazardCode   string         `json:"hazard_code"`
	HazardName   string         `json:"hazard_name"`
	Initial      domain.Factors `json:"initial"`
	Residual     domain.Factors `json:"residual"`
	Measures     string         `json:"measures"`
	SupersedesID string         `json:"supersedes_id,omitempty"`
}

// InjuryService is the inbound contract for injury-report coding.
type InjuryService interface {
	Create(ctx context.Context, input InjuryInput) (*domain.InjuryReport, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.InjuryReport, error)
}

// InjuryInput carries one injury narrative plus its ESAW codes.
type InjuryInput struct {
	CompanyID  string           `json:"company_id"`
	WorkerName string           `json:"worker_name"`
	OccurredAt time.Time        `json:"occurred_at"`
	Narrative  string           `json:"narrative"`
	Codes      domain.ESAWCodes `json:"codes"`
}
