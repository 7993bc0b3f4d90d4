package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
	"github.com/bzrsoft/bzr-portal/internal/core/ports"
)

// InjuriesUseCase records workplace injuries with their ESAW coding.
type InjuriesUseCase struct {
	repo ports.InjuryReportRepository

	now func() time.Time
}

func NewInjuriesUseCase(repo ports.InjuryReportRepository) *InjuriesUseCase {
	return &InjuriesUseCase{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, for tests.
func (uc *InjuriesUseCase) WithClock(now func() time.Time) *InjuriesUseCase {
	uc.now = now
	return uc
}

func (uc *InjuriesUseCase) Create(ctx context.Context, input ports.InjuryInput) (*domain.InjuryReport, error) {
	if strings.TrimSpace(input.CompanyID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create injury report",
			errors.New("company_id is required"))
	}
	if strings.TrimSpace(input.WorkerName) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create injury report",
			errors.New("worker_name is required"))
	}
	if input.OccurredAt.IsZero() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create injury report",
			errors.New("occurred_at is required"))
	}
	if err := input.Codes.Validate(); err != nil {
		return nil, err
	}

	report := &domain.InjuryReport{
		ID:         uuid.NewString(),
		CompanyID:  input.CompanyID,
		WorkerName: input.WorkerName,
		OccurredAt: input.OccurredAt,
		Narrative:  input.Narrative,
		Codes:      input.Codes,
		CreatedAt:  uc.now(),
	}
	if err := uc.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("persist injury report: %w", err)
	}
	return report, nil
}

func (uc *InjuriesUseCase) ListByCompany(ctx context.Context, companyID string) ([]domain.InjuryReport, error) {
	out, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list injury reports: %w", err)
	}
	return out, nil
}
