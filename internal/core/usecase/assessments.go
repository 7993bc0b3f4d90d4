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

// AssessmentsUseCase handles the terminal step of the risk-assessment
// wizard. Assessments are never mutated: reassessing a hazard inserts a new
// row that references the superseded one.
type AssessmentsUseCase struct {
	repo ports.AssessmentRepository

	now func() time.Time
}

func NewAssessmentsUseCase(repo ports.AssessmentRepository) *AssessmentsUseCase {
	return &AssessmentsUseCase{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, for tests.
func (uc *AssessmentsUseCase) WithClock(now func() time.Time) *AssessmentsUseCase {
	uc.now = now
	return uc
}

func (uc *AssessmentsUseCase) Create(ctx context.Context, input ports.AssessmentInput) (*domain.HazardAssessment, error) {
	if strings.TrimSpace(input.CompanyID) == "" || strings.TrimSpace(input.PositionID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create assessment",
			errors.New("company_id and position_id are required"))
	}
	if strings.TrimSpace(input.HazardCode) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create assessment",
			errors.New("hazard_code is required"))
	}

	// Rejecting residual >= initial here, not in the UI, keeps the
	// invariant with the record itself.
	pair, err := domain.ScorePair(input.Initial, input.Residual)
	if err != nil {
		return nil, err
	}

	assessment := &domain.HazardAssessment{
		ID:           uuid.NewString(),
		CompanyID:    input.CompanyID,
		PositionID:   input.PositionID,
		HazardCode:   input.HazardCode,
		HazardName:   input.HazardName,
		Initial:      input.Initial,
		Residual:     input.Residual,
		Measures:     input.Measures,
		IsHighRisk:   pair.Initial.Band == domain.BandUnacceptable,
		SupersedesID: input.SupersedesID,
		CreatedAt:    uc.now(),
	}

	if input.SupersedesID != "" {
		if err := uc.checkSupersedes(ctx, input); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.Create(ctx, assessment); err != nil {
		return nil, fmt.Errorf("persist assessment: %w", err)
	}
	return assessment, nil
}

func (uc *AssessmentsUseCase) checkSupersedes(ctx context.Context, input ports.AssessmentInput) error {
	previous, err := uc.repo.GetByID(ctx, input.SupersedesID)
	if err != nil {
		return fmt.Errorf("load superseded assessment: %w", err)
	}
	if previous.CompanyID != input.CompanyID || previous.PositionID != input.PositionID {
		return domain.WrapError(domain.ErrConflict, "create assessment",
			errors.New("superseded assessment belongs to a different position"))
	}
	return nil
}

func (uc *AssessmentsUseCase) ListByPosition(ctx context.Context, companyID, positionID string) ([]domain.HazardAssessment, error) {
	out, err := uc.repo.ListByPosition(ctx, companyID, positionID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return out, nil
}
