package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
	"github.com/bzrsoft/bzr-portal/internal/core/ports"
)

type assessmentRepoFake struct {
	created []domain.HazardAssessment
	byID    map[string]*domain.HazardAssessment
}

func newAssessmentRepoFake() *assessmentRepoFake {
	return &assessmentRepoFake{byID: make(map[string]*domain.HazardAssessment)}
}

func (f *assessmentRepoFake) Create(_ context.Context, assessment *domain.HazardAssessment) error {
	copied := *assessment
	f.created = append(f.created, copied)
	f.byID[copied.ID] = &copied
	return nil
}

func (f *assessmentRepoFake) GetByID(_ context.Context, id string) (*domain.HazardAssessment, error) {
	assessment, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *assessment
	return &copied, nil
}

func (f *assessmentRepoFake) ListByPosition(_ context.Context, companyID, positionID string) ([]domain.HazardAssessment, error) {
	var out []domain.HazardAssessment
	for _, assessment := range f.created {
		if assessment.CompanyID == companyID && assessment.PositionID == positionID {
			out = append(out, assessment)
		}
	}
	return out, nil
}

func validAssessmentInput() ports.AssessmentInput {
	return ports.AssessmentInput{
		CompanyID:  "c-1",
		PositionID: "p-1",
		HazardCode: "06",
		HazardName: "Rad na visini",
		Initial:    domain.Factors{Severity: 6, Probability: 4, Frequency: 4},
		Residual:   domain.Factors{Severity: 3, Probability: 2, Frequency: 4},
		Measures:   "Kolektivna zaštita od pada, obuka, lična oprema",
	}
}

func TestAssessmentCreateComputesHighRiskFlag(t *testing.T) {
	repo := newAssessmentRepoFake()
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	uc := NewAssessmentsUseCase(repo).WithClock(fixedClock(now))

	assessment, err := uc.Create(context.Background(), validAssessmentInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !assessment.IsHighRisk {
		t.Fatalf("initial risk 96 is unacceptable, expected high-risk flag")
	}
	if assessment.ID == "" || !assessment.CreatedAt.Equal(now) {
		t.Fatalf("unexpected assessment metadata: %+v", assessment)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted assessment")
	}
}

func TestAssessmentCreateRejectsNonReducingResidual(t *testing.T) {
	uc := NewAssessmentsUseCase(newAssessmentRepoFake())
	input := validAssessmentInput()
	input.Residual = input.Initial

	if _, err := uc.Create(context.Background(), input); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAssessmentCreateRejectsMissingIdentifiers(t *testing.T) {
	uc := NewAssessmentsUseCase(newAssessmentRepoFake())

	input := validAssessmentInput()
	input.PositionID = " "
	if _, err := uc.Create(context.Background(), input); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing position, got %v", err)
	}

	input = validAssessmentInput()
	input.HazardCode = ""
	if _, err := uc.Create(context.Background(), input); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing hazard code, got %v", err)
	}
}

func TestAssessmentSupersedeKeepsBothRows(t *testing.T) {
	repo := newAssessmentRepoFake()
	uc := NewAssessmentsUseCase(repo)

	first, err := uc.Create(context.Background(), validAssessmentInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	reassessed := validAssessmentInput()
	reassessed.Residual = domain.Factors{Severity: 2, Probability: 2, Frequency: 3}
	reassessed.SupersedesID = first.ID

	second, err := uc.Create(context.Background(), reassessed)
	if err != nil {
		t.Fatalf("reassessment error = %v", err)
	}
	if second.SupersedesID != first.ID {
		t.Fatalf("expected supersedes link to %s, got %s", first.ID, second.SupersedesID)
	}
	if len(repo.created) != 2 {
		t.Fatalf("reassessment must insert, not mutate: %d rows", len(repo.created))
	}
}

func TestAssessmentSupersedeRejectsForeignPosition(t *testing.T) {
	repo := newAssessmentRepoFake()
	uc := NewAssessmentsUseCase(repo)

	first, err := uc.Create(context.Background(), validAssessmentInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	other := validAssessmentInput()
	other.PositionID = "p-2"
	other.SupersedesID = first.ID
	if _, err := uc.Create(context.Background(), other); !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
