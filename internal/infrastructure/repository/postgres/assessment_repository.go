package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
)

type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `id, company_id, position_id, hazard_code, hazard_name,
initial_severity, initial_probability, initial_frequency,
residual_severity, residual_probability, residual_frequency,
measures, is_high_risk, COALESCE(supersedes_id, ''), COALESCE(document_version_id, ''), created_at`

func (r *AssessmentRepository) Create(ctx context.Context, assessment *domain.HazardAssessment) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO hazard_assessments (
	id, company_id, position_id, hazard_code, hazard_name,
	initial_severity, initial_probability, initial_frequency,
	residual_severity, residual_probability, residual_frequency,
	measures, is_high_risk, supersedes_id, document_version_id, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NULLIF($14,''),NULLIF($15,''),$16)
`,
		assessment.ID, assessment.CompanyID, assessment.PositionID, assessment.HazardCode, assessment.HazardName,
		assessment.Initial.Severity, assessment.Initial.Probability, assessment.Initial.Frequency,
		assessment.Residual.Severity, assessment.Residual.Probability, assessment.Residual.Frequency,
		assessment.Measures, assessment.IsHighRisk, assessment.SupersedesID, assessment.DocumentVersionID,
		assessment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert hazard assessment: %w", err)
	}
	return nil
}

func (r *AssessmentRepository) GetByID(ctx context.Context, id string) (*domain.HazardAssessment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+assessmentColumns+`
FROM hazard_assessments
WHERE id = $1
`, id)

	assessment, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get assessment", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("get assessment by id: %w", err)
	}
	return &assessment, nil
}

func (r *AssessmentRepository) ListByPosition(ctx context.Context, companyID, positionID string) ([]domain.HazardAssessment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+assessmentColumns+`
FROM hazard_assessments
WHERE company_id = $1 AND position_id = $2
ORDER BY created_at DESC
`, companyID, positionID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HazardAssessment, 0)
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return out, nil
}

type assessmentScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssessment(row assessmentScanner) (domain.HazardAssessment, error) {
	var assessment domain.HazardAssessment
	err := row.Scan(
		&assessment.ID,
		&assessment.CompanyID,
		&assessment.PositionID,
		&assessment.HazardCode,
		&assessment.HazardName,
		&assessment.Initial.Severity,
		&assessment.Initial.Probability,
		&assessment.Initial.Frequency,
		&assessment.Residual.Severity,
		&assessment.Residual.Probability,
		&assessment.Residual.Frequency,
		&assessment.Measures,
		&assessment.IsHighRisk,
		&assessment.SupersedesID,
		&assessment.DocumentVersionID,
		&assessment.CreatedAt,
	)
	if err != nil {
		return domain.HazardAssessment{}, err
	}
	return assessment, nil
}
