package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
)

type InjuryReportRepository struct {
	db *sql.DB
}

func NewInjuryReportRepository(db *sql.DB) *InjuryReportRepository {
	return &InjuryReportRepository{db: db}
}

func (r *InjuryReportRepository) Create(ctx context.Context, report *domain.InjuryReport) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO injury_reports (
	id, company_id, worker_name, occurred_at, narrative,
	workstation_code, work_environment_code, work_process_code, specific_activity_code,
	deviation_code, contact_mode_code, injury_type_code, body_part_code,
	material_deviation_code, material_contact_code, material_activity_code,
	severity_code, employment_status_code, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
`,
		report.ID, report.CompanyID, report.WorkerName, report.OccurredAt, report.Narrative,
		report.Codes.Workstation, report.Codes.WorkEnvironment, report.Codes.WorkProcess, report.Codes.SpecificActivity,
		report.Codes.Deviation, report.Codes.ContactMode, report.Codes.InjuryType, report.Codes.BodyPart,
		report.Codes.MaterialDeviation, report.Codes.MaterialContact, report.Codes.MaterialActivity,
		report.Codes.Severity, report.Codes.EmploymentStatus, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert injury report: %w", err)
	}
	return nil
}

func (r *InjuryReportRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.InjuryReport, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, company_id, worker_name, occurred_at, narrative,
workstation_code, work_environment_code, work_process_code, specific_activity_code,
deviation_code, contact_mode_code, injury_type_code, body_part_code,
material_deviation_code, material_contact_code, material_activity_code,
severity_code, employment_status_code, created_at
FROM injury_reports
WHERE company_id = $1
ORDER BY occurred_at DESC
`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list injury reports: %w", err)
	}
	defer rows.Close()

	out := make([]domain.InjuryReport, 0)
	for rows.Next() {
		var report domain.InjuryReport
		err := rows.Scan(
			&report.ID, &report.CompanyID, &report.WorkerName, &report.OccurredAt, &report.Narrative,
			&report.Codes.Workstation, &report.Codes.WorkEnvironment, &report.Codes.WorkProcess, &report.Codes.SpecificActivity,
			&report.Codes.Deviation, &report.Codes.ContactMode, &report.Codes.InjuryType, &report.Codes.BodyPart,
			&report.Codes.MaterialDeviation, &report.Codes.MaterialContact, &report.Codes.MaterialActivity,
			&report.Codes.Severity, &report.Codes.EmploymentStatus, &report.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan injury report: %w", err)
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate injury reports: %w", err)
	}
	return out, nil
}
