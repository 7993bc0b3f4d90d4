package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
)

// SourceRecordRepository reads the upstream tables the obligation detector
// scans. Each table maps to one variant of the domain.SourceRecord union.
type SourceRecordRepository struct {
	db *sql.DB
}

func NewSourceRecordRepository(db *sql.DB) *SourceRecordRepository {
	return &SourceRecordRepository{db: db}
}

func (r *SourceRecordRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.SourceRecord, error) {
	var out []domain.SourceRecord

	exams, err := r.listMedicalExams(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out = append(out, exams...)

	trainings, err := r.listTrainings(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out = append(out, trainings...)

	for _, kind := range []inspectionKind{equipmentKind, electricalKind, environmentKind} {
		inspections, err := r.listInspections(ctx, companyID, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, inspections...)
	}
	return out, nil
}

func (r *SourceRecordRepository) ListCompanyIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list company ids: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company ids: %w", err)
	}
	return out, nil
}

func (r *SourceRecordRepository) listMedicalExams(ctx context.Context, companyID string) ([]domain.SourceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, company_id, position_name, frequency, legal_basis
FROM medical_exam_requirements
WHERE company_id = $1
`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list medical exam requirements: %w", err)
	}
	defer rows.Close()

	var out []domain.SourceRecord
	for rows.Next() {
		var exam domain.MedicalExam
		if err := rows.Scan(&exam.ID, &exam.CompanyID, &exam.Position, &exam.Frequency, &exam.LegalBasis); err != nil {
			return nil, fmt.Errorf("scan medical exam requirement: %w", err)
		}
		out = append(out, exam)
	}
	return out, rows.Err()
}

func (r *SourceRecordRepository) listTrainings(ctx context.Context, companyID string) ([]domain.SourceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, company_id, topic, frequency, legal_basis
FROM training_requirements
WHERE company_id = $1
`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list training requirements: %w", err)
	}
	defer rows.Close()

	var out []domain.SourceRecord
	for rows.Next() {
		var training domain.Training
		if err := rows.Scan(&training.ID, &training.CompanyID, &training.Topic, &training.Frequency, &training.LegalBasis); err != nil {
			return nil, fmt.Errorf("scan training requirement: %w", err)
		}
		out = append(out, training)
	}
	return out, rows.Err()
}

type inspectionKind struct {
	table      string
	nameColumn string
	build      func(id, companyID, name string, next time.Time, basis string) domain.SourceRecord
}

var (
	equipmentKind = inspectionKind{
		table:      "equipment_inspections",
		nameColumn: "equipment_name",
		build: func(id, companyID, name string, next time.Time, basis string) domain.SourceRecord {
			return domain.EquipmentInspection{ID: id, CompanyID: companyID, Equipment: name, NextInspection: next, LegalBasis: basis}
		},
	}
	electricalKind = inspectionKind{
		table:      "electrical_inspections",
		nameColumn: "installation_name",
		build: func(id, companyID, name string, next time.Time, basis string) domain.SourceRecord {
			return domain.ElectricalInspection{ID: id, CompanyID: companyID, Installation: name, NextInspection: next, LegalBasis: basis}
		},
	}
	environmentKind = inspectionKind{
		table:      "environment_tests",
		nameColumn: "scope",
		build: func(id, companyID, name string, next time.Time, basis string) domain.SourceRecord {
			return domain.EnvironmentTest{ID: id, CompanyID: companyID, Scope: name, NextInspection: next, LegalBasis: basis}
		},
	}
)

func (r *SourceRecordRepository) listInspections(ctx context.Context, companyID string, kind inspectionKind) ([]domain.SourceRecord, error) {
	query := fmt.Sprintf(`
SELECT id, company_id, %s, next_inspection_at, legal_basis
FROM %s
WHERE company_id = $1
`, kind.nameColumn, kind.table)

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.table, err)
	}
	defer rows.Close()

	var out []domain.SourceRecord
	for rows.Next() {
		var id, company, name, basis string
		var next time.Time
		if err := rows.Scan(&id, &company, &name, &next, &basis); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind.table, err)
		}
		out = append(out, kind.build(id, company, name, next, basis))
	}
	return out, rows.Err()
}
