package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
)

type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, tax_id, contact_email, safety_email, COALESCE(agency_id, ''), created_at
FROM companies
WHERE id = $1
`, id)

	var company domain.Company
	err := row.Scan(
		&company.ID,
		&company.Name,
		&company.TaxID,
		&company.ContactEmail,
		&company.SafetyEmail,
		&company.AgencyID,
		&company.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get company", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}
	return &company, nil
}

func (r *CompanyRepository) GetAgency(ctx context.Context, id string) (*domain.Agency, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, contact_email, created_at
FROM agencies
WHERE id = $1
`, id)

	var agency domain.Agency
	err := row.Scan(&agency.ID, &agency.Name, &agency.ContactEmail, &agency.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get agency", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan agency: %w", err)
	}
	return &agency, nil
}
