package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
)

type ObligationRepository struct {
	db *sql.DB
}

func NewObligationRepository(db *sql.DB) *ObligationRepository {
	return &ObligationRepository{db: db}
}

const obligationColumns = `id, company_id, type, description, legal_basis, due_at, status,
source_table, source_record_id, notified_30, notified_7, notified_1, notified_expired,
created_at, updated_at`

// CreateIfAbsent relies on the unique (company_id, source_table,
// source_record_id) index: a concurrent or repeated sweep hits the conflict
// clause instead of inserting a duplicate.
func (r *ObligationRepository) CreateIfAbsent(ctx context.Context, ob *domain.LegalObligation) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
INSERT INTO legal_obligations (
	id, company_id, type, description, legal_basis, due_at, status,
	source_table, source_record_id, notified_30, notified_7, notified_1, notified_expired,
	created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (company_id, source_table, source_record_id) DO NOTHING
`,
		ob.ID, ob.CompanyID, string(ob.Type), ob.Description, ob.LegalBasis, ob.DueAt, string(ob.Status),
		ob.SourceTable, ob.SourceRecordID, ob.Notified30, ob.Notified7, ob.Notified1, ob.NotifiedExpired,
		ob.CreatedAt, ob.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert obligation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert obligation rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *ObligationRepository) GetByID(ctx context.Context, id string) (*domain.LegalObligation, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+obligationColumns+`
FROM legal_obligations
WHERE id = $1
`, id)
	ob, err := scanObligation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get obligation",
				fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("get obligation by id: %w", err)
	}
	return &ob, nil
}

func (r *ObligationRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.LegalObligation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+obligationColumns+`
FROM legal_obligations
WHERE company_id = $1
ORDER BY due_at ASC
`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company obligations: %w", err)
	}
	return collectObligations(rows)
}

func (r *ObligationRepository) ListDueWithin(ctx context.Context, from, to time.Time, filter domain.ObligationFilter) ([]domain.LegalObligation, error) {
	query := `
SELECT o.id, o.company_id, o.type, o.description, o.legal_basis, o.due_at, o.status,
o.source_table, o.source_record_id, o.notified_30, o.notified_7, o.notified_1, o.notified_expired,
o.created_at, o.updated_at
FROM legal_obligations o
JOIN companies c ON c.id = o.company_id
WHERE o.status = 'aktivan' AND o.due_at > $1 AND o.due_at <= $2
`
	args := []any{from, to}
	query, args = appendFilter(query, args, filter)
	query += "ORDER BY o.due_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list due obligations: %w", err)
	}
	return collectObligations(rows)
}

func (r *ObligationRepository) ListOverdue(ctx context.Context, now time.Time, filter domain.ObligationFilter) ([]domain.LegalObligation, error) {
	query := `
SELECT o.id, o.company_id, o.type, o.description, o.legal_basis, o.due_at, o.status,
o.source_table, o.source_record_id, o.notified_30, o.notified_7, o.notified_1, o.notified_expired,
o.created_at, o.updated_at
FROM legal_obligations o
JOIN companies c ON c.id = o.company_id
WHERE o.due_at < $1 AND o.status <> 'zavrsen'
`
	args := []any{now}
	query, args = appendFilter(query, args, filter)
	query += "ORDER BY o.due_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list overdue obligations: %w", err)
	}
	return collectObligations(rows)
}

func (r *ObligationRepository) ListNotificationCandidates(ctx context.Context, horizon time.Time) ([]domain.LegalObligation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+obligationColumns+`
FROM legal_obligations
WHERE (status = 'aktivan' AND due_at <= $1)
   OR (status = 'istekao' AND notified_expired = FALSE)
ORDER BY due_at ASC
`, horizon)
	if err != nil {
		return nil, fmt.Errorf("list notification candidates: %w", err)
	}
	return collectObligations(rows)
}

var gateColumns = map[domain.NotificationGate]string{
	domain.Gate30Days: "notified_30",
	domain.Gate7Days:  "notified_7",
	domain.Gate1Day:   "notified_1",
}

// MarkNotified flips one gate flag conditionally: when two sweeps race, only
// one update reports a row affected. The expired gate also moves the status
// to its terminal istekao state.
func (r *ObligationRepository) MarkNotified(ctx context.Context, id string, gate domain.NotificationGate) (bool, error) {
	now := time.Now().UTC()

	var result sql.Result
	var err error
	if gate == domain.GateExpired {
		result, err = r.db.ExecContext(ctx, `
UPDATE legal_obligations
SET notified_expired = TRUE, status = 'istekao', updated_at = $2
WHERE id = $1 AND notified_expired = FALSE
`, id, now)
	} else {
		column, ok := gateColumns[gate]
		if !ok {
			return false, fmt.Errorf("unknown notification gate: %s", gate)
		}
		result, err = r.db.ExecContext(ctx, `
UPDATE legal_obligations
SET `+column+` = TRUE, updated_at = $2
WHERE id = $1 AND `+column+` = FALSE
`, id, now)
	}
	if err != nil {
		return false, fmt.Errorf("mark notified %s: %w", gate, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark notified rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *ObligationRepository) ExpireOverdue(ctx context.Context, now time.Time, companyID string) (int, error) {
	query := `
UPDATE legal_obligations
SET status = 'istekao', updated_at = $1
WHERE status = 'aktivan' AND due_at < $1
`
	args := []any{now}
	if companyID != "" {
		query += "AND company_id = $2\n"
		args = append(args, companyID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("expire overdue obligations: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire overdue rows affected: %w", err)
	}
	return int(rows), nil
}

func (r *ObligationRepository) Complete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE legal_obligations
SET status = 'zavrsen', updated_at = $2
WHERE id = $1 AND status = 'aktivan'
`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("complete obligation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete obligation rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrConflict, "complete obligation",
			fmt.Errorf("obligation %s is not active", id))
	}
	return nil
}

func appendFilter(query string, args []any, filter domain.ObligationFilter) (string, []any) {
	if filter.CompanyID != "" {
		args = append(args, filter.CompanyID)
		query += fmt.Sprintf("AND o.company_id = $%d\n", len(args))
	}
	if filter.AgencyID != "" {
		args = append(args, filter.AgencyID)
		query += fmt.Sprintf("AND c.agency_id = $%d\n", len(args))
	}
	return query, args
}

type obligationScanner interface {
	Scan(dest ...interface{}) error
}

func scanObligation(row obligationScanner) (domain.LegalObligation, error) {
	var ob domain.LegalObligation
	var obType, status string
	err := row.Scan(
		&ob.ID,
		&ob.CompanyID,
		&obType,
		&ob.Description,
		&ob.LegalBasis,
		&ob.DueAt,
		&status,
		&ob.SourceTable,
		&ob.SourceRecordID,
		&ob.Notified30,
		&ob.Notified7,
		&ob.Notified1,
		&ob.NotifiedExpired,
		&ob.CreatedAt,
		&ob.UpdatedAt,
	)
	if err != nil {
		return domain.LegalObligation{}, err
	}
	ob.Type = domain.ObligationType(obType)
	ob.Status = domain.ObligationStatus(status)
	return ob, nil
}

func collectObligations(rows *sql.Rows) ([]domain.LegalObligation, error) {
	defer rows.Close()

	out := make([]domain.LegalObligation, 0)
	for rows.Next() {
		ob, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		out = append(out, ob)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate obligations: %w", err)
	}
	return out, nil
}
