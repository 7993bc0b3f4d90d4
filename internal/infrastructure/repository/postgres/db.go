package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS agencies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	contact_email TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS companies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	tax_id TEXT NOT NULL DEFAULT '',
	contact_email TEXT NOT NULL,
	safety_email TEXT NOT NULL DEFAULT '',
	agency_id TEXT REFERENCES agencies(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS legal_obligations (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	type TEXT NOT NULL,
	description TEXT NOT NULL,
	legal_basis TEXT NOT NULL DEFAULT '',
	due_at TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL DEFAULT 'aktivan',
	source_table TEXT NOT NULL,
	source_record_id TEXT NOT NULL,
	notified_30 BOOLEAN NOT NULL DEFAULT FALSE,
	notified_7 BOOLEAN NOT NULL DEFAULT FALSE,
	notified_1 BOOLEAN NOT NULL DEFAULT FALSE,
	notified_expired BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (company_id, source_table, source_record_id)
);

CREATE INDEX IF NOT EXISTS idx_legal_obligations_status_due ON legal_obligations(status, due_at);
CREATE INDEX IF NOT EXISTS idx_legal_obligations_company ON legal_obligations(company_id);

CREATE TABLE IF NOT EXISTS medical_exam_requirements (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	position_name TEXT NOT NULL,
	frequency TEXT NOT NULL DEFAULT '',
	legal_basis TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS training_requirements (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	topic TEXT NOT NULL,
	frequency TEXT NOT NULL DEFAULT '',
	legal_basis TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS equipment_inspections (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	equipment_name TEXT NOT NULL,
	next_inspection_at TIMESTAMPTZ NOT NULL,
	legal_basis TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS electrical_inspections (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	installation_name TEXT NOT NULL,
	next_inspection_at TIMESTAMPTZ NOT NULL,
	legal_basis TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS environment_tests (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	scope TEXT NOT NULL,
	next_inspection_at TIMESTAMPTZ NOT NULL,
	legal_basis TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS hazard_assessments (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	position_id TEXT NOT NULL,
	hazard_code TEXT NOT NULL,
	hazard_name TEXT NOT NULL DEFAULT '',
	initial_severity INTEGER NOT NULL,
	initial_probability INTEGER NOT NULL,
	initial_frequency INTEGER NOT NULL,
	residual_severity INTEGER NOT NULL,
	residual_probability INTEGER NOT NULL,
	residual_frequency INTEGER NOT NULL,
	measures TEXT NOT NULL DEFAULT '',
	is_high_risk BOOLEAN NOT NULL DEFAULT FALSE,
	supersedes_id TEXT,
	document_version_id TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_hazard_assessments_position ON hazard_assessments(company_id, position_id);
CREATE INDEX IF NOT EXISTS idx_hazard_assessments_high_risk ON hazard_assessments(company_id) WHERE is_high_risk;

CREATE TABLE IF NOT EXISTS injury_reports (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	worker_name TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	narrative TEXT NOT NULL DEFAULT '',
	workstation_code TEXT NOT NULL,
	work_environment_code TEXT NOT NULL,
	work_process_code TEXT NOT NULL,
	specific_activity_code TEXT NOT NULL,
	deviation_code TEXT NOT NULL,
	contact_mode_code TEXT NOT NULL,
	injury_type_code TEXT NOT NULL,
	body_part_code TEXT NOT NULL,
	material_deviation_code TEXT NOT NULL,
	material_contact_code TEXT NOT NULL,
	material_activity_code TEXT NOT NULL,
	severity_code TEXT NOT NULL,
	employment_status_code TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_injury_reports_company ON injury_reports(company_id, occurred_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
