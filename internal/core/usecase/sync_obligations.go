package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
	"github.com/bzrsoft/bzr-portal/internal/core/ports"
)

// SyncObligationsUseCase is the obligation detector: it scans the upstream
// source tables, derives a due date per record and inserts one tracking row
// per (company, source table, source record). Repeated runs are idempotent;
// the dedupe check plus the unique index guarantee zero net new rows on an
// unchanged re-run. The final step bulk-expires active past-due rows.
type SyncObligationsUseCase struct {
	sources     ports.SourceRecordRepository
	obligations ports.ObligationRepository
	log         *slog.Logger

	now func() time.Time
}

func NewSyncObligationsUseCase(
	sources ports.SourceRecordRepository,
	obligations ports.ObligationRepository,
	log *slog.Logger,
) *SyncObligationsUseCase {
	return &SyncObligationsUseCase{
		sources:     sources,
		obligations: obligations,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, for tests.
func (uc *SyncObligationsUseCase) WithClock(now func() time.Time) *SyncObligationsUseCase {
	uc.now = now
	return uc
}

func (uc *SyncObligationsUseCase) SyncCompany(ctx context.Context, companyID string) (domain.SyncResult, error) {
	var result domain.SyncResult

	records, err := uc.sources.ListByCompany(ctx, companyID)
	if err != nil {
		return result, fmt.Errorf("list source records: %w", err)
	}

	now := uc.now()
	for _, record := range records {
		created, err := uc.trackRecord(ctx, record, now)
		if err != nil {
			// Per-record failures never abort the sweep.
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s/%s: %v", record.SourceTable(), record.SourceID(), err))
			uc.log.Error("obligation_track_failed",
				"company_id", companyID,
				"source_table", record.SourceTable(),
				"source_id", record.SourceID(),
				"error", err,
			)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	expired, err := uc.obligations.ExpireOverdue(ctx, now, companyID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("expire overdue: %v", err))
	} else {
		result.Expired = expired
	}

	uc.log.Info("obligation_sync_done",
		"company_id", companyID,
		"created", result.Created,
		"skipped", result.Skipped,
		"expired", result.Expired,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (uc *SyncObligationsUseCase) SyncAll(ctx context.Context) (domain.SyncResult, error) {
	var total domain.SyncResult

	companyIDs, err := uc.sources.ListCompanyIDs(ctx)
	if err != nil {
		return total, fmt.Errorf("list companies: %w", err)
	}

	for _, companyID := range companyIDs {
		result, err := uc.SyncCompany(ctx, companyID)
		if err != nil {
			total.Errors = append(total.Errors, fmt.Sprintf("company %s: %v", companyID, err))
			continue
		}
		total.Merge(result)
	}
	return total, nil
}

func (uc *SyncObligationsUseCase) trackRecord(ctx context.Context, record domain.SourceRecord, now time.Time) (bool, error) {
	ob := &domain.LegalObligation{
		ID:             uuid.NewString(),
		CompanyID:      record.Company(),
		Type:           record.ObligationType(),
		Description:    record.Description(),
		LegalBasis:     record.Basis(),
		DueAt:          record.NextDue(now),
		Status:         domain.ObligationActive,
		SourceTable:    record.SourceTable(),
		SourceRecordID: record.SourceID(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	created, err := uc.obligations.CreateIfAbsent(ctx, ob)
	if err != nil {
		return false, fmt.Errorf("create obligation: %w", err)
	}
	return created, nil
}
