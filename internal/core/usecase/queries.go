package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
	"github.com/bzrsoft/bzr-portal/internal/core/ports"
)

const defaultDueWithinDays = 90

// ObligationQueries exposes the read side of the obligation register.
type ObligationQueries struct {
	obligations ports.ObligationRepository

	now func() time.Time
}

func NewObligationQueries(obligations ports.ObligationRepository) *ObligationQueries {
	return &ObligationQueries{
		obligations: obligations,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, for tests.
func (q *ObligationQueries) WithClock(now func() time.Time) *ObligationQueries {
	q.now = now
	return q
}

func (q *ObligationQueries) DueWithin(ctx context.Context, days int, filter domain.ObligationFilter) ([]domain.LegalObligation, error) {
	if days <= 0 {
		days = defaultDueWithinDays
	}
	now := q.now()
	out, err := q.obligations.ListDueWithin(ctx, now, now.AddDate(0, 0, days), filter)
	if err != nil {
		return nil, fmt.Errorf("list due within %d days: %w", days, err)
	}
	return out, nil
}

func (q *ObligationQueries) Overdue(ctx context.Context, filter domain.ObligationFilter) ([]domain.LegalObligation, error) {
	out, err := q.obligations.ListOverdue(ctx, q.now(), filter)
	if err != nil {
		return nil, fmt.Errorf("list overdue: %w", err)
	}
	return out, nil
}

func (q *ObligationQueries) ByCompany(ctx context.Context, companyID string) ([]domain.LegalObligation, error) {
	out, err := q.obligations.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company obligations: %w", err)
	}
	return out, nil
}
