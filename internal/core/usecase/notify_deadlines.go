package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
	"github.com/bzrsoft/bzr-portal/internal/core/ports"
)

const notifyHorizonDays = 30

// NotifyDeadlinesUseCase is the deadline notifier. Each obligation carries
// four independent one-shot gates (30/7/1 days before the due date, and
// after expiry); a gate fires at most once over any sequence of sweeps, the
// flag itself being the guard. When sweeps are infrequent several gates can
// fire in the same sweep; that is accepted behavior for a daily batch job.
//
// The flag is set after the send attempt regardless of delivery outcome, so
// each threshold gets at most one attempt per obligation; delivery failures
// are counted and logged, never retried within the sweep. The check-and-set
// is not atomic across concurrent sweeps; the conditional flag update keeps
// the data consistent but a duplicate send between two racing sweeps is
// possible and tolerated.
type NotifyDeadlinesUseCase struct {
	obligations ports.ObligationRepository
	directory   ports.CompanyDirectory
	mailer      ports.Mailer
	log         *slog.Logger

	horizonDays int
}

func NewNotifyDeadlinesUseCase(
	obligations ports.ObligationRepository,
	directory ports.CompanyDirectory,
	mailer ports.Mailer,
	log *slog.Logger,
) *NotifyDeadlinesUseCase {
	return &NotifyDeadlinesUseCase{
		obligations: obligations,
		directory:   directory,
		mailer:      mailer,
		log:         log,
		horizonDays: notifyHorizonDays,
	}
}

// WithHorizon widens or narrows the candidate window. The gate thresholds
// themselves stay fixed; this only bounds how far ahead candidates are
// fetched.
func (uc *NotifyDeadlinesUseCase) WithHorizon(days int) *NotifyDeadlinesUseCase {
	if days > 0 {
		uc.horizonDays = days
	}
	return uc
}

func (uc *NotifyDeadlinesUseCase) Run(ctx context.Context, now time.Time) (domain.NotifyResult, error) {
	var result domain.NotifyResult

	today := truncateToDay(now)
	horizon := today.AddDate(0, 0, uc.horizonDays+1)

	candidates, err := uc.obligations.ListNotificationCandidates(ctx, horizon)
	if err != nil {
		return result, fmt.Errorf("list notification candidates: %w", err)
	}

	for i := range candidates {
		uc.processObligation(ctx, &candidates[i], today, &result)
	}

	uc.log.Info("notification_sweep_done",
		"candidates", len(candidates),
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return result, nil
}

func (uc *NotifyDeadlinesUseCase) processObligation(
	ctx context.Context,
	ob *domain.LegalObligation,
	today time.Time,
	result *domain.NotifyResult,
) {
	days := daysUntil(ob.DueAt, today)

	for _, gate := range firingGates(ob, days) {
		if err := uc.fireGate(ctx, ob, gate, days, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("obligation %s gate %s: %v", ob.ID, gate, err))
		}
	}
}

// firingGates evaluates the four window predicates independently. The
// predicates are disjoint by date range, but a skipped window (sweep ran
// late) leaves earlier flags unset without making them fire here: each gate
// checks only its own window.
func firingGates(ob *domain.LegalObligation, days int) []domain.NotificationGate {
	var gates []domain.NotificationGate
	if days > 0 && days <= 30 && !ob.Notified30 {
		gates = append(gates, domain.Gate30Days)
	}
	if days > 0 && days <= 7 && !ob.Notified7 {
		gates = append(gates, domain.Gate7Days)
	}
	if days > 0 && days <= 1 && !ob.Notified1 {
		gates = append(gates, domain.Gate1Day)
	}
	if days < 0 && !ob.NotifiedExpired {
		gates = append(gates, domain.GateExpired)
	}
	return gates
}

func (uc *NotifyDeadlinesUseCase) fireGate(
	ctx context.Context,
	ob *domain.LegalObligation,
	gate domain.NotificationGate,
	days int,
	result *domain.NotifyResult,
) error {
	recipients, err := uc.recipients(ctx, ob)
	if err != nil {
		// No send was attempted, so the gate stays unset and the next
		// sweep retries the lookup.
		return err
	}

	subject, body := composeReminder(ob, gate, days)

	for _, recipient := range recipients {
		// One recipient failing must not block the other.
		err := uc.mailer.Send(ctx, domain.Email{To: recipient, Subject: subject, Body: body})
		if err != nil {
			result.Failed++
			uc.log.Error("notification_send_failed",
				"obligation_id", ob.ID,
				"gate", string(gate),
				"recipient", recipient,
				"error", err,
			)
			continue
		}
		result.Sent++
	}

	flipped, err := uc.obligations.MarkNotified(ctx, ob.ID, gate)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	if !flipped {
		uc.log.Warn("notification_flag_already_set", "obligation_id", ob.ID, "gate", string(gate))
	}
	return nil
}

// recipients resolves the owning company and its assigned agency, if any.
// A failed company lookup is an error: without it nothing can be addressed,
// and the caller must not consume the gate. A failed agency lookup only
// drops the agency side; the company itself resolved, so the reminder
// attempt proceeds. A resolved company with no address configured returns
// an empty list and no error.
func (uc *NotifyDeadlinesUseCase) recipients(ctx context.Context, ob *domain.LegalObligation) ([]string, error) {
	company, err := uc.directory.GetCompany(ctx, ob.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("resolve company %s: %w", ob.CompanyID, err)
	}

	var out []string
	if email := company.NotificationEmail(); email != "" {
		out = append(out, email)
	}

	if company.AgencyID == "" {
		return out, nil
	}
	agency, err := uc.directory.GetAgency(ctx, company.AgencyID)
	if err != nil {
		uc.log.Error("agency_lookup_failed", "obligation_id", ob.ID, "agency_id", company.AgencyID, "error", err)
		return out, nil
	}
	if agency.ContactEmail != "" {
		out = append(out, agency.ContactEmail)
	}
	return out, nil
}

func composeReminder(ob *domain.LegalObligation, gate domain.NotificationGate, days int) (string, string) {
	due := ob.DueAt.Format("02.01.2006")
	switch gate {
	case domain.GateExpired:
		subject := "ISTEKAO ROK: " + ob.Description
		body := fmt.Sprintf(
			"Zakonska obaveza je istekla %s.\n\nObaveza: %s\nPravni osnov: %s\n\nPotrebno je hitno postupanje.",
			due, ob.Description, ob.LegalBasis,
		)
		return subject, body
	default:
		subject := fmt.Sprintf("Podsetnik: rok ističe za %d dana - %s", days, ob.Description)
		body := fmt.Sprintf(
			"Rok za ispunjenje zakonske obaveze ističe %s.\n\nObaveza: %s\nPravni osnov: %s",
			due, ob.Description, ob.LegalBasis,
		)
		return subject, body
	}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysUntil counts whole calendar days from today to the due date; negative
// when the due date has passed.
func daysUntil(due, today time.Time) int {
	return int(truncateToDay(due).Sub(today) / (24 * time.Hour))
}
