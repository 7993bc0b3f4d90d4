package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
)

type directoryFake struct {
	companies map[string]*domain.Company
	agencies  map[string]*domain.Agency
}

func (f *directoryFake) GetCompany(_ context.Context, id string) (*domain.Company, error) {
	company, ok := f.companies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

func (f *directoryFake) GetAgency(_ context.Context, id string) (*domain.Agency, error) {
	agency, ok := f.agencies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return agency, nil
}

type mailerFake struct {
	sent    []domain.Email
	failFor map[string]error
}

func (f *mailerFake) Send(_ context.Context, msg domain.Email) error {
	if err, ok := f.failFor[msg.To]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func notifierFixture() (*obligationRepoFake, *directoryFake, *mailerFake, *NotifyDeadlinesUseCase) {
	repo := newObligationRepoFake()
	directory := &directoryFake{
		companies: map[string]*domain.Company{
			"c-1": {ID: "c-1", Name: "Gradnja DOO", ContactEmail: "office@gradnja.rs", AgencyID: "a-1"},
		},
		agencies: map[string]*domain.Agency{
			"a-1": {ID: "a-1", Name: "BZR Konsalting", ContactEmail: "bzr@konsalting.rs"},
		},
	}
	mailer := &mailerFake{failFor: map[string]error{}}
	uc := NewNotifyDeadlinesUseCase(repo, directory, mailer, testLogger())
	return repo, directory, mailer, uc
}

func seedObligation(repo *obligationRepoFake, id string, due time.Time, mutate func(*domain.LegalObligation)) {
	ob := &domain.LegalObligation{
		ID:             id,
		CompanyID:      "c-1",
		Type:           domain.TypeMedicalExam,
		Description:    "Periodični lekarski pregled",
		LegalBasis:     "Zakon o BZR čl. 43",
		DueAt:          due,
		Status:         domain.ObligationActive,
		SourceTable:    "medical_exam_requirements",
		SourceRecordID: id,
	}
	if mutate != nil {
		mutate(ob)
	}
	repo.byKey[dedupeKey(ob.CompanyID, ob.SourceTable, ob.SourceRecordID)] = ob
}

func TestRunFiresGate30ToBothRecipients(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	repo, _, mailer, uc := notifierFixture()
	seedObligation(repo, "ob-1", now.AddDate(0, 0, 20), nil)

	result, err := uc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Sent != 2 || result.Failed != 0 {
		t.Fatalf("expected 2 sends, got %+v", result)
	}
	if len(repo.markCalls) != 1 || repo.markCalls[0] != "ob-1:30d" {
		t.Fatalf("expected single gate-30 flag flip, got %v", repo.markCalls)
	}
	recipients := map[string]bool{}
	for _, msg := range mailer.sent {
		recipients[msg.To] = true
		if !strings.Contains(msg.Subject, "Podsetnik") {
			t.Fatalf("unexpected subject %q", msg.Subject)
		}
	}
	if !recipients["office@gradnja.rs"] || !recipients["bzr@konsalting.rs"] {
		t.Fatalf("expected company and agency recipients, got %v", recipients)
	}
}

func TestRunFiresOnlyGate7WhenGate30AlreadySent(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	repo, _, _, uc := notifierFixture()
	seedObligation(repo, "ob-1", now.AddDate(0, 0, 5), func(ob *domain.LegalObligation) {
		ob.Notified30 = true
	})

	if _, err := uc.Run(context.Background(), now); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(repo.markCalls) != 1 || repo.markCalls[0] != "ob-1:7d" {
		t.Fatalf("expected only gate 7 to fire, got %v", repo.markCalls)
	}
}

func TestRunFiresSkippedGatesTogetherOnInfrequentSweep(t *testing.T) {
	// A sweep that never saw the 30-day window fires 30 and 7 in one pass.
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	repo, _, _, uc := notifierFixture()
	seedObligation(repo, "ob-1", now.AddDate(0, 0, 5), nil)

	if _, err := uc.Run(context.Background(), now); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(repo.markCalls) != 2 {
		t.Fatalf("expected gates 30 and 7 to fire, got %v", repo.markCalls)
	}
}

func TestRunFlagsAreMonotonicAcrossSweeps(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	repo, _, mailer, uc := notifierFixture()
	seedObligation(repo, "ob-1", now.AddDate(0, 0, 25), nil)

	for range 3 {
		if _, err := uc.Run(context.Background(), now); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("reminder must be sent once per recipient across repeated sweeps, got %d sends", len(mailer.sent))
	}
	ob := repo.byKey[dedupeKey("c-1", "medical_exam_requirements", "ob-1")]
	if !ob.Notified30 || ob.Notified7 || ob.Notified1 || ob.NotifiedExpired {
		t.Fatalf("unexpected flag state: %+v", ob)
	}
}

func TestRunExpiredGateTransitionsStatus(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	repo, _, mailer, uc := notifierFixture()
	seedObligation(repo, "ob-1", now.AddDate(0, 0, -3), nil)

	result, err := uc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Sent != 2 {
		t.Fatalf("expected expiry notice to both recipients, got %+v", result)
	}
	ob := repo.byKey[dedupeKey("c-1", "medical_exam_requirements", "ob-1")]
	if ob.Status != domain.ObligationExpired || !ob.NotifiedExpired {
		t.Fatalf("expected istekao with expired flag, got %+v", ob)
	}
	if !strings.Contains(mailer.sent[0].Subject, "ISTEKAO ROK") {
		t.Fatalf("unexpected expiry subject %q", mailer.sent[0].Subject)
	}

	// Second sweep: terminal, nothing left to send.
	mailer.sent = nil
	if _, err := uc.Run(context.Background(), now); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expired obligation must not notify twice, got %d sends", len(mailer.sent))
	}
}

func TestRunDueTodayFiresNoGate(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	repo, _, _, uc := notifierFixture()
	seedObligation(repo, "ob-1", now.Add(2*time.Hour), nil)

	if _, err := uc.Run(context.Background(), now); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(repo.markCalls) != 0 {
		t.Fatalf("due-today obligation must fire nothing, got %v", repo.markCalls)
	}
}

func TestRunPartialDeliveryFailureIsIsolated(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	repo, _, mailer, uc := notifierFixture()
	mailer.failFor["office@gradnja.rs"] = errors.New("mailbox full")
	seedObligation(repo, "ob-1", now.AddDate(0, 0, 10), nil)
	seedObligation(repo, "ob-2", now.AddDate(0, 0, 12), nil)

	result, err := uc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Agency delivery succeeds for both obligations despite the company
	// address failing each time.
	if result.Sent != 2 || result.Failed != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(repo.markCalls) != 2 {
		t.Fatalf("flags must still flip after attempted sends, got %v", repo.markCalls)
	}
}

func TestRunCompanyLookupFailureKeepsGateForNextSweep(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	repo, directory, mailer, uc := notifierFixture()
	delete(directory.companies, "c-1")
	seedObligation(repo, "ob-1", now.AddDate(0, 0, 20), nil)

	result, err := uc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "c-1") {
		t.Fatalf("lookup failure must land in the batch summary, got %+v", result)
	}
	if result.Sent != 0 || result.Failed != 0 || len(mailer.sent) != 0 {
		t.Fatalf("no delivery should be attempted, got %+v", result)
	}
	if len(repo.markCalls) != 0 {
		t.Fatalf("gate must stay unset with zero send attempts, got %v", repo.markCalls)
	}

	// Directory recovers: the same sweep window still delivers.
	directory.companies["c-1"] = &domain.Company{ID: "c-1", ContactEmail: "office@gradnja.rs"}
	result, err = uc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if result.Sent != 1 || len(repo.markCalls) != 1 {
		t.Fatalf("recovered lookup must deliver and flip the gate, got %+v marks=%v", result, repo.markCalls)
	}
}

func TestRunResolvedCompanyWithoutAddressConsumesGate(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	repo, directory, mailer, uc := notifierFixture()
	directory.companies["c-1"].ContactEmail = ""
	directory.companies["c-1"].AgencyID = ""
	seedObligation(repo, "ob-1", now.AddDate(0, 0, 20), nil)

	result, err := uc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Sent != 0 || len(mailer.sent) != 0 {
		t.Fatalf("nothing to address, got %+v", result)
	}
	if len(repo.markCalls) != 1 || repo.markCalls[0] != "ob-1:30d" {
		t.Fatalf("resolved company with no address still consumes the gate, got %v", repo.markCalls)
	}
}

func TestRunCompanyWithoutAgencyNotifiesCompanyOnly(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	repo, directory, mailer, uc := notifierFixture()
	directory.companies["c-1"].AgencyID = ""
	seedObligation(repo, "ob-1", now.AddDate(0, 0, 10), nil)

	result, err := uc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("expected single company send, got %+v", result)
	}
	if mailer.sent[0].To != "office@gradnja.rs" {
		t.Fatalf("unexpected recipient %s", mailer.sent[0].To)
	}
}
