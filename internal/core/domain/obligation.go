package domain

import "time"

type ObligationType string

const (
	TypeMedicalExam          ObligationType = "lekarski_pregled"
	TypeTraining             ObligationType = "obuka_bzr"
	TypeEquipmentInspection  ObligationType = "pregled_opreme"
	TypeElectricalInspection ObligationType = "pregled_instalacija"
	TypeEnvironmentTest      ObligationType = "ispitivanje_uslova"
)

type ObligationStatus string

const (
	ObligationActive    ObligationStatus = "aktivan"
	ObligationCompleted ObligationStatus = "zavrsen"
	ObligationExpired   ObligationStatus = "istekao"
)

// NotificationGate identifies one of the four one-shot reminder thresholds.
type NotificationGate string

const (
	Gate30Days  NotificationGate = "30d"
	Gate7Days   NotificationGate = "7d"
	Gate1Day    NotificationGate = "1d"
	GateExpired NotificationGate = "expired"
)

// LegalObligation is one tracked regulatory deadline, derived from exactly
// one source record. At most one obligation exists per
// (company, source table, source record) - the detector is idempotent.
// Status moves aktivan -> istekao on expiry or aktivan -> zavrsen on user
// action; both are terminal. Notification flags flip false -> true exactly
// once and never reset.
type LegalObligation struct {
	ID          string           `json:"id"`
	CompanyID   string           `json:"company_id"`
	Type        ObligationType   `json:"type"`
	Description string           `json:"description"`
	LegalBasis  string           `json:"legal_basis"`
	DueAt       time.Time        `json:"due_at"`
	Status      ObligationStatus `json:"status"`

	SourceTable    string `json:"source_table"`
	SourceRecordID string `json:"source_record_id"`

	Notified30      bool `json:"notified_30"`
	Notified7       bool `json:"notified_7"`
	Notified1       bool `json:"notified_1"`
	NotifiedExpired bool `json:"notified_expired"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ObligationFilter narrows obligation queries to one company or one agency's
// client portfolio. Zero value means no filtering.
type ObligationFilter struct {
	CompanyID string
	AgencyID  string
}

// SourceRecord is the closed union of upstream records the detector derives
// obligations from. Each variant knows its own due-date rule: inspection
// records carry an explicit next-inspection date, recurring requirements
// carry a cadence string resolved through FrequencyMonths.
type SourceRecord interface {
	SourceTable() string
	SourceID() string
	Company() string
	ObligationType() ObligationType
	Description() string
	Basis() string
	NextDue(now time.Time) time.Time
}

// MedicalExam is a recurring periodic-exam requirement for one work position.
type MedicalExam struct {
	ID         string
	CompanyID  string
	Position   string
	Frequency  string
	LegalBasis string
}

func (m MedicalExam) SourceTable() string            { return "medical_exam_requirements" }
func (m MedicalExam) SourceID() string               { return m.ID }
func (m MedicalExam) Company() string                { return m.CompanyID }
func (m MedicalExam) ObligationType() ObligationType { return TypeMedicalExam }
func (m MedicalExam) Description() string {
	return "Periodični lekarski pregled: " + m.Position
}
func (m MedicalExam) Basis() string { return m.LegalBasis }
func (m MedicalExam) NextDue(now time.Time) time.Time {
	return now.AddDate(0, FrequencyMonths(m.Frequency), 0)
}

// Training is a recurring occupational-safety training requirement.
type Training struct {
	ID         string
	CompanyID  string
	Topic      string
	Frequency  string
	LegalBasis string
}

func (t Training) SourceTable() string            { return "training_requirements" }
func (t Training) SourceID() string               { return t.ID }
func (t Training) Company() string                { return t.CompanyID }
func (t Training) ObligationType() ObligationType { return TypeTraining }
func (t Training) Description() string {
	return "Obuka za bezbedan rad: " + t.Topic
}
func (t Training) Basis() string { return t.LegalBasis }
func (t Training) NextDue(now time.Time) time.Time {
	return now.AddDate(0, FrequencyMonths(t.Frequency), 0)
}

// EquipmentInspection is a periodic work-equipment inspection record with an
// explicit next-inspection date.
type EquipmentInspection struct {
	ID             string
	CompanyID      string
	Equipment      string
	NextInspection time.Time
	LegalBasis     string
}

func (e EquipmentInspection) SourceTable() string            { return "equipment_inspections" }
func (e EquipmentInspection) SourceID() string               { return e.ID }
func (e EquipmentInspection) Company() string                { return e.CompanyID }
func (e EquipmentInspection) ObligationType() ObligationType { return TypeEquipmentInspection }
func (e EquipmentInspection) Description() string {
	return "Pregled i provera opreme za rad: " + e.Equipment
}
func (e EquipmentInspection) Basis() string               { return e.LegalBasis }
func (e EquipmentInspection) NextDue(time.Time) time.Time { return e.NextInspection }

// ElectricalInspection is a periodic electrical/lightning installation
// inspection record.
type ElectricalInspection struct {
	ID             string
	CompanyID      string
	Installation   string
	NextInspection time.Time
	LegalBasis     string
}

func (e ElectricalInspection) SourceTable() string            { return "electrical_inspections" }
func (e ElectricalInspection) SourceID() string               { return e.ID }
func (e ElectricalInspection) Company() string                { return e.CompanyID }
func (e ElectricalInspection) ObligationType() ObligationType { return TypeElectricalInspection }
func (e ElectricalInspection) Description() string {
	return "Ispitivanje električnih instalacija: " + e.Installation
}
func (e ElectricalInspection) Basis() string               { return e.LegalBasis }
func (e ElectricalInspection) NextDue(time.Time) time.Time { return e.NextInspection }

// EnvironmentTest is a periodic working-environment condition test record.
type EnvironmentTest struct {
	ID             string
	CompanyID      string
	Scope          string
	NextInspection time.Time
	LegalBasis     string
}

func (e EnvironmentTest) SourceTable() string            { return "environment_tests" }
func (e EnvironmentTest) SourceID() string               { return e.ID }
func (e EnvironmentTest) Company() string                { return e.CompanyID }
func (e EnvironmentTest) ObligationType() ObligationType { return TypeEnvironmentTest }
func (e EnvironmentTest) Description() string {
	return "Ispitivanje uslova radne okoline: " + e.Scope
}
func (e EnvironmentTest) Basis() string               { return e.LegalBasis }
func (e EnvironmentTest) NextDue(time.Time) time.Time { return e.NextInspection }

// SyncResult is the structured outcome of one detector run. Per-record
// failures are collected here and never abort the batch.
type SyncResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Expired int      `json:"expired"`
	Errors  []string `json:"errors,omitempty"`
}

func (r *SyncResult) Merge(other SyncResult) {
	r.Created += other.Created
	r.Skipped += other.Skipped
	r.Expired += other.Expired
	r.Errors = append(r.Errors, other.Errors...)
}

// NotifyResult is the structured outcome of one notifier sweep.
type NotifyResult struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}
