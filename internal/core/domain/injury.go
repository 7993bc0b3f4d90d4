package domain

import "time"

// InjuryReport is one coded workplace-injury record: a narrative plus the 13
// ESAW classification codes the Serbian injury-report form requires.
type InjuryReport struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	WorkerName string    `json:"worker_name"`
	OccurredAt time.Time `json:"occurred_at"`
	Narrative  string    `json:"narrative"`

	Codes ESAWCodes `json:"codes"`

	CreatedAt time.Time `json:"created_at"`
}

// ESAWCodes carries one code per classification table.
type ESAWCodes struct {
	Workstation       string `json:"workstation"`
	WorkEnvironment   string `json:"work_environment"`
	WorkProcess       string `json:"work_process"`
	SpecificActivity  string `json:"specific_activity"`
	Deviation         string `json:"deviation"`
	ContactMode       string `json:"contact_mode"`
	InjuryType        string `json:"injury_type"`
	BodyPart          string `json:"body_part"`
	MaterialDeviation string `json:"material_agent_deviation"`
	MaterialContact   string `json:"material_agent_contact"`
	MaterialActivity  string `json:"material_agent_activity"`
	Severity          string `json:"severity"`
	EmploymentStatus  string `json:"employment_status"`
}

// Validate checks every code against its table. The first invalid code fails
// the whole report; partially coded reports are not persisted.
func (c ESAWCodes) Validate() error {
	checks := []struct {
		table string
		code  string
	}{
		{ESAWWorkstation, c.Workstation},
		{ESAWWorkEnvironment, c.WorkEnvironment},
		{ESAWWorkProcess, c.WorkProcess},
		{ESAWSpecificActivity, c.SpecificActivity},
		{ESAWDeviation, c.Deviation},
		{ESAWContactMode, c.ContactMode},
		{ESAWInjuryType, c.InjuryType},
		{ESAWBodyPart, c.BodyPart},
		{ESAWMaterialDeviation, c.MaterialDeviation},
		{ESAWMaterialContact, c.MaterialContact},
		{ESAWMaterialActivity, c.MaterialActivity},
		{ESAWSeverity, c.Severity},
		{ESAWEmploymentStatus, c.EmploymentStatus},
	}
	for _, check := range checks {
		if err := ValidateESAWCode(check.table, check.code); err != nil {
			return err
		}
	}
	return nil
}
