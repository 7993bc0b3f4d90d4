package domain

import "time"

// Company is an onboarded employer. ContactEmail is the primary notification
// address; SafetyEmail optionally reaches the in-house safety officer.
type Company struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TaxID        string    `json:"tax_id"`
	ContactEmail string    `json:"contact_email"`
	SafetyEmail  string    `json:"safety_email,omitempty"`
	AgencyID     string    `json:"agency_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotificationEmail picks the address deadline reminders go to.
func (c *Company) NotificationEmail() string {
	if c.SafetyEmail != "" {
		return c.SafetyEmail
	}
	return c.ContactEmail
}

// Agency is an external occupational-safety service provider assigned to one
// or more companies.
type Agency struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// Email is the (recipient, subject, body) triple the notifier hands to the
// mail collaborator. Transport concerns stay out of the core.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
