// Package model defines the domain types for the driver lease-to-own
// application funnel.
package model

// ApplicationDraft is the in-progress application form. It lives in memory for
// one session and is mutated only by the funnel state machine.
type ApplicationDraft struct {
	// Contact (step 1)
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	SMSOptIn     bool   `json:"sms_opt_in"`
	LeadSource   string `json:"lead_source,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`

	// Qualification (step 2)
	HasCDL           bool   `json:"has_cdl"`
	HasMedicalCard   bool   `json:"has_medical_card"`
	ExperienceMonths int    `json:"experience_months"`
	State            string `json:"state"`
	USWorkEligible   bool   `json:"us_work_eligible"`

	// Preferences (step 3)
	WeeklyBudget       string `json:"weekly_budget"`
	TruckType          string `json:"truck_type"`
	FreightType        string `json:"freight_type"`
	HasExistingCarrier bool   `json:"has_existing_carrier"`
	CarrierName        string `json:"carrier_name,omitempty"`
}

// Identity is the contact subset used for partial-submission tracking.
type Identity struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Complete reports whether every identity field is non-empty.
func (i Identity) Complete() bool {
	return i.FirstName != "" && i.LastName != "" && i.Email != "" && i.Phone != ""
}

// Identity returns the contact subset of the draft.
func (d ApplicationDraft) Identity() Identity {
	return Identity{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
	}
}

// QualificationSnapshot is the subset of fields the prequalification predicate
// evaluates. Taken at step-2 completion and again by the submission gateway.
type QualificationSnapshot struct {
	HasCDL           bool
	HasMedicalCard   bool
	USWorkEligible   bool
	ExperienceMonths int
}

// Qualification returns a snapshot of the draft's qualification fields.
func (d ApplicationDraft) Qualification() QualificationSnapshot {
	return QualificationSnapshot{
		HasCDL:           d.HasCDL,
		HasMedicalCard:   d.HasMedicalCard,
		USWorkEligible:   d.USWorkEligible,
		ExperienceMonths: d.ExperienceMonths,
	}
}

// PrequalResult is the outcome of the prequalification predicate. Reasons are
// ordered: CDL, medical card, experience, work eligibility.
type PrequalResult struct {
	Qualified bool     `json:"qualified"`
	Reasons   []string `json:"reasons,omitempty"`
}
