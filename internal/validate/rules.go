// Package validate holds the pure field-validation rules and the
// prequalification predicate for the application funnel.
package validate

import (
	"regexp"
	"strings"

	"github.com/redline-leasing/driver-funnel/internal/model"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Accepts common US formats: 5558675309, 555-867-5309, (555) 867-5309,
	// +1 555.867.5309.
	phoneRe = regexp.MustCompile(`^\+?1?[\s.-]?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}$`)
)

// Step validates the field subset belonging to the given step. It never
// mutates the draft and has no side effects. Review validates the union of the
// prior steps.
func Step(step model.Step, d model.ApplicationDraft) []model.FieldError {
	switch step {
	case model.StepContact:
		return contactErrors(d)
	case model.StepQualification:
		return qualificationErrors(d)
	case model.StepPreferences:
		return preferenceErrors(d)
	case model.StepReview:
		return Complete(d)
	default:
		return []model.FieldError{{Field: "step", Message: "Unknown form step."}}
	}
}

// Complete validates the full draft against every step's field subset.
func Complete(d model.ApplicationDraft) []model.FieldError {
	var errs []model.FieldError
	errs = append(errs, contactErrors(d)...)
	errs = append(errs, qualificationErrors(d)...)
	errs = append(errs, preferenceErrors(d)...)
	return errs
}

func contactErrors(d model.ApplicationDraft) []model.FieldError {
	var errs []model.FieldError
	if len(strings.TrimSpace(d.FirstName)) < 2 {
		errs = append(errs, model.FieldError{Field: "first_name", Message: "First name must be at least 2 characters."})
	}
	if len(strings.TrimSpace(d.LastName)) < 2 {
		errs = append(errs, model.FieldError{Field: "last_name", Message: "Last name must be at least 2 characters."})
	}
	if !emailRe.MatchString(strings.TrimSpace(d.Email)) {
		errs = append(errs, model.FieldError{Field: "email", Message: "Enter a valid email address."})
	}
	if !phoneRe.MatchString(strings.TrimSpace(d.Phone)) {
		errs = append(errs, model.FieldError{Field: "phone", Message: "Enter a valid phone number."})
	}
	return errs
}

// qualificationErrors checks presence and shape only. The 12-month experience
// rule is deliberately not enforced here; it belongs to Prequalify so the
// applicant gets a qualification reason instead of a field error.
func qualificationErrors(d model.ApplicationDraft) []model.FieldError {
	var errs []model.FieldError
	if d.ExperienceMonths < 0 {
		errs = append(errs, model.FieldError{Field: "experience_months", Message: "Experience cannot be negative."})
	}
	if strings.TrimSpace(d.State) == "" {
		errs = append(errs, model.FieldError{Field: "state", Message: "Select your state."})
	}
	return errs
}

func preferenceErrors(d model.ApplicationDraft) []model.FieldError {
	var errs []model.FieldError
	if strings.TrimSpace(d.WeeklyBudget) == "" {
		errs = append(errs, model.FieldError{Field: "weekly_budget", Message: "Select a weekly payment budget."})
	}
	if strings.TrimSpace(d.TruckType) == "" {
		errs = append(errs, model.FieldError{Field: "truck_type", Message: "Select a truck type."})
	}
	if strings.TrimSpace(d.FreightType) == "" {
		errs = append(errs, model.FieldError{Field: "freight_type", Message: "Select a freight type."})
	}
	if d.HasExistingCarrier && strings.TrimSpace(d.CarrierName) == "" {
		errs = append(errs, model.FieldError{Field: "carrier_name", Message: "Enter your carrier name."})
	}
	return errs
}

// LastFourDigits strips non-digit characters from phone and returns the last
// four digits, or "" if fewer than four remain.
func LastFourDigits(phone string) string {
	var digits []byte
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}
