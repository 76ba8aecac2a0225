package validate

import "github.com/redline-leasing/driver-funnel/internal/model"

// MinExperienceMonths is the driving-experience floor for the program.
const MinExperienceMonths = 12

// Disqualification reasons, in the fixed order they are reported.
const (
	ReasonNoCDL         = "A valid CDL is required"
	ReasonNoMedicalCard = "A current DOT medical card is required"
	ReasonExperience    = "At least 12 months of driving experience is required"
	ReasonNotEligible   = "You must be eligible to work in the United States"
)

// Prequalify evaluates the eligibility gate from a qualification snapshot.
// Qualified iff CDL, medical card, and US work eligibility are all present and
// experience is at least MinExperienceMonths. Reasons list exactly the failing
// clauses, in the order CDL, medical card, experience, work eligibility.
func Prequalify(q model.QualificationSnapshot) model.PrequalResult {
	var reasons []string
	if !q.HasCDL {
		reasons = append(reasons, ReasonNoCDL)
	}
	if !q.HasMedicalCard {
		reasons = append(reasons, ReasonNoMedicalCard)
	}
	if q.ExperienceMonths < MinExperienceMonths {
		reasons = append(reasons, ReasonExperience)
	}
	if !q.USWorkEligible {
		reasons = append(reasons, ReasonNotEligible)
	}
	return model.PrequalResult{Qualified: len(reasons) == 0, Reasons: reasons}
}
