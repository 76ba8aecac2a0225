package model

// Step identifies one of the four form steps.
type Step int

const (
	StepContact Step = iota + 1
	StepQualification
	StepPreferences
	StepReview
)

// StepCount is the number of form steps.
const StepCount = 4

// Valid reports whether s is a real form step.
func (s Step) Valid() bool {
	return s >= StepContact && s <= StepReview
}

// String returns the step's display name.
func (s Step) String() string {
	switch s {
	case StepContact:
		return "contact"
	case StepQualification:
		return "qualification"
	case StepPreferences:
		return "preferences"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// StepDescriptor names the draft fields a step validates. The sequence is
// fixed configuration, never mutated at runtime.
type StepDescriptor struct {
	Step   Step
	Name   string
	Fields []string
}

// Steps is the ordered step sequence. Review carries no fields of its own; it
// re-validates the union of the prior steps.
var Steps = [StepCount]StepDescriptor{
	{Step: StepContact, Name: "contact", Fields: []string{
		"first_name", "last_name", "email", "phone",
	}},
	{Step: StepQualification, Name: "qualification", Fields: []string{
		"has_cdl", "has_medical_card", "experience_months", "state", "us_work_eligible",
	}},
	{Step: StepPreferences, Name: "preferences", Fields: []string{
		"weekly_budget", "truck_type", "freight_type", "has_existing_carrier", "carrier_name",
	}},
	{Step: StepReview, Name: "review"},
}
