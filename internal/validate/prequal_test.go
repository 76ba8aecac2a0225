package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/redline-leasing/driver-funnel/internal/model"
)

func qualified() model.QualificationSnapshot {
	return model.QualificationSnapshot{
		HasCDL:           true,
		HasMedicalCard:   true,
		USWorkEligible:   true,
		ExperienceMonths: 24,
	}
}

func TestPrequalifyAllMet(t *testing.T) {
	t.Parallel()

	res := Prequalify(qualified())
	assert.True(t, res.Qualified)
	assert.Empty(t, res.Reasons)
}

func TestPrequalifySingleClauseFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*model.QualificationSnapshot)
		reason string
	}{
		{"no cdl", func(q *model.QualificationSnapshot) { q.HasCDL = false }, ReasonNoCDL},
		{"no medical card", func(q *model.QualificationSnapshot) { q.HasMedicalCard = false }, ReasonNoMedicalCard},
		{"not eligible", func(q *model.QualificationSnapshot) { q.USWorkEligible = false }, ReasonNotEligible},
		{"11 months", func(q *model.QualificationSnapshot) { q.ExperienceMonths = 11 }, ReasonExperience},
		{"zero months", func(q *model.QualificationSnapshot) { q.ExperienceMonths = 0 }, ReasonExperience},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := qualified()
			tt.mutate(&q)
			res := Prequalify(q)
			assert.False(t, res.Qualified)
			assert.Equal(t, []string{tt.reason}, res.Reasons)
		})
	}
}

func TestPrequalifyReasonOrder(t *testing.T) {
	t.Parallel()

	res := Prequalify(model.QualificationSnapshot{})
	assert.False(t, res.Qualified)
	assert.Equal(t, []string{
		ReasonNoCDL,
		ReasonNoMedicalCard,
		ReasonExperience,
		ReasonNotEligible,
	}, res.Reasons)
}

func TestPrequalifyBoundary(t *testing.T) {
	t.Parallel()

	q := qualified()
	q.ExperienceMonths = MinExperienceMonths
	assert.True(t, Prequalify(q).Qualified)

	q.ExperienceMonths = MinExperienceMonths - 1
	res := Prequalify(q)
	assert.False(t, res.Qualified)
	assert.Equal(t, []string{ReasonExperience}, res.Reasons)
}
