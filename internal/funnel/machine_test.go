package funnel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redline-leasing/driver-funnel/internal/model"
	"github.com/redline-leasing/driver-funnel/internal/validate"
)

// fakeSubmitter returns a canned outcome and records call inputs.
type fakeSubmitter struct {
	outcome    model.SubmissionOutcome
	calls      int
	contactIDs []string
}

func (f *fakeSubmitter) Submit(ctx context.Context, draft model.ApplicationDraft, contactID string) model.SubmissionOutcome {
	f.calls++
	f.contactIDs = append(f.contactIDs, contactID)
	return f.outcome
}

func completeDraft() model.ApplicationDraft {
	return model.ApplicationDraft{
		FirstName:        "Ray",
		LastName:         "Ortiz",
		Email:            "ray@example.com",
		Phone:            "(555) 867-5309",
		HasCDL:           true,
		HasMedicalCard:   true,
		USWorkEligible:   true,
		ExperienceMonths: 18,
		State:            "TX",
		WeeklyBudget:     "500-700",
		TruckType:        "sleeper",
		FreightType:      "dry_van",
	}
}

// advance drives the session through Next once, requiring a clean advance.
func advance(t *testing.T, s *Session) {
	t.Helper()
	res, err := s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, res.Advanced, "expected advance, got %+v", res)
}

func newReviewSession(t *testing.T, sub Submitter) *Session {
	t.Helper()
	s := NewSession(sub, nil)
	require.NoError(t, s.SetDraft(completeDraft()))
	advance(t, s) // contact
	advance(t, s) // qualification
	advance(t, s) // preferences
	require.Equal(t, model.StepReview, s.Step())
	return s
}

func TestSessionHappyPath(t *testing.T) {
	sub := &fakeSubmitter{outcome: model.SubmissionSuccess("abc123", true)}
	s := newReviewSession(t, sub)

	outcome, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "abc123", outcome.ContactID)
	assert.Equal(t, StateSubmitted, s.State())
	assert.Equal(t, "abc123", s.ContactID())
	assert.Equal(t, 1, sub.calls)
}

func TestNextRejectsInvalidFields(t *testing.T) {
	s := NewSession(nil, nil)
	d := completeDraft()
	d.Email = "not-an-email"
	require.NoError(t, s.SetDraft(d))

	res, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Advanced)
	assert.Equal(t, model.StepContact, s.Step())
	require.NotEmpty(t, res.FieldErrors)
	assert.Equal(t, "email", res.FieldErrors[0].Field)
}

func TestStep2DisqualifiesRegardlessOfOtherFields(t *testing.T) {
	s := NewSession(nil, nil)
	d := completeDraft()
	d.ExperienceMonths = 11
	// Step 1 and 3 values are irrelevant to the gate.
	d.WeeklyBudget = ""
	require.NoError(t, s.SetDraft(d))

	advance(t, s)

	res, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Advanced)
	assert.True(t, res.Disqualified)
	assert.Equal(t, []string{validate.ReasonExperience}, res.Reasons)
	assert.Equal(t, StateDisqualified, s.State())
	assert.Equal(t, model.StepQualification, s.Step())
	assert.Equal(t, res.Reasons, s.DisqualificationReasons())
}

func TestBackClearsDisqualifiedAndRerunsGate(t *testing.T) {
	s := NewSession(nil, nil)
	d := completeDraft()
	d.ExperienceMonths = 11
	require.NoError(t, s.SetDraft(d))
	advance(t, s)

	_, err := s.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateDisqualified, s.State())

	// Next is blocked while disqualified.
	_, err = s.Next(context.Background())
	require.Error(t, err)

	step, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, model.StepQualification, step)
	assert.Equal(t, StateInProgress, s.State())
	assert.Nil(t, s.DisqualificationReasons())

	// Fixing the field and advancing re-runs the gate.
	d.ExperienceMonths = 14
	require.NoError(t, s.SetDraft(d))
	advance(t, s)
	assert.Equal(t, model.StepPreferences, s.Step())
}

func TestBackInvalidatesQualificationGate(t *testing.T) {
	sub := &fakeSubmitter{outcome: model.SubmissionSuccess("abc123", true)}
	s := newReviewSession(t, sub)

	// Walk back into the qualification step and edit it to a failing value.
	_, err := s.Back() // review -> preferences
	require.NoError(t, err)
	_, err = s.Back() // preferences -> qualification
	require.NoError(t, err)

	d := s.Draft()
	d.ExperienceMonths = 3
	require.NoError(t, s.SetDraft(d))

	res, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Disqualified)
	assert.Equal(t, StateDisqualified, s.State())
}

func TestBackStopsAtFirstStep(t *testing.T) {
	s := NewSession(nil, nil)

	step, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, model.StepContact, step)
}

func TestSubmitGuards(t *testing.T) {
	t.Run("not at review", func(t *testing.T) {
		s := NewSession(&fakeSubmitter{}, nil)
		require.NoError(t, s.SetDraft(completeDraft()))
		_, err := s.Submit(context.Background())
		require.Error(t, err)
	})

	t.Run("next has no meaning at review", func(t *testing.T) {
		s := newReviewSession(t, &fakeSubmitter{})
		_, err := s.Next(context.Background())
		require.Error(t, err)
	})

	t.Run("double submit", func(t *testing.T) {
		sub := &fakeSubmitter{outcome: model.SubmissionSuccess("abc123", true)}
		s := newReviewSession(t, sub)
		_, err := s.Submit(context.Background())
		require.NoError(t, err)
		_, err = s.Submit(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, sub.calls)
	})

	t.Run("draft frozen after submit", func(t *testing.T) {
		sub := &fakeSubmitter{outcome: model.SubmissionSuccess("abc123", true)}
		s := newReviewSession(t, sub)
		_, err := s.Submit(context.Background())
		require.NoError(t, err)
		require.Error(t, s.SetDraft(completeDraft()))
	})
}

func TestSubmitFailureAllowsRetry(t *testing.T) {
	sub := &fakeSubmitter{outcome: model.SubmissionFailure(model.ErrExternalService, "store unreachable")}
	s := newReviewSession(t, sub)

	outcome, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, model.ErrExternalService, outcome.Kind)
	assert.Equal(t, StateSubmitFailed, s.State())
	assert.Equal(t, model.StepReview, s.Step())
	require.NotNil(t, s.Outcome())

	// Retry is an explicit new Submit with the same data.
	sub.outcome = model.SubmissionSuccess("abc123", true)
	outcome, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, StateSubmitted, s.State())
	assert.Equal(t, 2, sub.calls)
}

func TestTrackerFiresOnEverySuccessfulNext(t *testing.T) {
	client := newFakeClient("abc123")
	tr := NewTracker(client, nil)
	s := NewSession(nil, tr)
	require.NoError(t, s.SetDraft(completeDraft()))

	advance(t, s)
	advance(t, s)
	advance(t, s)
	tr.Wait()

	assert.Equal(t, 3, client.upsertCount())
	assert.Equal(t, "abc123", s.ContactID())
}

// The tracker fires on a validated step 2 even when the gate then disqualifies.
func TestTrackerFiresOnDisqualifyingStep2(t *testing.T) {
	client := newFakeClient("abc123")
	tr := NewTracker(client, nil)
	s := NewSession(nil, tr)

	d := completeDraft()
	d.ExperienceMonths = 0
	require.NoError(t, s.SetDraft(d))

	advance(t, s)
	res, err := s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, res.Disqualified)
	tr.Wait()

	assert.Equal(t, 2, client.upsertCount())
}

func TestSubmitPassesCachedContactID(t *testing.T) {
	client := newFakeClient("abc123")
	tr := NewTracker(client, nil)
	sub := &fakeSubmitter{outcome: model.SubmissionSuccess("abc123", true)}
	s := NewSession(sub, tr)
	require.NoError(t, s.SetDraft(completeDraft()))

	advance(t, s)
	advance(t, s)
	advance(t, s)
	tr.Wait()

	_, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, sub.contactIDs, 1)
	assert.Equal(t, "abc123", sub.contactIDs[0])
}
