package funnel

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/redline-leasing/driver-funnel/internal/model"
	"github.com/redline-leasing/driver-funnel/internal/validate"
)

// SessionState is the coarse state of one application session.
type SessionState string

const (
	StateInProgress   SessionState = "in_progress"
	StateDisqualified SessionState = "disqualified"
	StateSubmitting   SessionState = "submitting"
	StateSubmitted    SessionState = "submitted"
	StateSubmitFailed SessionState = "submit_failed"
)

// Submitter forwards a complete draft to the external store.
type Submitter interface {
	Submit(ctx context.Context, draft model.ApplicationDraft, contactID string) model.SubmissionOutcome
}

// StepResult reports the outcome of a Next transition.
type StepResult struct {
	Advanced     bool
	Step         model.Step
	FieldErrors  []model.FieldError
	Disqualified bool
	Reasons      []string
}

// Session is the multi-step form state machine for one applicant. It holds
// the accumulated draft, the current step, and the qualification gate taken at
// step-2 completion. Not safe for concurrent use; one session serves one
// single-threaded UI.
type Session struct {
	id        string
	draft     model.ApplicationDraft
	step      model.Step
	state     SessionState
	reasons   []string
	prequalOK bool
	outcome   *model.SubmissionOutcome
	ref       *ContactRef

	submitter Submitter
	tracker   *Tracker
}

// NewSession starts a session at the contact step.
func NewSession(submitter Submitter, tracker *Tracker) *Session {
	return &Session{
		id:        uuid.New().String(),
		step:      model.StepContact,
		state:     StateInProgress,
		ref:       &ContactRef{},
		submitter: submitter,
		tracker:   tracker,
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Step returns the current step.
func (s *Session) Step() model.Step { return s.step }

// State returns the session state.
func (s *Session) State() SessionState { return s.state }

// Draft returns a copy of the accumulated field values.
func (s *Session) Draft() model.ApplicationDraft { return s.draft }

// ContactID returns the external contact id assigned so far, or "".
func (s *Session) ContactID() string { return s.ref.Get() }

// DisqualificationReasons returns the ordered reasons captured when the
// session entered the Disqualified state.
func (s *Session) DisqualificationReasons() []string { return s.reasons }

// Outcome returns the result of the last Submit, or nil before any attempt.
func (s *Session) Outcome() *model.SubmissionOutcome { return s.outcome }

// SetDraft replaces the accumulated field values. Rejected once a submission
// is in flight or done.
func (s *Session) SetDraft(d model.ApplicationDraft) error {
	if s.state == StateSubmitting || s.state == StateSubmitted {
		return eris.New("funnel: draft is frozen")
	}
	s.draft = d
	return nil
}

// Next validates the current step's fields and advances on success. A step-2
// success additionally runs the prequalification gate; failing it moves the
// session to Disqualified with the ordered reasons. Every successful
// validation of steps 1-3 fires a detached tracking write, regardless of the
// qualification outcome.
func (s *Session) Next(ctx context.Context) (StepResult, error) {
	switch s.state {
	case StateSubmitting, StateSubmitted:
		return StepResult{}, eris.New("funnel: session is past editing")
	case StateDisqualified:
		return StepResult{}, eris.New("funnel: session is disqualified; go back to edit qualification")
	}
	if s.step == model.StepReview {
		return StepResult{}, eris.New("funnel: review step submits, it does not advance")
	}

	if errs := validate.Step(s.step, s.draft); len(errs) > 0 {
		return StepResult{Step: s.step, FieldErrors: errs}, nil
	}

	completed := s.step
	if s.tracker != nil {
		s.tracker.Track(s.draft.Identity(), completed, s.ref)
	}

	if completed == model.StepQualification {
		res := validate.Prequalify(s.draft.Qualification())
		if !res.Qualified {
			s.state = StateDisqualified
			s.reasons = res.Reasons
			s.prequalOK = false
			return StepResult{Step: s.step, Disqualified: true, Reasons: res.Reasons}, nil
		}
		s.prequalOK = true
	}

	s.step++
	return StepResult{Advanced: true, Step: s.step}, nil
}

// Back moves to the previous step. Leaving the Disqualified state re-enters
// the qualification step with the gate cleared. Any move that makes the
// qualification fields editable again invalidates the prior gate, so a later
// Next re-runs prequalification.
func (s *Session) Back() (model.Step, error) {
	switch s.state {
	case StateSubmitting:
		return s.step, eris.New("funnel: submission in flight")
	case StateSubmitted:
		return s.step, eris.New("funnel: session already submitted")
	}

	if s.state == StateDisqualified {
		s.state = StateInProgress
		s.reasons = nil
		s.prequalOK = false
		return s.step, nil
	}
	if s.step > model.StepContact {
		s.step--
	}
	if s.step <= model.StepQualification {
		s.prequalOK = false
	}
	if s.state == StateSubmitFailed {
		s.state = StateInProgress
	}
	return s.step, nil
}

// Submit forwards the full draft to the gateway. Only legal from the review
// step; a failed attempt leaves the session on review so the applicant can
// retry explicitly. No automatic retries.
func (s *Session) Submit(ctx context.Context) (model.SubmissionOutcome, error) {
	switch s.state {
	case StateSubmitting:
		return model.SubmissionOutcome{}, eris.New("funnel: submission already in flight")
	case StateSubmitted:
		return model.SubmissionOutcome{}, eris.New("funnel: session already submitted")
	case StateDisqualified:
		return model.SubmissionOutcome{}, eris.New("funnel: session is disqualified")
	}
	if s.step != model.StepReview {
		return model.SubmissionOutcome{}, eris.Errorf("funnel: submit from step %d", s.step)
	}
	if !s.prequalOK {
		return model.SubmissionOutcome{}, eris.New("funnel: qualification gate not passed")
	}

	s.state = StateSubmitting
	outcome := s.submitter.Submit(ctx, s.draft, s.ref.Get())
	s.outcome = &outcome

	if outcome.Success {
		s.state = StateSubmitted
		s.ref.Set(outcome.ContactID)
	} else {
		s.state = StateSubmitFailed
	}
	return outcome, nil
}
