// Package gateway is the boundary between the funnel and the external contact
// store: full submissions, status lookups, and referrals.
package gateway

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/redline-leasing/driver-funnel/internal/model"
	"github.com/redline-leasing/driver-funnel/internal/store"
	"github.com/redline-leasing/driver-funnel/internal/validate"
	"github.com/redline-leasing/driver-funnel/pkg/highlevel"
)

// User-facing failure messages.
const (
	msgValidation    = "Please correct the highlighted fields and resubmit."
	msgNotConfigured = "Applications are temporarily unavailable. Please try again later."
	msgExternal      = "We couldn't reach our application system. Please try again."
)

// Gateway forwards validated applications to the external contact store. It
// performs no retries; retry policy belongs to the caller.
type Gateway struct {
	client highlevel.Client
	ledger store.Store
}

// New creates a Gateway. A nil client means the contact store is not
// configured; write paths then refuse rather than drop applications. The
// ledger may be nil.
func New(client highlevel.Client, ledger store.Store) *Gateway {
	return &Gateway{client: client, ledger: ledger}
}

// Configured reports whether the external contact store is reachable by
// configuration.
func (g *Gateway) Configured() bool {
	return g.client != nil
}

// Submit validates a complete payload, recomputes prequalification, and
// creates or updates the remote contact. Client-supplied qualification flags
// are never trusted; the gate is re-evaluated here from the payload fields.
func (g *Gateway) Submit(ctx context.Context, draft model.ApplicationDraft, contactID string) model.SubmissionOutcome {
	if errs := validate.Complete(draft); len(errs) > 0 {
		out := model.SubmissionFailure(model.ErrValidation, msgValidation)
		out.FieldErrors = errs
		return out
	}

	prequal := validate.Prequalify(draft.Qualification())

	if g.client == nil {
		return model.SubmissionFailure(model.ErrServiceNotConfigured, msgNotConfigured)
	}

	req := buildContactUpsert(draft, prequal.Qualified)

	var (
		contact *highlevel.Contact
		err     error
	)
	if contactID != "" {
		contact, err = g.client.UpdateContact(ctx, contactID, req)
	} else {
		contact, err = g.client.UpsertContact(ctx, req)
	}
	if err != nil {
		zap.L().Error("application submission failed",
			zap.String("email", draft.Email),
			zap.Error(err),
		)
		return model.SubmissionFailure(model.ErrExternalService, msgExternal)
	}

	g.audit(ctx, contact.ID, draft.Email, prequal.Qualified)
	return model.SubmissionSuccess(contact.ID, prequal.Qualified)
}

func buildContactUpsert(d model.ApplicationDraft, prequalified bool) highlevel.ContactUpsert {
	qualTag := model.TagNotPrequalified
	if prequalified {
		qualTag = model.TagPrequalified
	}

	return highlevel.ContactUpsert{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
		Tags:      []string{model.TagNewApplication, qualTag},
		CustomField: highlevel.CustomFields{
			highlevel.FieldSMSOptIn:           strconv.FormatBool(d.SMSOptIn),
			highlevel.FieldLeadSource:         d.LeadSource,
			highlevel.FieldReferralCode:       d.ReferralCode,
			highlevel.FieldHasCDL:             strconv.FormatBool(d.HasCDL),
			highlevel.FieldHasMedicalCard:     strconv.FormatBool(d.HasMedicalCard),
			highlevel.FieldExperienceMonths:   strconv.Itoa(d.ExperienceMonths),
			highlevel.FieldState:              d.State,
			highlevel.FieldUSWorkEligible:     strconv.FormatBool(d.USWorkEligible),
			highlevel.FieldWeeklyBudget:       d.WeeklyBudget,
			highlevel.FieldTruckType:          d.TruckType,
			highlevel.FieldFreightType:        d.FreightType,
			highlevel.FieldHasExistingCarrier: strconv.FormatBool(d.HasExistingCarrier),
			highlevel.FieldCarrierName:        d.CarrierName,
			highlevel.FieldIsPrequalified:     strconv.FormatBool(prequalified),
		}.Remote(),
	}
}

// audit records the successful submission in the local ledger, best-effort.
func (g *Gateway) audit(ctx context.Context, contactID, email string, prequalified bool) {
	if g.ledger == nil {
		return
	}
	_, err := g.ledger.RecordSubmission(ctx, model.SubmissionRecord{
		Kind:         model.SubmissionFull,
		ContactID:    contactID,
		Email:        email,
		Step:         model.StepCount,
		Prequalified: prequalified,
	})
	if err != nil {
		zap.L().Warn("submission audit failed", zap.Error(err))
	}
}
