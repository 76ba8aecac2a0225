package gateway

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/redline-leasing/driver-funnel/internal/model"
	"github.com/redline-leasing/driver-funnel/internal/validate"
)

// Sentinel errors for status lookups. The HTTP layer maps these to the error
// taxonomy; anything else is an external-store failure.
var (
	ErrStoreNotConfigured  = eris.New("gateway: contact store not configured")
	ErrApplicationNotFound = eris.New("gateway: application not found")
	ErrVerificationFailed  = eris.New("gateway: verification failed")
)

// StatusResult is a resolved application status for a verified applicant.
type StatusResult struct {
	FirstName      string
	Status         model.StatusInfo
	IsPrequalified bool
	AppliedAt      time.Time
}

// ResolveStatus looks up a contact by email and verifies ownership with the
// last four digits of the stored phone before resolving the tag set to a
// status. A missing contact and a failed verification deliberately carry the
// same amount of information about whether the email exists.
func (g *Gateway) ResolveStatus(ctx context.Context, email, phoneLast4 string) (*StatusResult, error) {
	if g.client == nil {
		return nil, ErrStoreNotConfigured
	}

	contact, err := g.client.LookupByEmail(ctx, email)
	if err != nil {
		return nil, eris.Wrap(err, "gateway: status lookup")
	}
	if contact == nil {
		return nil, ErrApplicationNotFound
	}
	if validate.LastFourDigits(contact.Phone) != phoneLast4 {
		return nil, ErrVerificationFailed
	}

	prequalified := false
	for _, tag := range contact.Tags {
		if tag == model.TagPrequalified {
			prequalified = true
			break
		}
	}

	return &StatusResult{
		FirstName:      contact.FirstName,
		Status:         model.ResolveStatus(contact.Tags),
		IsPrequalified: prequalified,
		AppliedAt:      contact.DateAdded,
	}, nil
}
