// Package funnel drives the multi-step application form: the session state
// machine and the best-effort partial-submission tracker.
package funnel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/redline-leasing/driver-funnel/internal/model"
	"github.com/redline-leasing/driver-funnel/internal/store"
	"github.com/redline-leasing/driver-funnel/pkg/highlevel"
)

// ContactRef holds the external contact id assigned on the first tracked
// write. Safe for concurrent use; tracker goroutines race to set it and the
// last writer wins, which is fine because every write upserts by email.
type ContactRef struct {
	mu sync.Mutex
	id string
}

// Set records the contact id.
func (r *ContactRef) Set(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = id
}

// Get returns the contact id, or "" if none has been assigned.
func (r *ContactRef) Get() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// TagIncomplete marks contacts created by partial tracking.
const TagIncomplete = "incomplete-application"

// trackTimeout bounds each detached tracking write.
const trackTimeout = 15 * time.Second

// Tracker upserts in-progress contact info to the external store after each
// completed step. Losing a tracking write never blocks the applicant.
type Tracker struct {
	client highlevel.Client
	ledger store.Store
	wg     sync.WaitGroup
}

// NewTracker creates a Tracker. Either dependency may be nil; a nil client
// turns every write into a no-op error and a nil ledger skips the audit row.
func NewTracker(client highlevel.Client, ledger store.Store) *Tracker {
	return &Tracker{client: client, ledger: ledger}
}

// TrackNow synchronously upserts a partial contact record tagged with the
// completed step and returns the contact id. If any identity field is blank it
// does nothing. Callers own error handling; the HTTP layer reduces errors to a
// warning and the state machine uses Track instead.
func (t *Tracker) TrackNow(ctx context.Context, id model.Identity, step model.Step, contactID string) (string, error) {
	if !id.Complete() {
		return contactID, nil
	}
	if t.client == nil {
		return contactID, eris.New("tracker: contact store not configured")
	}

	req := highlevel.ContactUpsert{
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Email:     id.Email,
		Phone:     id.Phone,
		Tags:      []string{TagIncomplete, fmt.Sprintf("partial-step-%d", step)},
		CustomField: highlevel.CustomFields{
			highlevel.FieldPartialStep: fmt.Sprintf("%d", step),
		}.Remote(),
	}

	var (
		contact *highlevel.Contact
		err     error
	)
	if contactID != "" {
		contact, err = t.client.UpdateContact(ctx, contactID, req)
	} else {
		contact, err = t.client.UpsertContact(ctx, req)
	}
	if err != nil {
		return contactID, eris.Wrap(err, "tracker: upsert partial contact")
	}

	t.audit(ctx, contact.ID, id.Email, step)
	return contact.ID, nil
}

// Track fires a detached tracking write and returns immediately. Failures are
// swallowed to a log line; the assigned contact id is cached on ref.
func (t *Tracker) Track(id model.Identity, step model.Step, ref *ContactRef) {
	if !id.Complete() {
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
		defer cancel()

		contactID, err := t.TrackNow(ctx, id, step, ref.Get())
		if err != nil {
			zap.L().Warn("partial tracking failed",
				zap.Int("step", int(step)),
				zap.Error(err),
			)
			return
		}
		ref.Set(contactID)
	}()
}

// Wait blocks until all detached tracking writes settle. Used at shutdown and
// in tests.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// audit records the tracked write in the local ledger, best-effort.
func (t *Tracker) audit(ctx context.Context, contactID, email string, step model.Step) {
	if t.ledger == nil {
		return
	}
	_, err := t.ledger.RecordSubmission(ctx, model.SubmissionRecord{
		Kind:      model.SubmissionPartial,
		ContactID: contactID,
		Email:     email,
		Step:      int(step),
	})
	if err != nil {
		zap.L().Warn("partial tracking audit failed", zap.Error(err))
	}
}
