// Package store persists the local ledger: stored document uploads and an
// audit trail of writes to the external contact store.
package store

import (
	"context"

	"github.com/redline-leasing/driver-funnel/internal/model"
)

// Store defines the ledger persistence interface.
type Store interface {
	RecordDocument(ctx context.Context, doc model.DocumentRecord) (*model.DocumentRecord, error)
	ListDocuments(ctx context.Context, contactID string) ([]model.DocumentRecord, error)
	RecordSubmission(ctx context.Context, sub model.SubmissionRecord) (*model.SubmissionRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
