package model

import "time"

// DocumentType identifies a driver document kind accepted by the upload
// endpoint.
type DocumentType string

const (
	DocumentCDL         DocumentType = "cdl"
	DocumentMedicalCard DocumentType = "medical_card"
	DocumentMVR         DocumentType = "mvr"
	DocumentInsurance   DocumentType = "proof_of_insurance"
)

// DocumentTypes is the fixed set of accepted document kinds.
var DocumentTypes = []DocumentType{
	DocumentCDL,
	DocumentMedicalCard,
	DocumentMVR,
	DocumentInsurance,
}

// Valid reports whether t is an accepted document kind.
func (t DocumentType) Valid() bool {
	for _, d := range DocumentTypes {
		if t == d {
			return true
		}
	}
	return false
}

// AllowedDocumentMIMETypes is the upload MIME allow-list.
var AllowedDocumentMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/pdf",
}

// MIMEAllowed reports whether mime is on the upload allow-list.
func MIMEAllowed(mime string) bool {
	for _, m := range AllowedDocumentMIMETypes {
		if mime == m {
			return true
		}
	}
	return false
}

// DocumentRecord is a ledger row for one stored upload.
type DocumentRecord struct {
	ID         string       `json:"id"`
	ContactID  string       `json:"contact_id,omitempty"`
	Type       DocumentType `json:"document_type"`
	Filename   string       `json:"filename"`
	URL        string       `json:"url"`
	Size       int64        `json:"size"`
	MIME       string       `json:"mime"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

// SubmissionKind distinguishes ledger rows for partial tracking writes from
// full submissions.
type SubmissionKind string

const (
	SubmissionPartial SubmissionKind = "partial"
	SubmissionFull    SubmissionKind = "full"
)

// SubmissionRecord is a ledger row for one write to the external store.
type SubmissionRecord struct {
	ID           string         `json:"id"`
	Kind         SubmissionKind `json:"kind"`
	ContactID    string         `json:"contact_id"`
	Email        string         `json:"email"`
	Step         int            `json:"step"`
	Prequalified bool           `json:"prequalified"`
	CreatedAt    time.Time      `json:"created_at"`
}
