package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/redline-leasing/driver-funnel/internal/model"
)

type documentResponse struct {
	Success bool                 `json:"success"`
	Data    model.DocumentRecord `json:"data"`
	Warning string               `json:"warning,omitempty"`
}

type documentRequirements struct {
	DocumentTypes    []model.DocumentType `json:"document_types"`
	AllowedMIMETypes []string             `json:"allowed_mime_types"`
	MaxBytes         int64                `json:"max_bytes"`
}

func (s *Server) handleDocumentRequirements(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, struct {
		Success bool                 `json:"success"`
		Data    documentRequirements `json:"data"`
	}{
		Success: true,
		Data: documentRequirements{
			DocumentTypes:    model.DocumentTypes,
			AllowedMIMETypes: model.AllowedDocumentMIMETypes,
			MaxBytes:         s.cfg.Uploads.MaxBytes,
		},
	})
}

func (s *Server) handleDocumentUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.Uploads.MaxBytes
	// Leave headroom for the multipart framing and form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, model.ErrValidation, "File too large.")
			return
		}
		respondError(w, model.ErrValidation, "Invalid multipart request.")
		return
	}

	docType := model.DocumentType(r.FormValue("document_type"))
	if !docType.Valid() {
		respondError(w, model.ErrValidation, "Unknown document type.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, model.ErrValidation, "A file is required.")
		return
	}
	defer file.Close()

	if header.Size > maxBytes {
		respondError(w, model.ErrValidation, "File too large.")
		return
	}

	// Sniff the content rather than trusting the declared type.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		respondError(w, model.ErrInternal, "Could not read the uploaded file.")
		return
	}
	mime := sniffMIME(head[:n])
	if !model.MIMEAllowed(mime) {
		respondError(w, model.ErrValidation, "Only JPEG, PNG, WebP, and PDF files are accepted.")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respondError(w, model.ErrInternal, "Could not read the uploaded file.")
		return
	}

	if err := os.MkdirAll(s.cfg.Uploads.Dir, 0o755); err != nil {
		zap.L().Error("create upload dir", zap.Error(err))
		respondError(w, model.ErrInternal, "Could not store the uploaded file.")
		return
	}

	filename := uuid.NewString() + extensionFor(mime)
	dst, err := os.Create(filepath.Join(s.cfg.Uploads.Dir, filename))
	if err != nil {
		zap.L().Error("create upload file", zap.Error(err))
		respondError(w, model.ErrInternal, "Could not store the uploaded file.")
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		zap.L().Error("write upload file", zap.Error(err))
		respondError(w, model.ErrInternal, "Could not store the uploaded file.")
		return
	}

	doc := model.DocumentRecord{
		ContactID:  r.FormValue("contact_id"),
		Type:       docType,
		Filename:   filename,
		URL:        "/uploads/" + filename,
		Size:       header.Size,
		MIME:       mime,
		UploadedAt: time.Now().UTC(),
	}

	var warning string
	if s.ledger != nil {
		if rec, err := s.ledger.RecordDocument(r.Context(), doc); err != nil {
			zap.L().Warn("record document", zap.Error(err))
			warning = "Document stored but not indexed."
		} else {
			doc = *rec
		}
	}

	// Tag the contact so the status resolver sees the upload. Losing the tag
	// does not lose the file.
	if doc.ContactID != "" && s.client != nil {
		if err := s.client.AddTags(r.Context(), doc.ContactID, []string{"doc-" + string(docType)}); err != nil {
			zap.L().Warn("tag document upload",
				zap.String("contact_id", doc.ContactID),
				zap.Error(err),
			)
			if warning == "" {
				warning = "Document stored but not linked to your application."
			}
		}
	}

	respondJSON(w, http.StatusCreated, documentResponse{Success: true, Data: doc, Warning: warning})
}

// sniffMIME detects the content type from the file header. DetectContentType
// reports PDFs with a charset parameter, which the allow-list does not carry.
func sniffMIME(head []byte) string {
	mime := http.DetectContentType(head)
	if i := len("application/pdf"); len(mime) >= i && mime[:i] == "application/pdf" {
		return "application/pdf"
	}
	return mime
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
