package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redline-leasing/driver-funnel/internal/config"
	"github.com/redline-leasing/driver-funnel/internal/gateway"
	"github.com/redline-leasing/driver-funnel/internal/model"
	"github.com/redline-leasing/driver-funnel/pkg/highlevel"
)

// stubGateway scripts gateway behavior per test.
type stubGateway struct {
	configured bool

	outcome   model.SubmissionOutcome
	submitted []model.ApplicationDraft

	statusRes *gateway.StatusResult
	statusErr error

	referrerID  string
	driverID    string
	referralErr error
}

func (s *stubGateway) Configured() bool { return s.configured }

func (s *stubGateway) Submit(ctx context.Context, draft model.ApplicationDraft, contactID string) model.SubmissionOutcome {
	s.submitted = append(s.submitted, draft)
	return s.outcome
}

func (s *stubGateway) ResolveStatus(ctx context.Context, email, phoneLast4 string) (*gateway.StatusResult, error) {
	return s.statusRes, s.statusErr
}

func (s *stubGateway) SubmitReferral(ctx context.Context, r gateway.Referral) (string, string, error) {
	return s.referrerID, s.driverID, s.referralErr
}

// stubTracker records synchronous tracking calls.
type stubTracker struct {
	calls     int
	lastStep  model.Step
	contactID string
	err       error
}

func (s *stubTracker) TrackNow(ctx context.Context, id model.Identity, step model.Step, contactID string) (string, error) {
	s.calls++
	s.lastStep = step
	if s.err != nil {
		return contactID, s.err
	}
	return s.contactID, nil
}

// stubTagger only implements tag writes; the document handler needs nothing else.
type stubTagger struct {
	tagged map[string][]string
	tagErr error
}

func (s *stubTagger) UpsertContact(ctx context.Context, req highlevel.ContactUpsert) (*highlevel.Contact, error) {
	return nil, nil
}

func (s *stubTagger) UpdateContact(ctx context.Context, contactID string, req highlevel.ContactUpsert) (*highlevel.Contact, error) {
	return nil, nil
}

func (s *stubTagger) LookupByEmail(ctx context.Context, email string) (*highlevel.Contact, error) {
	return nil, nil
}

func (s *stubTagger) AddTags(ctx context.Context, contactID string, tags []string) error {
	if s.tagErr != nil {
		return s.tagErr
	}
	if s.tagged == nil {
		s.tagged = make(map[string][]string)
	}
	s.tagged[contactID] = append(s.tagged[contactID], tags...)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Port:               8080,
			RequestTimeoutSecs: 30,
			AllowedOrigins:     []string{"*"},
		},
		Uploads: config.UploadsConfig{
			Dir:      t.TempDir(),
			MaxBytes: 10 << 20,
		},
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		srv := New(testConfig(t), &stubGateway{configured: true}, &stubTracker{}, nil, nil)
		rr := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", decodeBody(t, rr)["status"])
	})

	t.Run("unconfigured", func(t *testing.T) {
		srv := New(testConfig(t), &stubGateway{}, &stubTracker{}, nil, nil)
		rr := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestApplicationsFullSubmit(t *testing.T) {
	gw := &stubGateway{outcome: model.SubmissionSuccess("abc123", true)}
	srv := New(testConfig(t), gw, &stubTracker{}, nil, nil)

	rr := doJSON(t, srv.Router(), http.MethodPost, "/applications", map[string]any{
		"first_name": "Ray",
		"last_name":  "Ortiz",
		"email":      "ray@example.com",
		"phone":      "555-867-5309",
	})

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "abc123", body["contact_id"])
	assert.Equal(t, true, body["is_prequalified"])
	require.Len(t, gw.submitted, 1)
	assert.Equal(t, "Ray", gw.submitted[0].FirstName)
}

func TestApplicationsValidationFailure(t *testing.T) {
	gw := &stubGateway{outcome: model.SubmissionOutcome{
		Kind:        model.ErrValidation,
		Message:     "Please correct the highlighted fields.",
		FieldErrors: []model.FieldError{{Field: "email", Message: "A valid email address is required."}},
	}}
	srv := New(testConfig(t), gw, &stubTracker{}, nil, nil)

	rr := doJSON(t, srv.Router(), http.MethodPost, "/applications", map[string]any{})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "VALIDATION_ERROR", body["error"])
	assert.Len(t, body["fields"], 1)
}

func TestApplicationsUnconfigured(t *testing.T) {
	gw := &stubGateway{outcome: model.SubmissionFailure(model.ErrServiceNotConfigured, "unavailable")}
	srv := New(testConfig(t), gw, &stubTracker{}, nil, nil)

	rr := doJSON(t, srv.Router(), http.MethodPost, "/applications", map[string]any{})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestApplicationsBadBody(t *testing.T) {
	srv := New(testConfig(t), &stubGateway{}, &stubTracker{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApplicationsPartial(t *testing.T) {
	partial := map[string]any{
		"partial":    true,
		"step":       2,
		"first_name": "Ray",
		"last_name":  "Ortiz",
		"email":      "ray@example.com",
		"phone":      "555-867-5309",
	}

	t.Run("tracked", func(t *testing.T) {
		tracker := &stubTracker{contactID: "abc123"}
		srv := New(testConfig(t), &stubGateway{}, tracker, nil, nil)

		rr := doJSON(t, srv.Router(), http.MethodPost, "/applications", partial)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["tracked"])
		assert.Equal(t, "abc123", body["contact_id"])
		assert.Equal(t, float64(2), body["step"])
		assert.Equal(t, 1, tracker.calls)
		assert.Equal(t, model.StepQualification, tracker.lastStep)
	})

	// A tracking failure still returns 200; the applicant must never be
	// blocked by telemetry.
	t.Run("tracking failure degrades to warning", func(t *testing.T) {
		tracker := &stubTracker{err: assert.AnError}
		srv := New(testConfig(t), &stubGateway{}, tracker, nil, nil)

		rr := doJSON(t, srv.Router(), http.MethodPost, "/applications", partial)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, false, body["tracked"])
		assert.NotEmpty(t, body["warning"])
	})

	t.Run("incomplete identity is a no-op", func(t *testing.T) {
		tracker := &stubTracker{}
		srv := New(testConfig(t), &stubGateway{}, tracker, nil, nil)

		rr := doJSON(t, srv.Router(), http.MethodPost, "/applications", map[string]any{
			"partial":    true,
			"step":       1,
			"first_name": "Ray",
		})

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, false, decodeBody(t, rr)["tracked"])
		assert.Zero(t, tracker.calls)
	})

	t.Run("out-of-range step defaults to the first", func(t *testing.T) {
		tracker := &stubTracker{contactID: "abc123"}
		srv := New(testConfig(t), &stubGateway{}, tracker, nil, nil)

		p := map[string]any{}
		for k, v := range partial {
			p[k] = v
		}
		p["step"] = 9
		rr := doJSON(t, srv.Router(), http.MethodPost, "/applications", p)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(1), decodeBody(t, rr)["step"])
	})
}

func TestStatusEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		gw := &stubGateway{statusRes: &gateway.StatusResult{
			FirstName:      "Ray",
			Status:         model.StatusInfo{Status: "In Review", Description: "Your application is being reviewed.", Step: 2},
			IsPrequalified: true,
		}}
		srv := New(testConfig(t), gw, &stubTracker{}, nil, nil)

		rr := doJSON(t, srv.Router(), http.MethodPost, "/status", map[string]any{
			"email":       "ray@example.com",
			"phone_last4": "5309",
		})

		require.Equal(t, http.StatusOK, rr.Code)
		data := decodeBody(t, rr)["data"].(map[string]any)
		assert.Equal(t, "Ray", data["first_name"])
		assert.Equal(t, "In Review", data["status"])
		assert.Equal(t, float64(2), data["step"])
		assert.Equal(t, true, data["is_prequalified"])
	})

	t.Run("missing fields", func(t *testing.T) {
		srv := New(testConfig(t), &stubGateway{}, &stubTracker{}, nil, nil)
		rr := doJSON(t, srv.Router(), http.MethodPost, "/status", map[string]any{"email": "ray@example.com"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	// Not-found and failed-verification responses must carry the same message
	// so the endpoint cannot be used to probe for registered emails.
	t.Run("not found and bad verification are indistinguishable", func(t *testing.T) {
		notFound := &stubGateway{statusErr: gateway.ErrApplicationNotFound}
		srv := New(testConfig(t), notFound, &stubTracker{}, nil, nil)
		rrNotFound := doJSON(t, srv.Router(), http.MethodPost, "/status", map[string]any{
			"email": "ray@example.com", "phone_last4": "5309",
		})
		assert.Equal(t, http.StatusNotFound, rrNotFound.Code)

		badVerify := &stubGateway{statusErr: gateway.ErrVerificationFailed}
		srv = New(testConfig(t), badVerify, &stubTracker{}, nil, nil)
		rrBadVerify := doJSON(t, srv.Router(), http.MethodPost, "/status", map[string]any{
			"email": "ray@example.com", "phone_last4": "9999",
		})
		assert.Equal(t, http.StatusUnauthorized, rrBadVerify.Code)

		assert.Equal(t, decodeBody(t, rrNotFound)["message"], decodeBody(t, rrBadVerify)["message"])
	})

	t.Run("unconfigured", func(t *testing.T) {
		srv := New(testConfig(t), &stubGateway{statusErr: gateway.ErrStoreNotConfigured}, &stubTracker{}, nil, nil)
		rr := doJSON(t, srv.Router(), http.MethodPost, "/status", map[string]any{
			"email": "ray@example.com", "phone_last4": "5309",
		})
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		srv := New(testConfig(t), &stubGateway{statusErr: assert.AnError}, &stubTracker{}, nil, nil)
		rr := doJSON(t, srv.Router(), http.MethodPost, "/status", map[string]any{
			"email": "ray@example.com", "phone_last4": "5309",
		})
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestReferralsEndpoint(t *testing.T) {
	valid := map[string]any{
		"referrer_first_name": "Dana",
		"referrer_email":      "dana@example.com",
		"driver_first_name":   "Ray",
		"driver_email":        "ray@example.com",
	}

	t.Run("success", func(t *testing.T) {
		gw := &stubGateway{referrerID: "ref1", driverID: "drv1"}
		srv := New(testConfig(t), gw, &stubTracker{}, nil, nil)

		rr := doJSON(t, srv.Router(), http.MethodPost, "/referrals", valid)

		require.Equal(t, http.StatusCreated, rr.Code)
		data := decodeBody(t, rr)["data"].(map[string]any)
		assert.Equal(t, "ref1", data["referrer_contact_id"])
		assert.Equal(t, "drv1", data["driver_contact_id"])
	})

	t.Run("missing fields", func(t *testing.T) {
		srv := New(testConfig(t), &stubGateway{}, &stubTracker{}, nil, nil)
		rr := doJSON(t, srv.Router(), http.MethodPost, "/referrals", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unconfigured", func(t *testing.T) {
		srv := New(testConfig(t), &stubGateway{referralErr: gateway.ErrStoreNotConfigured}, &stubTracker{}, nil, nil)
		rr := doJSON(t, srv.Router(), http.MethodPost, "/referrals", valid)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func multipartUpload(t *testing.T, docType, contactID string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_type", docType))
	if contactID != "" {
		require.NoError(t, mw.WriteField("contact_id", contactID))
	}
	fw, err := mw.CreateFormFile("file", "upload.bin")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, srv *Server, docType, contactID string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, docType, contactID, content)
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func TestDocumentUpload(t *testing.T) {
	cfg := testConfig(t)
	tagger := &stubTagger{}
	srv := New(cfg, &stubGateway{}, &stubTracker{}, nil, tagger)

	rr := doUpload(t, srv, "cdl", "abc123", pngHeader)

	require.Equal(t, http.StatusCreated, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]any)
	assert.Equal(t, "cdl", data["document_type"])
	assert.Equal(t, "image/png", data["mime"])

	files, err := os.ReadDir(cfg.Uploads.Dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ".png", filepath.Ext(files[0].Name()))

	assert.Equal(t, []string{"doc-cdl"}, tagger.tagged["abc123"])
}

func TestDocumentUploadRejectsOversize(t *testing.T) {
	cfg := testConfig(t)
	cfg.Uploads.MaxBytes = 8
	srv := New(cfg, &stubGateway{}, &stubTracker{}, nil, nil)

	rr := doUpload(t, srv, "cdl", "", pngHeader)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "File too large.", decodeBody(t, rr)["message"])
}

func TestDocumentUploadRejectsUnknownType(t *testing.T) {
	srv := New(testConfig(t), &stubGateway{}, &stubTracker{}, nil, nil)
	rr := doUpload(t, srv, "passport", "", pngHeader)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// The declared content type is ignored; a text payload is rejected on sniff.
func TestDocumentUploadRejectsDisallowedMIME(t *testing.T) {
	srv := New(testConfig(t), &stubGateway{}, &stubTracker{}, nil, nil)
	rr := doUpload(t, srv, "cdl", "", []byte("just some text, not an image"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// A failed contact tag never fails the upload.
func TestDocumentUploadTagFailureDegradesToWarning(t *testing.T) {
	srv := New(testConfig(t), &stubGateway{}, &stubTracker{}, nil, &stubTagger{tagErr: assert.AnError})

	rr := doUpload(t, srv, "medical_card", "abc123", pngHeader)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEmpty(t, decodeBody(t, rr)["warning"])
}

func TestDocumentRequirements(t *testing.T) {
	srv := New(testConfig(t), &stubGateway{}, &stubTracker{}, nil, nil)
	rr := doJSON(t, srv.Router(), http.MethodGet, "/documents/requirements", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]any)
	assert.Len(t, data["document_types"], 4)
	assert.Len(t, data["allowed_mime_types"], 4)
	assert.Equal(t, float64(10<<20), data["max_bytes"])
}
