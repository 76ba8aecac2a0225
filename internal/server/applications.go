package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/redline-leasing/driver-funnel/internal/model"
)

// applicationRequest carries the form payload plus submission mode. Partial
// payloads name the step the applicant last completed; full payloads carry
// every field.
type applicationRequest struct {
	model.ApplicationDraft
	Partial   bool   `json:"partial,omitempty"`
	Step      int    `json:"step,omitempty"`
	ContactID string `json:"contact_id,omitempty"`
}

type applicationResponse struct {
	Success        bool   `json:"success"`
	ContactID      string `json:"contact_id,omitempty"`
	IsPrequalified bool   `json:"is_prequalified"`
}

type partialResponse struct {
	Success   bool   `json:"success"`
	Tracked   bool   `json:"tracked"`
	ContactID string `json:"contact_id,omitempty"`
	Step      int    `json:"step"`
	Warning   string `json:"warning,omitempty"`
}

func (s *Server) handleApplications(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, model.ErrValidation, "Invalid request body.")
		return
	}

	if req.Partial {
		s.handlePartial(w, r, req)
		return
	}

	out := s.gw.Submit(r.Context(), req.ApplicationDraft, req.ContactID)
	if !out.Success {
		respondJSON(w, out.Kind.HTTPStatus(), errorEnvelope{
			Error:   out.Kind,
			Message: out.Message,
			Fields:  out.FieldErrors,
		})
		return
	}
	respondJSON(w, http.StatusCreated, applicationResponse{
		Success:        true,
		ContactID:      out.ContactID,
		IsPrequalified: out.IsPrequalified,
	})
}

// handlePartial records an abandoned-form snapshot. Tracking is best effort
// and never fails the request; failures surface as a warning in the body.
func (s *Server) handlePartial(w http.ResponseWriter, r *http.Request, req applicationRequest) {
	step := model.Step(req.Step)
	if !step.Valid() {
		step = model.StepContact
	}

	resp := partialResponse{Success: true, Step: int(step)}

	identity := req.Identity()
	if !identity.Complete() {
		respondJSON(w, http.StatusOK, resp)
		return
	}

	contactID, err := s.tracker.TrackNow(r.Context(), identity, step, req.ContactID)
	if err != nil {
		zap.L().Warn("partial tracking failed",
			zap.Int("step", int(step)),
			zap.Error(err),
		)
		resp.Warning = "Partial submission was not recorded."
		respondJSON(w, http.StatusOK, resp)
		return
	}

	resp.Tracked = true
	resp.ContactID = contactID
	respondJSON(w, http.StatusOK, resp)
}
