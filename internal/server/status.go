package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/redline-leasing/driver-funnel/internal/gateway"
	"github.com/redline-leasing/driver-funnel/internal/model"
)

type statusRequest struct {
	Email      string `json:"email"`
	PhoneLast4 string `json:"phone_last4"`
}

type statusData struct {
	FirstName      string `json:"first_name"`
	Status         string `json:"status"`
	Description    string `json:"description"`
	Step           int    `json:"step"`
	IsPrequalified bool   `json:"is_prequalified"`
	AppliedAt      string `json:"applied_at,omitempty"`
}

type statusResponse struct {
	Success bool       `json:"success"`
	Data    statusData `json:"data"`
}

// statusNotFoundMessage is shared by the not-found and failed-verification
// paths so the response never reveals whether an email has an application.
const statusNotFoundMessage = "No application found for that email and phone combination."

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, model.ErrValidation, "Invalid request body.")
		return
	}
	var fields []model.FieldError
	if req.Email == "" {
		fields = append(fields, model.FieldError{Field: "email", Message: "Email is required."})
	}
	if len(req.PhoneLast4) != 4 {
		fields = append(fields, model.FieldError{Field: "phone_last4", Message: "The last four digits of your phone number are required."})
	}
	if len(fields) > 0 {
		respondFieldErrors(w, "Please correct the highlighted fields.", fields)
		return
	}

	res, err := s.gw.ResolveStatus(r.Context(), req.Email, req.PhoneLast4)
	switch {
	case err == nil:
	case errors.Is(err, gateway.ErrStoreNotConfigured):
		respondError(w, model.ErrServiceNotConfigured, "Status lookups are temporarily unavailable.")
		return
	case errors.Is(err, gateway.ErrApplicationNotFound):
		respondError(w, model.ErrNotFound, statusNotFoundMessage)
		return
	case errors.Is(err, gateway.ErrVerificationFailed):
		respondError(w, model.ErrVerificationFailed, statusNotFoundMessage)
		return
	default:
		zap.L().Error("status lookup failed", zap.Error(err))
		respondError(w, model.ErrExternalService, "We could not check your status right now. Please try again.")
		return
	}

	data := statusData{
		FirstName:      res.FirstName,
		Status:         res.Status.Status,
		Description:    res.Status.Description,
		Step:           res.Status.Step,
		IsPrequalified: res.IsPrequalified,
	}
	if !res.AppliedAt.IsZero() {
		data.AppliedAt = res.AppliedAt.Format(time.RFC3339)
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true, Data: data})
}
