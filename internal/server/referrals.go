package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/redline-leasing/driver-funnel/internal/gateway"
	"github.com/redline-leasing/driver-funnel/internal/model"
)

type referralResponse struct {
	Success bool `json:"success"`
	Data    struct {
		ReferrerContactID string `json:"referrer_contact_id"`
		DriverContactID   string `json:"driver_contact_id"`
	} `json:"data"`
}

func (s *Server) handleReferrals(w http.ResponseWriter, r *http.Request) {
	var req gateway.Referral
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, model.ErrValidation, "Invalid request body.")
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		respondFieldErrors(w, "Please correct the highlighted fields.", fields)
		return
	}

	referrerID, driverID, err := s.gw.SubmitReferral(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, gateway.ErrStoreNotConfigured):
		respondError(w, model.ErrServiceNotConfigured, "Referrals are temporarily unavailable.")
		return
	default:
		zap.L().Error("referral submission failed", zap.Error(err))
		respondError(w, model.ErrExternalService, "We could not record your referral right now. Please try again.")
		return
	}

	resp := referralResponse{Success: true}
	resp.Data.ReferrerContactID = referrerID
	resp.Data.DriverContactID = driverID
	respondJSON(w, http.StatusCreated, resp)
}
