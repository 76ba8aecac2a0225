package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/redline-leasing/driver-funnel/internal/model"
)

// errorEnvelope is the uniform failure body.
type errorEnvelope struct {
	Success bool               `json:"success"`
	Error   model.ErrorKind    `json:"error"`
	Message string             `json:"message"`
	Fields  []model.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, kind model.ErrorKind, message string) {
	respondJSON(w, kind.HTTPStatus(), errorEnvelope{Error: kind, Message: message})
}

func respondFieldErrors(w http.ResponseWriter, message string, fields []model.FieldError) {
	respondJSON(w, http.StatusBadRequest, errorEnvelope{
		Error:   model.ErrValidation,
		Message: message,
		Fields:  fields,
	})
}
