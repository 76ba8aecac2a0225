package server

import "net/http"

type healthResponse struct {
	Status          string `json:"status"`
	StoreConfigured bool   `json:"store_configured"`
}

// handleHealth reports readiness. A deployment without contact-store
// credentials can serve traffic but cannot accept applications, so it
// reports unavailable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.gw.Configured() {
		respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded"})
		return
	}
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok", StoreConfigured: true})
}
