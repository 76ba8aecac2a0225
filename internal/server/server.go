// Package server exposes the funnel over HTTP: applications, status lookups,
// document uploads, referrals, and health.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/redline-leasing/driver-funnel/internal/config"
	"github.com/redline-leasing/driver-funnel/internal/gateway"
	"github.com/redline-leasing/driver-funnel/internal/model"
	"github.com/redline-leasing/driver-funnel/internal/store"
	"github.com/redline-leasing/driver-funnel/pkg/highlevel"
)

// Gateway is the subset of the submission gateway the handlers use.
type Gateway interface {
	Configured() bool
	Submit(ctx context.Context, draft model.ApplicationDraft, contactID string) model.SubmissionOutcome
	ResolveStatus(ctx context.Context, email, phoneLast4 string) (*gateway.StatusResult, error)
	SubmitReferral(ctx context.Context, r gateway.Referral) (referrerID, driverID string, err error)
}

// Tracker is the synchronous partial-submission entry point.
type Tracker interface {
	TrackNow(ctx context.Context, id model.Identity, step model.Step, contactID string) (string, error)
}

// Server holds the handler dependencies.
type Server struct {
	cfg     *config.Config
	gw      Gateway
	tracker Tracker
	ledger  store.Store      // may be nil
	client  highlevel.Client // may be nil; used for document-contact linkage
}

// New creates a Server.
func New(cfg *config.Config, gw Gateway, tracker Tracker, ledger store.Store, client highlevel.Client) *Server {
	return &Server{cfg: cfg, gw: gw, tracker: tracker, ledger: ledger, client: client}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(time.Duration(s.cfg.Server.RequestTimeoutSecs) * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/applications", s.handleApplications)
	r.Post("/status", s.handleStatus)
	r.Post("/documents", s.handleDocumentUpload)
	r.Get("/documents/requirements", s.handleDocumentRequirements)
	r.Post("/referrals", s.handleReferrals)

	return r
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// recoverer converts panics into an INTERNAL_ERROR envelope.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				zap.L().Error("handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				respondError(w, model.ErrInternal, "Something went wrong on our end. Please contact support.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
