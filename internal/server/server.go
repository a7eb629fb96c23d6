package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/audit"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
	"github.com/jonathan/resume-tailor/internal/similarity"
	"github.com/jonathan/resume-tailor/internal/tailoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 2 << 20

// Store persists parsed records and tailoring results
type Store interface {
	SaveResume(ctx context.Context, resume types.Resume) (uuid.UUID, error)
	GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error)
	SaveJob(ctx context.Context, job types.Job) (uuid.UUID, error)
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
	SaveTailoring(ctx context.Context, resumeID, jobID uuid.UUID, out *types.TailorResponseData) error
	GetTailoring(ctx context.Context, resumeID, jobID uuid.UUID) (*types.TailorResponseData, error)
}

// QuotaGate approves a tailoring request by consuming allowance
type QuotaGate interface {
	ConsumeTailoring(ctx context.Context, userID string) (db.AllowanceSource, error)
	RefundTailoring(ctx context.Context, userID string, source db.AllowanceSource) error
}

// Config holds server configuration
type Config struct {
	Port int
}

// Dependencies are the components the handlers call. Parsers and the
// tailoring engine are required; the rest may be nil to disable the feature.
type Dependencies struct {
	ResumeParser *parsing.FallbackResumeParser
	JobParser    *parsing.FallbackJobParser
	Tailor       *tailoring.FallbackEngine
	Matcher      *similarity.Matcher
	Store        Store
	Quota        QuotaGate
	Audit        *audit.Log
	Limiter      *ratelimit.Limiter
	Logger       *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	resumeParser *parsing.FallbackResumeParser
	jobParser    *parsing.FallbackJobParser
	tailor       *tailoring.FallbackEngine
	matcher      *similarity.Matcher
	store        Store
	quota        QuotaGate
	audit        *audit.Log
	rateLimiter  *ratelimit.Limiter
	logger       *zap.Logger
}

// New creates a new server instance
func New(cfg Config, deps Dependencies) (*Server, error) {
	if deps.ResumeParser == nil || deps.JobParser == nil || deps.Tailor == nil {
		return nil, errors.New("server requires resume parser, job parser and tailoring engine")
	}

	s := &Server{
		resumeParser: deps.ResumeParser,
		jobParser:    deps.JobParser,
		tailor:       deps.Tailor,
		matcher:      deps.Matcher,
		store:        deps.Store,
		quota:        deps.Quota,
		audit:        deps.Audit,
		rateLimiter:  deps.Limiter,
		logger:       observability.WithFields(deps.Logger, zap.String("component", "server")),
	}
	if s.audit == nil {
		s.audit = audit.New(audit.DefaultCapacity)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Model-backed tailoring can be slow
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /parse/resume", s.handleParseResume)
	mux.HandleFunc("POST /parse/job", s.handleParseJob)
	mux.HandleFunc("POST /ats/score", s.handleScore)
	mux.HandleFunc("POST /match", s.handleMatch)
	mux.HandleFunc("POST /tailor", s.handleTailor)
	mux.HandleFunc("GET /resumes/{id}", s.handleGetResume)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /tailorings/{resume_id}/{job_id}", s.handleGetTailoring)
	mux.HandleFunc("GET /audit", s.handleAudit)
	mux.HandleFunc("GET /health", s.handleHealth)

	var h http.Handler = s.withCORS(mux)
	h = s.withRateLimit(h)
	h = middleware.Logging(s.logger)(h)
	return middleware.RequestID(h)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		secs := max(int(info.RetryAfter.Seconds()), 1)
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response. Internal errors are logged
// and replaced with a generic message.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	resp := ErrorResponse{Error: err.Error(), RequestID: middleware.GetRequestID(r.Context())}

	var verr *ErrValidation
	if errors.As(err, &verr) {
		resp.Error = verr.Message
		resp.Field = verr.Field
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		resp.Error = "internal error"
	}
	s.jsonResponse(w, status, resp)
}

// decode reads a size-limited JSON body into dst and validates it
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return validateRequest(dst)
}
