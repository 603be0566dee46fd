// Package server provides the HTTP API of the resume builder service: the
// editor session endpoints used by the builder page and the resource routes
// that front the external resume backend.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/drafts"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

// Backend is the slice of the external resume backend the server uses. It
// extends the editor's view with the job list. *backend.Client satisfies it.
type Backend interface {
	editor.Backend
	ListJobs(ctx context.Context, userEmail string) ([]backend.Job, error)
}

// DraftStore extends the editor's draft view with the identity cache.
// *drafts.Store satisfies it. Nil disables drafts and identity caching.
type DraftStore interface {
	editor.DraftStore
	SetIdentity(ctx context.Context, clientID, userEmail string) error
	Identity(ctx context.Context, clientID string) (string, error)
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	backend     Backend
	drafts      DraftStore
	redisClient *redis.Client
	sessions    *sessionStore
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	logger      *log.Logger
}

// New creates a new server instance.
func New(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		backend:  backend.New(cfg.BackendURL, &backend.Options{Timeout: cfg.BackendTimeout}),
		validate: validator.New(),
		logger:   log.Default(),
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		s.redisClient = redis.NewClient(opts)
		s.drafts = drafts.NewStore(s.redisClient, cfg.DraftTTL)
	}

	s.sessions = newSessionStore(cfg.SessionTTL)
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request router.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Resume resources fronting the backend
	mux.HandleFunc("GET /api/master-resume", s.handleGetMasterResume)
	mux.HandleFunc("PUT /api/master-resume", s.handleSaveMasterResume)
	mux.HandleFunc("GET /api/tailored-resume", s.handleGetTailoredResume)
	mux.HandleFunc("PUT /api/tailored-resume", s.handleSaveTailoredResume)
	mux.HandleFunc("GET /api/resume-versions/{id}", s.handleGetResumeVersion)

	// Job tracker
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("POST /api/jobs/{jobId}/tailored-resume", s.handleCreateTailoredResume)

	// Tailoring analysis
	mux.HandleFunc("GET /api/resume-tailoring/get-analysis/{versionId}", s.handleGetAnalysis)
	mux.HandleFunc("POST /api/resume-tailoring/analyze-resume", s.handleAnalyzeResume)

	// Editor sessions
	mux.HandleFunc("POST /api/editor/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/editor/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/editor/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("PUT /api/editor/sessions/{id}/state", s.handleUpdateState)
	mux.HandleFunc("POST /api/editor/sessions/{id}/save", s.handleSessionSave)
	mux.HandleFunc("POST /api/editor/sessions/{id}/save-as-master", s.handleSessionSaveAsMaster)
	mux.HandleFunc("POST /api/editor/sessions/{id}/tailored-resume", s.handleSessionCreateTailored)
	mux.HandleFunc("GET /api/editor/sessions/{id}/analysis", s.handleSessionAnalysis)

	// Suggestion cards
	mux.HandleFunc("GET /api/editor/sessions/{id}/cards", s.handleListCards)
	mux.HandleFunc("POST /api/editor/sessions/{id}/cards", s.handleAddCard)
	mux.HandleFunc("POST /api/editor/sessions/{id}/cards/from-analysis", s.handleCardsFromAnalysis)
	mux.HandleFunc("POST /api/editor/sessions/{id}/cards/{cardId}/generate", s.handleGenerateCard)
	mux.HandleFunc("POST /api/editor/sessions/{id}/cards/{cardId}/accept", s.handleAcceptCard)
	mux.HandleFunc("POST /api/editor/sessions/{id}/cards/{cardId}/reject", s.handleRejectCard)

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	s.logger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.sessions.Stop()
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Printf("Error closing redis client: %v", err)
		}
	}
	s.logger.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		s.logger.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
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
		s.logger.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
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
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit
// information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.logger.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
