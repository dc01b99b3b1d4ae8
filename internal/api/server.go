// Package api exposes the game engine over HTTP. Every engine rejection
// maps to a structured 4xx envelope; the transport itself adds nothing to
// game semantics.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PhanTom497/Flashport/internal/game"
)

// Server handles HTTP requests
type Server struct {
	controller *game.Controller
	logger     *log.Logger
}

// NewServer creates a new API server
func NewServer(controller *game.Controller, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)
	}
	return &Server{
		controller: controller,
		logger:     logger,
	}
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/v1/players/{player}", func(r chi.Router) {
		r.Post("/deposit", s.handleDeposit)
		r.Post("/withdraw", s.handleWithdraw)
		r.Post("/session/start", s.handleStartSession)
		r.Post("/session/end", s.handleEndSession)
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/roll", s.handleRoll)
		r.Post("/game/claim", s.handleClaim)

		r.Get("/session", s.handleGetSession)
		r.Get("/card", s.handleGetCard)
		r.Get("/rolls/drawn", s.handleGetDrawnNumbers)
		r.Get("/rolls/last", s.handleGetLastRoll)
		r.Get("/payout/potential", s.handleGetPotentialPayout)
		r.Get("/balance", s.handleGetBalance)
		r.Get("/stats", s.handleGetStats)
		r.Get("/fairness", s.handleGetFairness)
	})

	return r
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError writes a structured error response for a domain error
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := statusForError(err)
	requestID := middleware.GetReqID(r.Context())

	if status >= 500 {
		s.logger.Printf("request_failed request_id=%s path=%s error=%q", requestID, r.URL.Path, err)
	}

	s.writeJSON(w, status, EngineError{
		Type:      errType,
		Message:   err.Error(),
		Context:   map[string]interface{}{"path": r.URL.Path},
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeValidationError rejects a malformed request body
func (s *Server) writeValidationError(w http.ResponseWriter, r *http.Request, message string) {
	s.writeJSON(w, http.StatusBadRequest, EngineError{
		Type:      ErrTypeValidation,
		Message:   message,
		Context:   map[string]interface{}{"path": r.URL.Path},
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
