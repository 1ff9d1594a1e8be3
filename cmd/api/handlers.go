package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AdvisorAI/advisor-mvp/engine/domain"
	"github.com/AdvisorAI/advisor-mvp/engine/rag"
	"github.com/AdvisorAI/advisor-mvp/engine/semantic"
	"github.com/AdvisorAI/advisor-mvp/pkg/metrics"
	"github.com/AdvisorAI/advisor-mvp/pkg/resilience"
)

// ragService is the slice of rag.Service the handlers need.
type ragService interface {
	Answer(ctx context.Context, conv *rag.Conversation, question string, filter domain.PricingFilter) (*rag.Answer, error)
	Retrieve(ctx context.Context, question string, k int, filter domain.PricingFilter) ([]semantic.Hit, error)
}

// categoryLister exposes the catalog graph's category names; nil when no
// graph is configured.
type categoryLister interface {
	Categories(ctx context.Context) ([]string, error)
}

type server struct {
	rag        ragService
	sessions   *sessionStore
	categories categoryLister
	logger     *slog.Logger

	queries *metrics.Counter
	failed  *metrics.Counter
	latency *metrics.Histogram
}

func newServer(ragSvc ragService, sessions *sessionStore, categories categoryLister, reg *metrics.Registry, logger *slog.Logger) *server {
	return &server{
		rag:        ragSvc,
		sessions:   sessions,
		categories: categories,
		logger:     logger,
		queries:    reg.Counter("advisor_queries_total", "questions answered"),
		failed:     reg.Counter("advisor_query_errors_total", "questions that failed"),
		latency:    reg.Histogram("advisor_answer_seconds", "end-to-end answer latency", nil),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.len(),
	})
}

// handleCategories lists the category names known to the catalog graph,
// the same values the original UI offered for filter population. Without
// a graph the list is empty rather than an error.
func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if s.categories != nil {
		var err error
		names, err = s.categories.Categories(r.Context())
		if err != nil {
			s.respondError(w, err)
			return
		}
		if names == nil {
			names = []string{}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": names})
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	SessionID string   `json:"session_id"`
	Question  string   `json:"question"`
	Pricing   []string `json:"pricing,omitempty"`
}

// chatResponse is the JSON reply.
type chatResponse struct {
	SessionID string       `json:"session_id"`
	Answer    string       `json:"answer"`
	Sources   []rag.Source `json:"sources"`
	Model     string       `json:"model,omitempty"`
	Tokens    int          `json:"tokens_used,omitempty"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, conv := s.sessions.get(req.SessionID)
	start := time.Now()
	answer, err := s.rag.Answer(r.Context(), conv, req.Question, domain.ParseFilter(req.Pricing))
	s.latency.Since(start)
	if err != nil {
		s.failed.Inc()
		s.respondError(w, err)
		return
	}
	s.queries.Inc()

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: id,
		Answer:    answer.Text,
		Sources:   answer.Sources,
		Model:     answer.Model,
		Tokens:    answer.TokensUsed,
	})
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	s.sessions.reset(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"session_id": req.SessionID, "status": "reset"})
}

// searchRequest is the JSON body for POST /api/search: retrieval only,
// no generation and no session.
type searchRequest struct {
	Question string   `json:"question"`
	Pricing  []string `json:"pricing,omitempty"`
	K        int      `json:"k,omitempty"`
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.K == 0 {
		req.K = 4
	}

	hits, err := s.rag.Retrieve(r.Context(), req.Question, req.K, domain.ParseFilter(req.Pricing))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

// respondError maps pipeline errors onto HTTP statuses. Validation
// problems carry their detail; upstream failures stay opaque.
func (s *server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrIndexNotFound):
		s.logger.Error("index missing", "err", err)
		writeError(w, http.StatusServiceUnavailable, "index not built yet")
	case errors.Is(err, resilience.ErrCircuitOpen):
		writeError(w, http.StatusServiceUnavailable, "generation temporarily unavailable")
	case errors.Is(err, domain.ErrEmbedService), errors.Is(err, domain.ErrGeneration):
		s.logger.Error("upstream llm failure", "err", err)
		writeError(w, http.StatusBadGateway, "upstream model error")
	default:
		s.logger.Error("query failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
