package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AdvisorAI/advisor-mvp/engine/domain"
	"github.com/AdvisorAI/advisor-mvp/engine/rag"
	"github.com/AdvisorAI/advisor-mvp/engine/semantic"
	"github.com/AdvisorAI/advisor-mvp/pkg/metrics"
)

type stubRAG struct {
	answer      *rag.Answer
	answerErr   error
	hits        []semantic.Hit
	retrieveErr error

	gotQuestion string
	gotFilter   domain.PricingFilter
	gotK        int
}

func (s *stubRAG) Answer(_ context.Context, conv *rag.Conversation, question string, filter domain.PricingFilter) (*rag.Answer, error) {
	s.gotQuestion = question
	s.gotFilter = filter
	if s.answerErr != nil {
		return nil, s.answerErr
	}
	conv.AppendExchange(question, s.answer.Text)
	return s.answer, nil
}

func (s *stubRAG) Retrieve(_ context.Context, question string, k int, filter domain.PricingFilter) ([]semantic.Hit, error) {
	s.gotQuestion = question
	s.gotK = k
	s.gotFilter = filter
	return s.hits, s.retrieveErr
}

type stubCategories struct {
	names []string
	err   error
}

func (s *stubCategories) Categories(context.Context) ([]string, error) {
	return s.names, s.err
}

func newTestServer(stub *stubRAG) (*server, *sessionStore) {
	sessions := newSessionStore(30 * time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newServer(stub, sessions, nil, metrics.New(), logger), sessions
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", path, bytes.NewReader(data)))
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(&stubRAG{})
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestChat_Success(t *testing.T) {
	stub := &stubRAG{answer: &rag.Answer{
		Text:    "Try ToolA.",
		Sources: []rag.Source{{Name: "ToolA", Pricing: "Free"}},
		Model:   "gpt-4o-mini",
	}}
	srv, sessions := newTestServer(stub)
	h := srv.routes()

	rec := post(t, h, "/api/chat", chatRequest{Question: "image tools?", Pricing: []string{"free"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SessionID == "" {
		t.Error("missing session_id: server should mint one")
	}
	if resp.Answer != "Try ToolA." || len(resp.Sources) != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if len(stub.gotFilter) != 1 || stub.gotFilter[0] != domain.PricingFree {
		t.Errorf("filter = %+v, raw strings should be normalized", stub.gotFilter)
	}

	// Second question on the same session reuses the conversation.
	rec = post(t, h, "/api/chat", chatRequest{SessionID: resp.SessionID, Question: "and free ones?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("second call status = %d", rec.Code)
	}
	_, conv := sessions.get(resp.SessionID)
	if conv.Len() != 4 {
		t.Errorf("conversation length = %d, want 4", conv.Len())
	}
}

func TestChat_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(&stubRAG{})
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest("POST", "/api/chat", bytes.NewReader([]byte("{not json"))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.ErrInvalidArgument, http.StatusBadRequest},
		{"index missing", domain.ErrIndexNotFound, http.StatusServiceUnavailable},
		{"embed down", domain.ErrEmbedService, http.StatusBadGateway},
		{"generation down", domain.ErrGeneration, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(&stubRAG{answerErr: tc.err})
			rec := post(t, srv.routes(), "/api/chat", chatRequest{Question: "q"})
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestReset(t *testing.T) {
	stub := &stubRAG{answer: &rag.Answer{Text: "hi"}}
	srv, sessions := newTestServer(stub)
	h := srv.routes()

	rec := post(t, h, "/api/chat", chatRequest{Question: "q"})
	var resp chatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)

	rec = post(t, h, "/api/reset", map[string]string{"session_id": resp.SessionID})
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}
	if _, conv := sessions.get(resp.SessionID); conv.Len() != 0 {
		t.Error("reset should clear the conversation")
	}

	rec = post(t, h, "/api/reset", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing session_id status = %d", rec.Code)
	}
}

func TestSearch_DefaultsK(t *testing.T) {
	stub := &stubRAG{hits: []semantic.Hit{{Score: 0.9}}}
	srv, _ := newTestServer(stub)

	rec := post(t, srv.routes(), "/api/search", searchRequest{Question: "q"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.gotK != 4 {
		t.Errorf("k = %d, want default 4", stub.gotK)
	}
}

func TestCategories(t *testing.T) {
	srv, _ := newTestServer(&stubRAG{})
	srv.categories = &stubCategories{names: []string{"Image", "Text"}}

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Categories) != 2 || resp.Categories[0] != "Image" {
		t.Errorf("categories = %v", resp.Categories)
	}
}

func TestCategories_NoGraph(t *testing.T) {
	srv, _ := newTestServer(&stubRAG{})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Categories == nil || len(resp.Categories) != 0 {
		t.Errorf("categories = %#v, want empty list", resp.Categories)
	}
}

func TestSessionStore_Sweep(t *testing.T) {
	s := newSessionStore(10 * time.Minute)
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }

	idA, _ := s.get("")
	now = now.Add(5 * time.Minute)
	idB, _ := s.get("")
	now = now.Add(6 * time.Minute)

	if dropped := s.sweep(); dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if s.len() != 1 {
		t.Errorf("len = %d", s.len())
	}
	// idA expired, idB still alive
	s.mu.Lock()
	_, aAlive := s.sessions[idA]
	_, bAlive := s.sessions[idB]
	s.mu.Unlock()
	if aAlive || !bAlive {
		t.Errorf("aAlive=%v bAlive=%v", aAlive, bAlive)
	}
}
