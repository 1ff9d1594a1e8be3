package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdvisorAI/advisor-mvp/pkg/llm"
)

func TestEmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req embedRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "nomic-embed-text" {
			t.Errorf("expected default model, got %q", req.Model)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs) != 2 || vecs[1][1] != 0.4 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("expected non-streaming request")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model":             "llama3.1:8b",
			"message":           map[string]string{"role": "assistant", "content": "ToolC fits."},
			"eval_count":        10,
			"prompt_eval_count": 5,
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	resp, err := c.Chat(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != "ToolC fits." || resp.TokensUsed != 15 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestPost_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error on non-200 status")
	}
}
