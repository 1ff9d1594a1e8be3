// Package ollama implements the llm interfaces against a local Ollama
// server, for running the advisor without a hosted provider.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AdvisorAI/advisor-mvp/pkg/llm"
)

// Defaults used when Config fields are left empty.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultEmbedModel = "nomic-embed-text"
	DefaultChatModel  = "llama3.1:8b"
	defaultTimeout    = 120 * time.Second
)

// Config configures the client.
type Config struct {
	BaseURL    string
	EmbedModel string
	ChatModel  string
	Timeout    time.Duration
}

// Client talks to the /api/embed and /api/chat endpoints.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a Client, filling in defaults for empty config fields.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed implements llm.Embedder.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch implements llm.Embedder.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var resp embedResponse
	if err := c.post(ctx, "/api/embed", embedRequest{Model: c.cfg.EmbedModel, Input: texts}, &resp); err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: got %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vec := make([]float32, len(emb))
		for j, v := range emb {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	EvalCount       int `json:"eval_count"`
	PromptEvalCount int `json:"prompt_eval_count"`
}

// Chat implements llm.Chatter.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.ChatModel
	}
	var resp chatResponse
	err := c.post(ctx, "/api/chat", chatRequest{
		Model:    model,
		Messages: req.Messages,
		Stream:   false,
		Options:  chatOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	return &llm.ChatResponse{
		Content:    resp.Message.Content,
		Model:      resp.Model,
		TokensUsed: resp.EvalCount + resp.PromptEvalCount,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
