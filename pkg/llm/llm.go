// Package llm defines the embedding and chat-completion client boundaries.
// The remote providers behind them are black boxes; implementations live in
// the openai and ollama subpackages.
package llm

import "context"

// Embedder produces fixed-dimension vectors for text.
type Embedder interface {
	// Embed embeds a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds texts in one request, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Message is one turn of a chat-completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest is an ordered message list plus generation parameters.
type ChatRequest struct {
	Messages    []Message
	Model       string // empty means the client's default
	Temperature float32
	MaxTokens   int
}

// ChatResponse is the generated reply.
type ChatResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Chatter generates a chat completion.
type Chatter interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
