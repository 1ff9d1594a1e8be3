// Package provider constructs the configured LLM clients.
package provider

import (
	"fmt"

	"github.com/AdvisorAI/advisor-mvp/pkg/llm"
	"github.com/AdvisorAI/advisor-mvp/pkg/llm/ollama"
	"github.com/AdvisorAI/advisor-mvp/pkg/llm/openai"
)

// Opts selects and configures a provider.
type Opts struct {
	// Provider is "openai" or "ollama".
	Provider   string
	BaseURL    string
	APIKey     string
	EmbedModel string
	ChatModel  string
}

// New returns the embedder and chatter for the chosen provider.
func New(opts Opts) (llm.Embedder, llm.Chatter, error) {
	switch opts.Provider {
	case "", "openai":
		c := openai.New(openai.Config{
			BaseURL:    opts.BaseURL,
			APIKey:     opts.APIKey,
			EmbedModel: opts.EmbedModel,
			ChatModel:  opts.ChatModel,
		})
		return c, c, nil
	case "ollama":
		c := ollama.New(ollama.Config{
			BaseURL:    opts.BaseURL,
			EmbedModel: opts.EmbedModel,
			ChatModel:  opts.ChatModel,
		})
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}
