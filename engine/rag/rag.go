// Package rag answers catalog questions: embed the question, retrieve the
// closest documents under the caller's pricing filter, assemble a grounded
// prompt with bounded chat history and generate the reply.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdvisorAI/advisor-mvp/engine/domain"
	"github.com/AdvisorAI/advisor-mvp/engine/semantic"
	"github.com/AdvisorAI/advisor-mvp/engine/taxonomy"
	"github.com/AdvisorAI/advisor-mvp/pkg/fn"
	"github.com/AdvisorAI/advisor-mvp/pkg/llm"
)

// Searcher is the vector-index query boundary.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, k int, filter domain.PricingFilter) ([]semantic.Hit, error)
}

// Enricher surfaces sibling tools from the category graph.
type Enricher interface {
	RelatedTools(ctx context.Context, category string, limit int) ([]taxonomy.Tool, error)
}

// Options tunes the query pipeline. Zero values fall back to defaults.
// Temperature is a pointer so an explicit 0 (deterministic sampling) is
// distinguishable from unset.
type Options struct {
	TopK          int
	HistoryWindow int
	MaxRelated    int
	Model         string
	Temperature   *float32
	MaxTokens     int
	SystemPrompt  string
	SearchTimeout time.Duration
}

const defaultTemperature float32 = 0.2

// DefaultOptions are the production settings.
func DefaultOptions() Options {
	return Options{
		TopK:          4,
		HistoryWindow: 8,
		MaxRelated:    3,
		MaxTokens:     700,
		SearchTimeout: 5 * time.Second,
	}
}

func (o Options) temperature() float32 {
	if o.Temperature != nil {
		return *o.Temperature
	}
	return defaultTemperature
}

const defaultSystemPrompt = `You are an assistant that recommends AI tools from a curated catalog.
Answer using only the catalog entries provided below. When you recommend a
tool, name it and mention its pricing model. If no entry fits the question,
say so instead of inventing tools.`

// Deps wires a Service. Enricher is optional.
type Deps struct {
	Embedder llm.Embedder
	Searcher Searcher
	Chatter  llm.Chatter
	Enricher Enricher
	Logger   *slog.Logger
}

// Service runs the question-answering pipeline.
type Service struct {
	deps Deps
	opts Options
}

// New creates a Service, filling unset options from DefaultOptions.
func New(deps Deps, opts Options) *Service {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = def.HistoryWindow
	}
	if opts.MaxRelated <= 0 {
		opts.MaxRelated = def.MaxRelated
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaultSystemPrompt
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = def.SearchTimeout
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps, opts: opts}
}

// Source is a citation for one retrieved document.
type Source struct {
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Pricing  string  `json:"pricing"`
	Website  string  `json:"website,omitempty"`
	Score    float32 `json:"score"`
}

// Answer is one grounded reply.
type Answer struct {
	Text       string   `json:"text"`
	Sources    []Source `json:"sources"`
	Model      string   `json:"model,omitempty"`
	TokensUsed int      `json:"tokens_used,omitempty"`
}

// Retrieve embeds the question and returns the top-k index hits under the
// pricing filter.
func (s *Service) Retrieve(ctx context.Context, question string, k int, filter domain.PricingFilter) ([]semantic.Hit, error) {
	if err := domain.ValidateQuestion(question); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}
	embedding, err := s.deps.Embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %v", domain.ErrEmbedService, err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.opts.SearchTimeout)
	defer cancel()
	return s.deps.Searcher.Search(searchCtx, embedding, k, filter)
}

// Answer runs the full pipeline for one question. The conversation is
// mutated only on success: the question and reply are appended as a pair,
// so a failed call leaves the history exactly as it was.
func (s *Service) Answer(ctx context.Context, conv *Conversation, question string, filter domain.PricingFilter) (*Answer, error) {
	hits, err := s.Retrieve(ctx, question, s.opts.TopK, filter)
	if err != nil {
		return nil, err
	}

	related := s.relatedTools(ctx, hits)
	messages := s.buildMessages(conv, question, hits, related)

	resp, err := s.deps.Chatter.Chat(ctx, llm.ChatRequest{
		Messages:    messages,
		Model:       s.opts.Model,
		Temperature: s.opts.temperature(),
		MaxTokens:   s.opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	conv.AppendExchange(question, resp.Content)

	return &Answer{
		Text:       resp.Content,
		Sources:    sourcesFrom(hits),
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
	}, nil
}

// relatedTools asks the graph for siblings of the best match. Graph
// trouble degrades the answer, never fails it.
func (s *Service) relatedTools(ctx context.Context, hits []semantic.Hit) []taxonomy.Tool {
	if s.deps.Enricher == nil || len(hits) == 0 {
		return nil
	}
	category := hits[0].Doc.Meta.Category
	if category == "" {
		return nil
	}
	tools, err := s.deps.Enricher.RelatedTools(ctx, category, s.opts.MaxRelated+1)
	if err != nil {
		s.deps.Logger.Warn("related-tools lookup failed, continuing", "category", category, "error", err)
		return nil
	}
	anchor := hits[0].Doc.Meta.Name
	tools = fn.Filter(tools, func(t taxonomy.Tool) bool { return t.Name != anchor })
	if len(tools) > s.opts.MaxRelated {
		tools = tools[:s.opts.MaxRelated]
	}
	return tools
}

func (s *Service) buildMessages(conv *Conversation, question string, hits []semantic.Hit, related []taxonomy.Tool) []llm.Message {
	var b strings.Builder
	b.WriteString(s.opts.SystemPrompt)
	b.WriteString("\n\nCatalog entries:\n")
	if len(hits) == 0 {
		b.WriteString("(no catalog entries matched the question)")
	}
	for i, hit := range hits {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString(hit.Doc.Text)
	}
	if len(related) > 0 {
		b.WriteString("\n\nOther tools in the same category: ")
		names := make([]string, len(related))
		for i, t := range related {
			names[i] = t.Name
		}
		b.WriteString(strings.Join(names, ", "))
	}

	history := conv.Window(s.opts.HistoryWindow)
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: b.String()})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: question})
}

func sourcesFrom(hits []semantic.Hit) []Source {
	sources := make([]Source, len(hits))
	for i, hit := range hits {
		sources[i] = Source{
			Name:     hit.Doc.Meta.Name,
			Category: hit.Doc.Meta.Category,
			Pricing:  string(hit.Doc.Meta.Pricing),
			Website:  hit.Doc.Meta.Website,
			Score:    hit.Score,
		}
	}
	return sources
}
