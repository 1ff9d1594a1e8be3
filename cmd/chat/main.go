// Package main implements an interactive console for the advisor: one
// local conversation against the live index and model.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/AdvisorAI/advisor-mvp/engine/domain"
	"github.com/AdvisorAI/advisor-mvp/engine/rag"
	"github.com/AdvisorAI/advisor-mvp/engine/semantic"
	"github.com/AdvisorAI/advisor-mvp/pkg/config"
	"github.com/AdvisorAI/advisor-mvp/pkg/llm/provider"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiKey, err := cfg.LLM.APIKey()
	if err != nil {
		return err
	}
	embedder, chatter, err := provider.New(provider.Opts{
		Provider:   cfg.LLM.Provider,
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     apiKey,
		EmbedModel: cfg.LLM.EmbedModel,
		ChatModel:  cfg.LLM.ChatModel,
	})
	if err != nil {
		return err
	}

	store, err := semantic.New(cfg.Qdrant.Addr, cfg.Qdrant.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	svc := rag.New(rag.Deps{
		Embedder: embedder,
		Searcher: store,
		Chatter:  chatter,
		Logger:   logger,
	}, rag.Options{
		TopK:          cfg.Retrieval.TopK,
		HistoryWindow: cfg.Retrieval.HistoryWindow,
		Temperature:   &cfg.Retrieval.Temperature,
		MaxTokens:     cfg.Retrieval.MaxTokens,
	})

	repl(ctx, svc)
	return nil
}

func repl(ctx context.Context, svc *rag.Service) {
	prompt := color.New(color.FgGreen, color.Bold).SprintFunc()
	reply := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Println(prompt("AI tool advisor"))
	fmt.Println("Ask about AI tools. Commands: /filter free,paid  /reset  /sources  /quit")
	fmt.Println()

	conv := rag.NewConversation()
	var filter domain.PricingFilter
	var lastSources []rag.Source

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt("You: "))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return
		case line == "/reset":
			conv.Reset()
			filter = nil
			lastSources = nil
			fmt.Println(dim("conversation cleared"))
			continue
		case line == "/sources":
			if len(lastSources) == 0 {
				fmt.Println(dim("no sources yet"))
				continue
			}
			for _, s := range lastSources {
				fmt.Printf("  %s (%s) %s %s\n", s.Name, s.Pricing, s.Website, dim(fmt.Sprintf("score=%.2f", s.Score)))
			}
			continue
		case strings.HasPrefix(line, "/filter"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "/filter"))
			if raw == "" {
				filter = nil
				fmt.Println(dim("filter cleared"))
				continue
			}
			filter = domain.ParseFilter(strings.Split(raw, ","))
			fmt.Println(dim(fmt.Sprintf("filter: %v", filter)))
			continue
		}

		answer, err := svc.Answer(ctx, conv, line, filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		lastSources = answer.Sources

		fmt.Print(reply("Advisor: "))
		fmt.Println(answer.Text)
		if len(answer.Sources) > 0 {
			names := make([]string, len(answer.Sources))
			for i, s := range answer.Sources {
				names[i] = s.Name
			}
			fmt.Println(dim("sources: " + strings.Join(names, ", ")))
		}
		fmt.Println()
	}
}
