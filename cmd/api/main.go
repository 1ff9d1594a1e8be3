// Package main implements the advisor API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"

	"github.com/AdvisorAI/advisor-mvp/engine/rag"
	"github.com/AdvisorAI/advisor-mvp/engine/semantic"
	"github.com/AdvisorAI/advisor-mvp/engine/taxonomy"
	"github.com/AdvisorAI/advisor-mvp/pkg/config"
	"github.com/AdvisorAI/advisor-mvp/pkg/llm"
	"github.com/AdvisorAI/advisor-mvp/pkg/llm/provider"
	"github.com/AdvisorAI/advisor-mvp/pkg/metrics"
	"github.com/AdvisorAI/advisor-mvp/pkg/mid"
	"github.com/AdvisorAI/advisor-mvp/pkg/resilience"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
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

	var enricher rag.Enricher
	var categories categoryLister
	if cfg.Neo4j.URI != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URI,
			neo4j.BasicAuth(cfg.Neo4j.User, cfg.Neo4j.Password, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(ctx)
		graph := taxonomy.New(driver)
		enricher = graph
		categories = graph
	}

	breaker := resilience.NewBreaker(resilience.DefaultBreakerOpts)
	ragSvc := rag.New(rag.Deps{
		Embedder: embedder,
		Searcher: store,
		Chatter:  &guardedChatter{next: chatter, breaker: breaker},
		Enricher: enricher,
		Logger:   logger,
	}, rag.Options{
		TopK:          cfg.Retrieval.TopK,
		HistoryWindow: cfg.Retrieval.HistoryWindow,
		Temperature:   &cfg.Retrieval.Temperature,
		MaxTokens:     cfg.Retrieval.MaxTokens,
	})

	reg := metrics.New()
	reg.ServeAsync(cfg.Metrics.Port)

	sessions := newSessionStore(cfg.Server.SessionTTL.Std())
	go sessions.janitor(ctx, time.Minute, logger)

	srv := newServer(ragSvc, sessions, categories, reg, logger)
	handler := mid.Chain(srv.routes(),
		mid.Recover(logger),
		mid.OTel("advisor-api"),
		mid.Logger(logger),
		mid.CORS(cfg.Server.CORSOrigin),
		mid.Throttle(rate.NewLimiter(rate.Limit(50), 100)),
	)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}

// guardedChatter routes chat calls through a circuit breaker so a dead
// completion backend sheds load fast instead of queueing timeouts.
type guardedChatter struct {
	next    llm.Chatter
	breaker *resilience.Breaker
}

func (g *guardedChatter) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return resilience.Do(g.breaker, ctx, func(ctx context.Context) (*llm.ChatResponse, error) {
		return g.next.Chat(ctx, req)
	})
}
