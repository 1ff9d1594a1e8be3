// Package main implements the catalog ingestion job: CSV in, vector
// index out.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"

	"github.com/AdvisorAI/advisor-mvp/engine/catalog"
	"github.com/AdvisorAI/advisor-mvp/engine/domain"
	"github.com/AdvisorAI/advisor-mvp/engine/ingest"
	"github.com/AdvisorAI/advisor-mvp/engine/semantic"
	"github.com/AdvisorAI/advisor-mvp/engine/taxonomy"
	"github.com/AdvisorAI/advisor-mvp/pkg/config"
	"github.com/AdvisorAI/advisor-mvp/pkg/fn"
	"github.com/AdvisorAI/advisor-mvp/pkg/llm"
	"github.com/AdvisorAI/advisor-mvp/pkg/llm/provider"
	"github.com/AdvisorAI/advisor-mvp/pkg/metrics"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	csvPath := flag.String("csv", "ai_tools.csv", "path to the catalog CSV")
	configPath := flag.String("config", "", "path to config.yaml")
	keep := flag.Bool("keep", false, "keep the existing collection instead of rebuilding it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, *csvPath, *keep, logger); err != nil {
		switch {
		case errors.Is(err, domain.ErrDataLoad):
			logger.Error("catalog unreadable, nothing ingested", "err", err)
		case errors.Is(err, domain.ErrEmbedService):
			logger.Error("embedding service failed, run again to finish the rebuild", "err", err)
		default:
			logger.Error("ingest failed", "err", err)
		}
		os.Exit(1)
	}
}

func run(cfg config.Config, csvPath string, keep bool, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()
	reg.ServeAsync(cfg.Metrics.Port)

	records, err := catalog.Load(csvPath)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "path", csvPath, "records", len(records))

	apiKey, err := cfg.LLM.APIKey()
	if err != nil {
		return err
	}
	embedder, _, err := provider.New(provider.Opts{
		Provider:   cfg.LLM.Provider,
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     apiKey,
		EmbedModel: cfg.LLM.EmbedModel,
		ChatModel:  cfg.LLM.ChatModel,
	})
	if err != nil {
		return err
	}
	embedder = llm.WithRetry(embedder, fn.DefaultRetry)

	store, err := semantic.New(cfg.Qdrant.Addr, cfg.Qdrant.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	if keep {
		err = store.EnsureCollection(ctx, cfg.Qdrant.Dims)
	} else {
		err = store.Recreate(ctx, cfg.Qdrant.Dims)
	}
	if err != nil {
		return err
	}

	var graph ingest.Grapher
	if cfg.Neo4j.URI != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URI,
			neo4j.BasicAuth(cfg.Neo4j.User, cfg.Neo4j.Password, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(ctx)
		graph = taxonomy.New(driver)
	}

	var events *ingest.Events
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			logger.Warn("nats unavailable, ingest events disabled", "err", err)
		} else {
			defer nc.Drain()
			events = ingest.NewEvents(nc, logger)
		}
	}

	runner := ingest.NewRunner(ingest.Deps{
		Embedder: embedder,
		Store:    store,
		Graph:    graph,
		Events:   events,
		Limiter:  rate.NewLimiter(rate.Limit(2), 4), // embed batches per second
		Logger:   logger,
		Metrics:  reg,
	})

	start := time.Now()
	sum, err := runner.Run(ctx, records)
	if err != nil {
		return err
	}

	count, countErr := store.Count(ctx)
	if countErr != nil {
		logger.Warn("could not confirm index size", "err", countErr)
	}
	logger.Info("ingest complete",
		"docs", sum.Docs,
		"skipped", sum.Skipped,
		"batches", sum.Batches,
		"indexed", count,
		"took", time.Since(start),
	)
	return nil
}
