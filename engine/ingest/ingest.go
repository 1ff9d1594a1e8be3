// Package ingest builds the vector index from catalog records. Records are
// validated, rendered into documents, embedded in batches and upserted into
// the index, with optional graph writes and progress events along the way.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/AdvisorAI/advisor-mvp/engine/catalog"
	"github.com/AdvisorAI/advisor-mvp/engine/domain"
	"github.com/AdvisorAI/advisor-mvp/engine/semantic"
	"github.com/AdvisorAI/advisor-mvp/engine/taxonomy"
	"github.com/AdvisorAI/advisor-mvp/pkg/fn"
	"github.com/AdvisorAI/advisor-mvp/pkg/llm"
	"github.com/AdvisorAI/advisor-mvp/pkg/metrics"
)

// EmbedBatchSize is how many documents go to the embedding service per call.
const EmbedBatchSize = 64

// Upserter flushes embedded documents into the vector index.
type Upserter interface {
	Upsert(ctx context.Context, records []semantic.VectorRecord) error
}

// Grapher mirrors ingested tools into the category graph.
type Grapher interface {
	SaveTools(ctx context.Context, tools []taxonomy.Tool) error
}

// Deps wires a Runner. Graph, Events, Limiter and Metrics are optional.
type Deps struct {
	Embedder  llm.Embedder
	Store     Upserter
	Graph     Grapher
	Events    *Events
	Limiter   *rate.Limiter
	Logger    *slog.Logger
	Metrics   *metrics.Registry
	BatchSize int
	Retry     fn.RetryOpts
}

// Runner executes the ingestion pipeline.
type Runner struct {
	deps  Deps
	flush fn.Stage[Batch, int]

	docs      *metrics.Counter
	batches   *metrics.Counter
	failures  *metrics.Counter
	embedTime *metrics.Histogram
}

// NewRunner builds the batch pipeline: embed with retries, then store.
func NewRunner(deps Deps) *Runner {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = EmbedBatchSize
	}
	if deps.Retry.MaxAttempts == 0 {
		deps.Retry = fn.DefaultRetry
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	r := &Runner{
		deps:      deps,
		docs:      deps.Metrics.Counter("ingest_docs_total", "documents indexed"),
		batches:   deps.Metrics.Counter("ingest_batches_total", "batches flushed"),
		failures:  deps.Metrics.Counter("ingest_failures_total", "batches abandoned"),
		embedTime: deps.Metrics.Histogram("ingest_embed_seconds", "embedding call latency", nil),
	}

	embed := fn.TracedStage("ingest.embed",
		fn.RetryStage(deps.Retry, r.embedStage()))
	tap := fn.TapStage(func(_ context.Context, eb EmbeddedBatch) {
		deps.Logger.Debug("batch embedded", "batch", eb.Index, "docs", len(eb.Docs))
	})
	store := fn.TracedStage("ingest.store",
		storeStage(deps.Store, deps.Graph, deps.Logger))
	r.flush = fn.Then(fn.Then(embed, tap), store)
	return r
}

// Run ingests the records. Invalid records are skipped and counted;
// duplicates (same derived document ID) keep their first occurrence.
// Batches are flushed in order, so on error everything already flushed
// stays in the index and the returned Summary reflects it.
func (r *Runner) Run(ctx context.Context, records []domain.ToolRecord) (Summary, error) {
	var sum Summary

	docs := make([]domain.Document, 0, len(records))
	for _, rec := range records {
		if err := domain.ValidateRecord(rec); err != nil {
			r.deps.Logger.Warn("skipping record", "name", rec.Name, "error", err)
			sum.Skipped++
			continue
		}
		docs = append(docs, catalog.Render(rec))
	}
	docs = fn.UniqueBy(docs, func(d domain.Document) string { return d.ID })

	batches := fn.Chunk(docs, r.deps.BatchSize)
	for i, chunk := range batches {
		result := r.flush(ctx, Batch{Index: i, Docs: chunk})
		if result.IsErr() {
			_, err := result.Unwrap()
			r.failures.Inc()
			r.deps.Events.Failure(ctx, FailureEvent{
				Batch:  i,
				Docs:   len(chunk),
				Reason: err.Error(),
			})
			return sum, fmt.Errorf("ingest batch %d of %d: %w", i+1, len(batches), err)
		}
		n, _ := result.Unwrap()
		sum.Docs += n
		sum.Batches++
		r.docs.Add(int64(n))
		r.batches.Inc()
		r.deps.Events.Progress(ctx, ProgressEvent{
			Batch: i,
			Total: len(batches),
			Docs:  sum.Docs,
		})
	}
	return sum, nil
}

func (r *Runner) embedStage() fn.Stage[Batch, EmbeddedBatch] {
	return func(ctx context.Context, b Batch) fn.Result[EmbeddedBatch] {
		if r.deps.Limiter != nil {
			if err := r.deps.Limiter.Wait(ctx); err != nil {
				return fn.Err[EmbeddedBatch](err)
			}
		}
		texts := fn.Map(b.Docs, func(d domain.Document) string { return d.Text })
		start := time.Now()
		vecs, err := r.deps.Embedder.EmbedBatch(ctx, texts)
		r.embedTime.Since(start)
		if err != nil {
			return fn.Err[EmbeddedBatch](fmt.Errorf("%w: batch %d: %v", domain.ErrEmbedService, b.Index, err))
		}
		if len(vecs) != len(b.Docs) {
			return fn.Err[EmbeddedBatch](fmt.Errorf("%w: batch %d: got %d vectors for %d docs",
				domain.ErrEmbedService, b.Index, len(vecs), len(b.Docs)))
		}
		return fn.Ok(EmbeddedBatch{Batch: b, Embeddings: vecs})
	}
}

func storeStage(store Upserter, graph Grapher, logger *slog.Logger) fn.Stage[EmbeddedBatch, int] {
	return func(ctx context.Context, eb EmbeddedBatch) fn.Result[int] {
		records := make([]semantic.VectorRecord, len(eb.Docs))
		for i, doc := range eb.Docs {
			records[i] = semantic.VectorRecord{
				ID:        doc.ID,
				Embedding: eb.Embeddings[i],
				Doc:       doc,
			}
		}
		if err := store.Upsert(ctx, records); err != nil {
			return fn.Err[int](err)
		}
		if graph != nil {
			tools := fn.Map(eb.Docs, taxonomy.FromDocument)
			if err := graph.SaveTools(ctx, tools); err != nil {
				logger.Warn("graph write failed, continuing", "batch", eb.Index, "error", err)
			}
		}
		return fn.Ok(len(records))
	}
}
