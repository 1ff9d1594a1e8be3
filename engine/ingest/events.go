package ingest

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/AdvisorAI/advisor-mvp/pkg/natsutil"
)

// NATS subjects for ingestion events.
const (
	SubjectProgress = "advisor.ingest.progress"
	SubjectFailure  = "advisor.ingest.dlq"
)

// ProgressEvent is published after each successfully flushed batch.
type ProgressEvent struct {
	Batch int `json:"batch"`
	Total int `json:"total"`
	Docs  int `json:"docs"`
}

// FailureEvent is published when a batch is abandoned.
type FailureEvent struct {
	Batch  int    `json:"batch"`
	Docs   int    `json:"docs"`
	Reason string `json:"reason"`
}

// Events publishes ingestion events over NATS. A nil *Events drops
// everything, so the runner works without a broker.
type Events struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewEvents creates an Events publisher.
func NewEvents(nc *nats.Conn, logger *slog.Logger) *Events {
	if logger == nil {
		logger = slog.Default()
	}
	return &Events{nc: nc, logger: logger}
}

// Progress publishes a ProgressEvent. Publish failures are logged, never
// surfaced; events are advisory.
func (e *Events) Progress(ctx context.Context, ev ProgressEvent) {
	if e == nil || e.nc == nil {
		return
	}
	if err := natsutil.Publish(ctx, e.nc, SubjectProgress, ev); err != nil {
		e.logger.Warn("progress event dropped", "batch", ev.Batch, "error", err)
	}
}

// Failure publishes a FailureEvent, same advisory semantics as Progress.
func (e *Events) Failure(ctx context.Context, ev FailureEvent) {
	if e == nil || e.nc == nil {
		return
	}
	if err := natsutil.Publish(ctx, e.nc, SubjectFailure, ev); err != nil {
		e.logger.Warn("failure event dropped", "batch", ev.Batch, "error", err)
	}
}
