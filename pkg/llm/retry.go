package llm

import (
	"context"

	"github.com/AdvisorAI/advisor-mvp/pkg/fn"
)

// retryingEmbedder decorates an Embedder with the shared retry policy, so
// the policy lives in one place instead of inside each provider client.
type retryingEmbedder struct {
	next Embedder
	opts fn.RetryOpts
}

// WithRetry wraps an Embedder with retry + exponential backoff.
func WithRetry(next Embedder, opts fn.RetryOpts) Embedder {
	return &retryingEmbedder{next: next, opts: opts}
}

func (r *retryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	res := fn.Retry(ctx, r.opts, func(ctx context.Context) fn.Result[[]float32] {
		return fn.FromPair(r.next.Embed(ctx, text))
	})
	return res.Unwrap()
}

func (r *retryingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	res := fn.Retry(ctx, r.opts, func(ctx context.Context) fn.Result[[][]float32] {
		return fn.FromPair(r.next.EmbedBatch(ctx, texts))
	})
	return res.Unwrap()
}
