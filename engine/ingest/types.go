package ingest

import "github.com/AdvisorAI/advisor-mvp/engine/domain"

// Batch is one group of documents embedded and flushed together.
type Batch struct {
	Index int
	Docs  []domain.Document
}

// EmbeddedBatch is a batch with its embeddings, index-aligned with Docs.
type EmbeddedBatch struct {
	Batch
	Embeddings [][]float32
}

// Summary reports what one ingestion run accomplished.
type Summary struct {
	Docs    int `json:"docs"`
	Skipped int `json:"skipped"`
	Batches int `json:"batches"`
}
