package index

import (
	"context"

	"memoir-rag/internal/models"
)

// Index is the durable embedding store. Replace rebuilds the whole set from
// scratch; there are no incremental updates. Both search modes return results
// ordered most-to-least relevant.
type Index interface {
	Replace(ctx context.Context, records []models.EmbeddingRecord) error
	Search(ctx context.Context, query []float32, k int) ([]models.ScoredSegment, error)
	// SearchMMR over-fetches fetchK nearest neighbors and re-ranks them for
	// diversity, returning at most k.
	SearchMMR(ctx context.Context, query []float32, k, fetchK int, lambda float32) ([]models.ScoredSegment, error)
	Count(ctx context.Context) (int, error)
}

// Candidate is an over-fetched neighbor prior to re-ranking.
type Candidate struct {
	Segment models.Segment
	Vector  []float32
	Score   float32
}
