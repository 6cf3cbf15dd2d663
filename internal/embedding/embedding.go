package embedding

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"memoir-rag/internal/config"
	"memoir-rag/internal/helper"
	"memoir-rag/internal/models"
)

// NewEmbedder builds the langchaingo embedder used for both ingestion and
// queries. Ingestion and query must share the same model; a mismatch degrades
// relevance silently.
func NewEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// EmbedSegments generates one embedding record per segment.
func EmbedSegments(ctx context.Context, embedder *embeddings.EmbedderImpl, segments []models.Segment) ([]models.EmbeddingRecord, error) {
	if len(segments) == 0 {
		log.Info().Msg("No segments to embed")
		return nil, nil
	}

	records := make([]models.EmbeddingRecord, 0, len(segments))
	for _, seg := range segments {
		vector, err := embedder.EmbedQuery(ctx, seg.Text)
		if err != nil {
			return nil, err
		}
		id, err := helper.GenerateUUID()
		if err != nil {
			return nil, err
		}
		records = append(records, models.EmbeddingRecord{
			ID:      id,
			Segment: seg,
			Vector:  vector,
		})
	}
	return records, nil
}
