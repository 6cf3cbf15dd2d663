package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"memoir-rag/internal/chromemdb"
	"memoir-rag/internal/config"
	"memoir-rag/internal/embedding"
	"memoir-rag/internal/index"
	"memoir-rag/internal/llmservice"
	"memoir-rag/internal/models"
	"memoir-rag/internal/pgstore"
	"memoir-rag/internal/rag"
)

// Retriever returns the most relevant memoir segments for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]models.ScoredSegment, error)
}

// Synthesizer turns a question plus retrieved segments into an answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, segments []models.Segment) (string, error)
}

// Speaker renders text to audio bytes.
type Speaker interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ServiceContext holds everything the ask pipeline needs. It only exists if
// startup succeeded: the index loaded and the model clients initialized. A
// nil ServiceContext means the service is not ready and stays that way for
// the process lifetime.
type ServiceContext struct {
	Retriever   Retriever
	Synthesizer Synthesizer
}

// NewServiceContext loads the embedding index and constructs the model
// clients. Called once at startup; never re-run per request.
func NewServiceContext(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	count, err := store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("embedding index at %s is empty; run the ingest command first", cfg.Store.Path)
	}
	log.Info().Int("segments", count).Str("backend", cfg.Store.Backend).Msg("Embedding index loaded")

	embedder, err := embedding.NewEmbedder(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	llm, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	return &ServiceContext{
		Retriever:   rag.NewRetriever(embedder, store, &cfg.RAG),
		Synthesizer: rag.NewSynthesizer(llm),
	}, nil
}

func openStore(cfg *config.Config) (index.Index, error) {
	switch cfg.Store.Backend {
	case "chromem":
		return chromemdb.NewStore(cfg.Store.Path, cfg.Store.Collection, false, cfg.Store.EncryptionKey)
	case "pgvector":
		return pgstore.NewStore(&cfg.Store)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
