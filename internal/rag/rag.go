package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"memoir-rag/internal/config"
	"memoir-rag/internal/index"
	"memoir-rag/internal/models"
)

// ErrNoContent signals that retrieval produced nothing usable. It is a
// defined empty result, not a failure; the service answers with a canned
// response.
var ErrNoContent = errors.New("no relevant content found")

// Embedder turns a question into a query vector. Must be the same embedding
// model used at ingestion.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// LLM makes a single completion call.
type LLM interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Retriever embeds a question and returns the most relevant memoir segments,
// best first.
type Retriever struct {
	embedder Embedder
	store    index.Index
	cfg      *config.RAGConfig
}

func NewRetriever(embedder Embedder, store index.Index, cfg *config.RAGConfig) *Retriever {
	return &Retriever{embedder: embedder, store: store, cfg: cfg}
}

// Retrieve returns at most TopK segments. Segments shorter than the minimum
// length are dropped; they are chapter headers or page artifacts that slipped
// past ingestion-time filtering. Returns ErrNoContent when nothing survives.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]models.ScoredSegment, error) {
	queryVector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	var hits []models.ScoredSegment
	if r.cfg.FetchK > r.cfg.TopK {
		hits, err = r.store.SearchMMR(ctx, queryVector, r.cfg.TopK, r.cfg.FetchK, r.cfg.MMRLambda)
	} else {
		hits, err = r.store.Search(ctx, queryVector, r.cfg.TopK)
	}
	if err != nil {
		return nil, err
	}

	valid := hits[:0]
	for _, hit := range hits {
		if len(strings.TrimSpace(hit.Segment.Text)) < r.cfg.MinSegmentChars {
			continue
		}
		valid = append(valid, hit)
	}
	if len(valid) == 0 {
		log.Debug().Str("question", question).Msg("Retrieval returned no usable segments")
		return nil, ErrNoContent
	}
	return valid, nil
}

// Synthesizer formats retrieved segments plus the question into a prompt and
// asks the language model for an answer.
type Synthesizer struct {
	llm LLM
}

func NewSynthesizer(llm LLM) *Synthesizer {
	return &Synthesizer{llm: llm}
}

func (s *Synthesizer) Synthesize(ctx context.Context, question string, segments []models.Segment) (string, error) {
	var contextBlock strings.Builder
	for i, seg := range segments {
		if i > 0 {
			contextBlock.WriteString(models.ContextSeparator)
		}
		contextBlock.WriteString(fmt.Sprintf("Excerpt from %s: %s", seg.SourceLabel, seg.Text))
	}

	user := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock.String(), question)
	answer, err := s.llm.Generate(ctx, models.SystemPrompt, user)
	if err != nil {
		return "", err
	}
	return answer, nil
}
