package chromemdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"memoir-rag/internal/index"
	"memoir-rag/internal/models"
)

const compress = false

// Store is the chromem-go backed embedding index. The collection is rebuilt
// from scratch at ingestion and read-only at query time.
type Store struct {
	db            *chromem.DB
	collection    *chromem.Collection
	name          string
	dbPath        string
	encryptionKey string
}

// NewStore opens (or creates) the persistent database at dbPath and binds the
// named collection. With inMemory set, nothing touches disk; tests use that.
func NewStore(dbPath, collectionName string, inMemory bool, encryptionKey string) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}

	c, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	return &Store{
		db:            db,
		collection:    c,
		name:          collectionName,
		dbPath:        dbPath,
		encryptionKey: encryptionKey,
	}, nil
}

// Replace drops any prior contents and stores the given records.
func (s *Store) Replace(ctx context.Context, records []models.EmbeddingRecord) error {
	if _, ok := s.db.ListCollections()[s.name]; ok {
		if err := s.db.DeleteCollection(s.name); err != nil {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
	}
	c, err := s.db.GetOrCreateCollection(s.name, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}
	s.collection = c

	docs := make([]chromem.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, chromem.Document{
			ID:        rec.ID,
			Content:   rec.Segment.Text,
			Metadata:  map[string]string{"source": rec.Segment.SourceLabel},
			Embedding: rec.Vector,
		})
	}
	if len(docs) == 0 {
		return nil
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Search returns the k nearest segments by similarity, best first.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]models.ScoredSegment, error) {
	results, err := s.query(ctx, query, k)
	if err != nil {
		return nil, err
	}
	segments := make([]models.ScoredSegment, 0, len(results))
	for _, r := range results {
		segments = append(segments, models.ScoredSegment{
			Segment: resultSegment(r),
			Score:   r.Similarity,
		})
	}
	return segments, nil
}

// SearchMMR over-fetches fetchK candidates and re-ranks them for diversity.
func (s *Store) SearchMMR(ctx context.Context, query []float32, k, fetchK int, lambda float32) ([]models.ScoredSegment, error) {
	if fetchK < k {
		fetchK = k
	}
	results, err := s.query(ctx, query, fetchK)
	if err != nil {
		return nil, err
	}
	candidates := make([]index.Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, index.Candidate{
			Segment: resultSegment(r),
			Vector:  r.Embedding,
			Score:   r.Similarity,
		})
	}
	return index.RerankMMR(query, candidates, k, lambda), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

func (s *Store) query(ctx context.Context, query []float32, n int) ([]chromem.Result, error) {
	// chromem rejects nResults above the collection size
	if count := s.collection.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}
	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: query,
		NResults:       n,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}
	return results, nil
}

func resultSegment(r chromem.Result) models.Segment {
	label := r.Metadata["source"]
	if label == "" {
		label = models.FallbackChapterLabel
	}
	return models.Segment{Text: r.Content, SourceLabel: label}
}

// Export writes the collection to a single encrypted file next to the
// database directory.
func (s *Store) Export(ctx context.Context) error {
	if s.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	path := s.dbPath + "/" + s.name + ".chromem"
	if err := s.db.ExportToFile(path, compress, s.encryptionKey, s.name); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// Import restores a previously exported collection file.
func (s *Store) Import(ctx context.Context, path string) error {
	if err := s.db.ImportFromFile(path, s.encryptionKey); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	if c := s.db.GetCollection(s.name, nil); c != nil {
		s.collection = c
	}
	return nil
}
