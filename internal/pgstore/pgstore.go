package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"memoir-rag/internal/config"
	"memoir-rag/internal/index"
	"memoir-rag/internal/models"
)

// SegmentRecord is the pgvector row backing one memoir segment.
type SegmentRecord struct {
	bun.BaseModel `bun:"table:segments,alias:s"`
	ID            string `bun:"id,pk"`
	Text          string `bun:"text,notnull"`
	SourceLabel   string `bun:"source_label,notnull"`
	Embedding     Vector `bun:"embedding,notnull"`
}

// Store is the Postgres/pgvector backed embedding index. It satisfies the
// same contract as the chromem store: rebuilt wholesale at ingestion,
// read-only at query time.
type Store struct {
	db         *bun.DB
	vectorSize int
}

func NewStore(cfg *config.StoreConfig) (*Store, error) {
	dsn := cfg.PostgresDSN + "?sslmode=disable"
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.PostgresKey)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db, vectorSize: cfg.VectorSize}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Replace drops the segments table and rebuilds it with the given records.
func (s *Store) Replace(ctx context.Context, records []models.EmbeddingRecord) error {
	if _, err := s.db.NewDropTable().Model((*SegmentRecord)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to drop segments table: %w", err)
	}
	ddl := fmt.Sprintf(
		`CREATE TABLE segments (id TEXT PRIMARY KEY, text TEXT NOT NULL, source_label TEXT NOT NULL, embedding vector(%d) NOT NULL)`,
		s.vectorSize,
	)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create segments table: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	rows := make([]SegmentRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, SegmentRecord{
			ID:          rec.ID,
			Text:        rec.Segment.Text,
			SourceLabel: rec.Segment.SourceLabel,
			Embedding:   Vector(rec.Vector),
		})
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to store segments: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, query []float32, k int) ([]models.ScoredSegment, error) {
	candidates, err := s.fetch(ctx, query, k)
	if err != nil {
		return nil, err
	}
	segments := make([]models.ScoredSegment, 0, len(candidates))
	for _, c := range candidates {
		segments = append(segments, models.ScoredSegment{Segment: c.Segment, Score: c.Score})
	}
	return segments, nil
}

func (s *Store) SearchMMR(ctx context.Context, query []float32, k, fetchK int, lambda float32) ([]models.ScoredSegment, error) {
	if fetchK < k {
		fetchK = k
	}
	candidates, err := s.fetch(ctx, query, fetchK)
	if err != nil {
		return nil, err
	}
	return index.RerankMMR(query, candidates, k, lambda), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*SegmentRecord)(nil)).Count(ctx)
}

// fetch orders by pgvector cosine distance in the database, then recomputes
// the similarity client-side so scores are consistent with the chromem store.
func (s *Store) fetch(ctx context.Context, query []float32, n int) ([]index.Candidate, error) {
	if n <= 0 {
		return nil, nil
	}
	var rows []SegmentRecord
	err := s.db.NewSelect().
		Model(&rows).
		Column("id", "text", "source_label", "embedding").
		OrderExpr("embedding <=> ?::vector", Vector(query).String()).
		Limit(n).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search segments: %w", err)
	}

	candidates := make([]index.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, index.Candidate{
			Segment: models.Segment{Text: row.Text, SourceLabel: row.SourceLabel},
			Vector:  []float32(row.Embedding),
			Score:   index.Cosine(query, []float32(row.Embedding)),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}
