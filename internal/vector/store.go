package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/uche-madu/gamma-rag/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// Filter restricts a similarity search to a metadata subset.
type Filter struct {
	StockSymbol string
}

// Querier is satisfied by *pgxpool.Pool; kept minimal so tests can fake it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is the gateway to the content-addressed documents collection.
type Store struct {
	q Querier
}

func NewStore(q Querier) *Store {
	return &Store{q: q}
}

// SearchChunks returns the topK nearest chunks ordered by descending
// cosine-derived similarity, with chunk_id as a deterministic tie-break.
// No similarity floor is applied here; that policy belongs to the caller.
func (s *Store) SearchChunks(ctx context.Context, queryVec []float32, topK int, filter Filter) ([]models.ChunkResult, error) {
	if topK <= 0 {
		topK = 7
	}
	args := []any{pgvector.NewVector(queryVec), topK}

	filterSQL := ""
	if strings.TrimSpace(filter.StockSymbol) != "" {
		filterSQL = " AND d.stock_symbol = $3"
		args = append(args, filter.StockSymbol)
	}

	query := `
SELECT d.chunk_id,
       d.article_id,
       d.url,
       d.stock_symbol,
       COALESCE(d.title, '') AS title,
       COALESCE(d.published_date, '') AS published_date,
       d.content,
       1 - (d.embedding <=> $1) AS similarity
FROM documents d
WHERE d.embedding IS NOT NULL` + filterSQL + `
ORDER BY d.embedding <=> $1, d.chunk_id
LIMIT $2`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query similarity search: %w", err)
	}
	defer rows.Close()

	results := make([]models.ChunkResult, 0, topK)
	for rows.Next() {
		var r models.ChunkResult
		if err := rows.Scan(&r.ChunkID, &r.ArticleID, &r.URL, &r.StockSymbol, &r.Title, &r.PublishedDate, &r.Text, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scan chunk result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return results, nil
}

// InsertChunks stores embedded chunks. Chunk identity is derived from
// article URL and chunk index, so re-inserting chunks of a partially
// retried article is a no-op.
func (s *Store) InsertChunks(ctx context.Context, chunks []models.Chunk) error {
	for _, c := range chunks {
		_, err := s.q.Exec(ctx, `
INSERT INTO documents (chunk_id, article_id, url, stock_symbol, title, published_date, chunk_index, content, embedding)
VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), $7, $8, $9)
ON CONFLICT (chunk_id) DO NOTHING`,
			c.ChunkID, c.ArticleID, c.URL, c.StockSymbol, c.Title, c.PublishedDate, c.ChunkIndex, c.Text, pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ChunkID, err)
		}
	}
	return nil
}
