package storage

import (
	"context"
	"fmt"

	"github.com/uche-madu/gamma-rag/internal/models"
)

// ArticleRepo reads scraped articles and records embedding progress.
// Articles are created by the scraper; this repo only ever flips the
// embedded flag.
type ArticleRepo struct {
	db *DB
}

func NewArticleRepo(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

func (r *ArticleRepo) ListUnembedded(ctx context.Context) ([]models.Article, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT id, url, stock_symbol, COALESCE(title,''), COALESCE(author,''),
       COALESCE(published_date,''), COALESCE(content,''), embedded, scraped_at
FROM articles
WHERE embedded = FALSE
ORDER BY scraped_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list unembedded articles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Article, 0)
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.URL, &a.StockSymbol, &a.Title, &a.Author, &a.PublishedDate, &a.Content, &a.Embedded, &a.ScrapedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return out, nil
}

func (r *ArticleRepo) MarkEmbedded(ctx context.Context, articleID int64) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE articles SET embedded = TRUE WHERE id = $1`, articleID)
	if err != nil {
		return fmt.Errorf("mark article %d embedded: %w", articleID, err)
	}
	return nil
}

func (r *ArticleRepo) ListBySymbol(ctx context.Context, symbol string, limit int) ([]models.Article, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT id, url, stock_symbol, COALESCE(title,''), COALESCE(author,''),
       COALESCE(published_date,''), COALESCE(content,''), embedded, scraped_at
FROM articles
WHERE stock_symbol = $1
ORDER BY scraped_at DESC
LIMIT $2`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("list articles by symbol: %w", err)
	}
	defer rows.Close()

	out := make([]models.Article, 0, limit)
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.URL, &a.StockSymbol, &a.Title, &a.Author, &a.PublishedDate, &a.Content, &a.Embedded, &a.ScrapedAt); err != nil {
			return nil, fmt.Errorf("scan article by symbol: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
