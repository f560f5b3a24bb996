package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/uche-madu/gamma-rag/internal/models"
	"github.com/uche-madu/gamma-rag/internal/providers"
	"github.com/uche-madu/gamma-rag/internal/util"
)

// ArticleStore is the article-side surface of the pipeline.
type ArticleStore interface {
	ListUnembedded(ctx context.Context) ([]models.Article, error)
	MarkEmbedded(ctx context.Context, articleID int64) error
}

// ChunkWriter inserts embedded chunks into the vector store.
type ChunkWriter interface {
	InsertChunks(ctx context.Context, chunks []models.Chunk) error
}

// Syncer keeps the vector store consistent with newly scraped articles.
// Sync is idempotent and safe to trigger repeatedly: chunk identity is
// derived from article URL and offset, and an article's embedded flag only
// flips once every one of its chunks made it in.
type Syncer struct {
	articles ArticleStore
	writer   ChunkWriter
	embedder providers.EmbeddingProvider

	chunkSize    int
	chunkOverlap int
	dim          int

	log     *slog.Logger
	running atomic.Bool
}

type SyncerDeps struct {
	Articles     ArticleStore
	Writer       ChunkWriter
	Embedder     providers.EmbeddingProvider
	ChunkSize    int
	ChunkOverlap int
	EmbedDim     int
	Logger       *slog.Logger
}

func NewSyncer(deps SyncerDeps) *Syncer {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{
		articles:     deps.Articles,
		writer:       deps.Writer,
		embedder:     deps.Embedder,
		chunkSize:    deps.ChunkSize,
		chunkOverlap: deps.ChunkOverlap,
		dim:          deps.EmbedDim,
		log:          log,
	}
}

// Sync embeds every pending article. A trigger that arrives while a run is
// active is a logged no-op and returns ErrSyncInProgress; nothing queues.
func (s *Syncer) Sync(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Info("sync trigger skipped, run already in progress")
		return util.ErrSyncInProgress
	}
	defer s.running.Store(false)

	articles, err := s.articles.ListUnembedded(ctx)
	if err != nil {
		return fmt.Errorf("list unembedded articles: %w", err)
	}
	if len(articles) == 0 {
		s.log.Debug("no new articles to embed")
		return nil
	}

	embedded := 0
	for _, a := range articles {
		if err := s.syncArticle(ctx, a); err != nil {
			// Per-article failures stay isolated; the article remains
			// eligible for the next run.
			s.log.Warn("article left for retry", "url", a.URL, "err", err)
			continue
		}
		embedded++
	}
	s.log.Info("sync run complete", "articles", len(articles), "embedded", embedded)
	return nil
}

func (s *Syncer) syncArticle(ctx context.Context, a models.Article) error {
	parts := util.ChunkText(util.SanitizeText(a.Content), s.chunkSize, s.chunkOverlap)
	if len(parts) == 0 {
		// Nothing to embed; flip the flag so the article is not retried forever.
		s.log.Warn("article has no embeddable content", "url", a.URL)
		return s.articles.MarkEmbedded(ctx, a.ID)
	}

	chunks := make([]models.Chunk, 0, len(parts))
	failed := 0
	for i, text := range parts {
		vecs, _, err := s.embedder.Embed(ctx, providers.EmbedRequest{Inputs: []string{text}, Dimension: s.dim})
		if err != nil || len(vecs) == 0 {
			failed++
			s.log.Warn("chunk embedding failed, skipping", "url", a.URL, "chunk", i, "class", providers.ClassifyError(err), "err", err)
			continue
		}
		chunks = append(chunks, models.Chunk{
			ChunkID:       ChunkID(a.URL, i),
			ArticleID:     a.ID,
			URL:           a.URL,
			StockSymbol:   a.StockSymbol,
			Title:         a.Title,
			PublishedDate: a.PublishedDate,
			ChunkIndex:    i,
			Text:          text,
			Embedding:     vecs[0],
		})
	}

	if len(chunks) > 0 {
		if err := s.writer.InsertChunks(ctx, chunks); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d chunks failed", util.ErrPartialIngestion, failed, len(parts))
	}
	if err := s.articles.MarkEmbedded(ctx, a.ID); err != nil {
		return fmt.Errorf("mark embedded: %w", err)
	}
	return nil
}

// ChunkID derives a stable chunk identity from its article URL and offset,
// making repeated insertion idempotent.
func ChunkID(url string, index int) string {
	return util.SHA256Hex(fmt.Appendf(nil, "%s#%d", url, index))
}
