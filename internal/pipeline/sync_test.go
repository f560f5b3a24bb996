package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/uche-madu/gamma-rag/internal/models"
	"github.com/uche-madu/gamma-rag/internal/providers"
	"github.com/uche-madu/gamma-rag/internal/util"

	"github.com/stretchr/testify/require"
)

type fakeArticles struct {
	mu       sync.Mutex
	articles []models.Article
	marked   map[int64]bool
}

func newFakeArticles(articles ...models.Article) *fakeArticles {
	return &fakeArticles{articles: articles, marked: make(map[int64]bool)}
}

func (f *fakeArticles) ListUnembedded(ctx context.Context) ([]models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Article, 0)
	for _, a := range f.articles {
		if !f.marked[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeArticles) MarkEmbedded(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked[id] = true
	return nil
}

type fakeWriter struct {
	mu     sync.Mutex
	chunks map[string]models.Chunk
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{chunks: make(map[string]models.Chunk)}
}

func (f *fakeWriter) InsertChunks(ctx context.Context, chunks []models.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range chunks {
		if _, ok := f.chunks[c.ChunkID]; !ok {
			f.chunks[c.ChunkID] = c
		}
	}
	return nil
}

type fakeEmbedder struct {
	mu      sync.Mutex
	calls   int
	failOn  string
	started chan struct{}
	release chan struct{}
}

func (f *fakeEmbedder) Embed(ctx context.Context, req providers.EmbedRequest) ([][]float32, providers.ProviderInfo, error) {
	f.mu.Lock()
	f.calls++
	started, release := f.started, f.release
	f.mu.Unlock()
	if started != nil {
		close(started)
		f.mu.Lock()
		f.started = nil
		f.mu.Unlock()
	}
	if release != nil {
		<-release
	}
	if f.failOn != "" && strings.Contains(req.Inputs[0], f.failOn) {
		return nil, providers.ProviderInfo{Name: "fake"}, errors.New("embedding temporarily unavailable")
	}
	return [][]float32{{0.1, 0.2, 0.3}}, providers.ProviderInfo{Name: "fake"}, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newSyncer(articles *fakeArticles, writer *fakeWriter, embedder *fakeEmbedder, chunkSize int) *Syncer {
	return NewSyncer(SyncerDeps{
		Articles:     articles,
		Writer:       writer,
		Embedder:     embedder,
		ChunkSize:    chunkSize,
		ChunkOverlap: 0,
		EmbedDim:     3,
	})
}

func TestSyncEmbedsArticleAndMarksIt(t *testing.T) {
	articles := newFakeArticles(models.Article{ID: 1, URL: "a", StockSymbol: "TSLA", Content: "Xsome body contentY"})
	writer := newFakeWriter()
	embedder := &fakeEmbedder{}
	s := newSyncer(articles, writer, embedder, 500)

	require.NoError(t, s.Sync(context.Background()))
	require.True(t, articles.marked[1])
	require.NotEmpty(t, writer.chunks)
	for _, c := range writer.chunks {
		require.Equal(t, "a", c.URL)
		require.Equal(t, "TSLA", c.StockSymbol)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	articles := newFakeArticles(models.Article{ID: 1, URL: "a", Content: "body text long enough"})
	writer := newFakeWriter()
	embedder := &fakeEmbedder{}
	s := newSyncer(articles, writer, embedder, 500)

	require.NoError(t, s.Sync(context.Background()))
	callsAfterFirst := embedder.callCount()
	chunksAfterFirst := len(writer.chunks)

	require.NoError(t, s.Sync(context.Background()))
	require.Equal(t, callsAfterFirst, embedder.callCount(), "second run must embed nothing")
	require.Equal(t, chunksAfterFirst, len(writer.chunks))
}

func TestSyncPartialFailureLeavesArticleForRetry(t *testing.T) {
	// Small chunk size forces multiple chunks; the second one fails.
	articles := newFakeArticles(models.Article{ID: 1, URL: "a", Content: "aaaaaaaaaaBADBADBADB"})
	writer := newFakeWriter()
	embedder := &fakeEmbedder{failOn: "BAD"}
	s := newSyncer(articles, writer, embedder, 10)

	require.NoError(t, s.Sync(context.Background()))
	require.False(t, articles.marked[1], "article with a failed chunk must not be marked")
	require.Len(t, writer.chunks, 1, "the successful chunk still lands")

	// Provider recovers; the retry completes the article without
	// re-creating the chunk that already exists.
	embedder.failOn = ""
	require.NoError(t, s.Sync(context.Background()))
	require.True(t, articles.marked[1])
	require.Len(t, writer.chunks, 2)
}

func TestSyncConcurrentTriggerIsNoOp(t *testing.T) {
	articles := newFakeArticles(models.Article{ID: 1, URL: "a", Content: "body"})
	writer := newFakeWriter()
	embedder := &fakeEmbedder{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newSyncer(articles, writer, embedder, 500)

	done := make(chan error, 1)
	go func() { done <- s.Sync(context.Background()) }()

	select {
	case <-embedder.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first run never reached the embedder")
	}

	require.ErrorIs(t, s.Sync(context.Background()), util.ErrSyncInProgress)

	close(embedder.release)
	require.NoError(t, <-done)
	require.True(t, articles.marked[1])
}

func TestSyncEmptyContentIsNotRetriedForever(t *testing.T) {
	articles := newFakeArticles(models.Article{ID: 1, URL: "a", Content: "   "})
	writer := newFakeWriter()
	embedder := &fakeEmbedder{}
	s := newSyncer(articles, writer, embedder, 500)

	require.NoError(t, s.Sync(context.Background()))
	require.True(t, articles.marked[1])
	require.Zero(t, embedder.callCount())
	require.Empty(t, writer.chunks)
}

func TestChunkIDDeterministic(t *testing.T) {
	require.Equal(t, ChunkID("a", 0), ChunkID("a", 0))
	require.NotEqual(t, ChunkID("a", 0), ChunkID("a", 1))
	require.NotEqual(t, ChunkID("a", 0), ChunkID("b", 0))
}
