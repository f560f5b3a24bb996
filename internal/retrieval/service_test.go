package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/uche-madu/gamma-rag/internal/models"
	"github.com/uche-madu/gamma-rag/internal/providers"
	"github.com/uche-madu/gamma-rag/internal/vector"

	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, req providers.EmbedRequest) ([][]float32, providers.ProviderInfo, error) {
	if s.err != nil {
		return nil, providers.ProviderInfo{Name: "stub"}, s.err
	}
	return [][]float32{{1, 0, 0}}, providers.ProviderInfo{Name: "stub"}, nil
}

type stubSearcher struct {
	results   []models.ChunkResult
	err       error
	gotTopK   int
	gotFilter vector.Filter
}

func (s *stubSearcher) SearchChunks(ctx context.Context, queryVec []float32, topK int, filter vector.Filter) ([]models.ChunkResult, error) {
	s.gotTopK = topK
	s.gotFilter = filter
	return s.results, s.err
}

func result(id string, sim float64) models.ChunkResult {
	return models.ChunkResult{ChunkID: id, Similarity: sim}
}

func TestRetrieveFiltersBelowFloor(t *testing.T) {
	searcher := &stubSearcher{results: []models.ChunkResult{
		result("a", 0.95),
		result("b", 0.79),
		result("c", 0.80),
	}}
	svc := NewService(&stubEmbedder{}, searcher, 7, 0.8, 3, nil)

	got, err := svc.Retrieve(context.Background(), "outlook for TSLA", vector.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		require.GreaterOrEqual(t, r.Similarity, 0.8)
	}
	require.Equal(t, 7, searcher.gotTopK)
}

func TestRetrieveOrdersBySimilarityThenChunkID(t *testing.T) {
	searcher := &stubSearcher{results: []models.ChunkResult{
		result("z", 0.9),
		result("a", 0.9),
		result("m", 0.95),
	}}
	svc := NewService(&stubEmbedder{}, searcher, 7, 0.8, 3, nil)

	got, err := svc.Retrieve(context.Background(), "earnings", vector.Filter{})
	require.NoError(t, err)
	require.Equal(t, []string{"m", "a", "z"}, []string{got[0].ChunkID, got[1].ChunkID, got[2].ChunkID})
}

func TestRetrieveEmptyResultIsNotAnError(t *testing.T) {
	svc := NewService(&stubEmbedder{}, &stubSearcher{}, 7, 0.8, 3, nil)

	got, err := svc.Retrieve(context.Background(), "obscure query", vector.Filter{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRetrievePropagatesEmbedFailure(t *testing.T) {
	embedErr := errors.New("provider down")
	svc := NewService(&stubEmbedder{err: embedErr}, &stubSearcher{}, 7, 0.8, 3, nil)

	_, err := svc.Retrieve(context.Background(), "query", vector.Filter{})
	require.ErrorIs(t, err, embedErr)
}

func TestRetrievePassesSymbolFilterThrough(t *testing.T) {
	searcher := &stubSearcher{}
	svc := NewService(&stubEmbedder{}, searcher, 7, 0.8, 3, nil)

	_, err := svc.Retrieve(context.Background(), "query", vector.Filter{StockSymbol: "NVDA"})
	require.NoError(t, err)
	require.Equal(t, "NVDA", searcher.gotFilter.StockSymbol)
}
