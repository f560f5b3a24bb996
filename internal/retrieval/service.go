package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/uche-madu/gamma-rag/internal/models"
	"github.com/uche-madu/gamma-rag/internal/providers"
	"github.com/uche-madu/gamma-rag/internal/vector"
)

// Searcher is the vector store gateway surface the service needs.
type Searcher interface {
	SearchChunks(ctx context.Context, queryVec []float32, topK int, filter vector.Filter) ([]models.ChunkResult, error)
}

// Service embeds a query and fetches the chunks most similar to it.
type Service struct {
	embedder providers.EmbeddingProvider
	searcher Searcher
	topK     int
	floor    float64
	dim      int
	log      *slog.Logger
}

func NewService(embedder providers.EmbeddingProvider, searcher Searcher, topK int, floor float64, dim int, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{embedder: embedder, searcher: searcher, topK: topK, floor: floor, dim: dim, log: log}
}

// Retrieve returns chunks with similarity at or above the floor, strictly
// descending by similarity with chunk ID as tie-break. An empty result is a
// valid outcome, not an error: it means no relevant grounding exists.
func (s *Service) Retrieve(ctx context.Context, query string, filter vector.Filter) ([]models.ChunkResult, error) {
	vecs, _, err := s.embedder.Embed(ctx, providers.EmbedRequest{Inputs: []string{query}, Dimension: s.dim})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed query: provider returned no vector")
	}

	matches, err := s.searcher.SearchChunks(ctx, vecs[0], s.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	kept := matches[:0]
	for _, m := range matches {
		if m.Similarity >= s.floor {
			kept = append(kept, m)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Similarity != kept[j].Similarity {
			return kept[i].Similarity > kept[j].Similarity
		}
		return kept[i].ChunkID < kept[j].ChunkID
	})

	if len(kept) == 0 {
		s.log.Debug("no grounding above similarity floor", "floor", s.floor, "candidates", len(matches))
	}
	return kept, nil
}
