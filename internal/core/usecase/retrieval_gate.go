package usecase

import (
	"context"
	"fmt"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
)

// RetrievalGate fetches the top-k candidates and drops the ones scoring
// below the relevance threshold.
type RetrievalGate struct {
	index     ports.VectorIndex
	threshold float64
}

func NewRetrievalGate(index ports.VectorIndex, threshold float64) *RetrievalGate {
	return &RetrievalGate{index: index, threshold: threshold}
}

func (g *RetrievalGate) Threshold() float64 {
	return g.threshold
}

func (g *RetrievalGate) Retrieve(ctx context.Context, query string, k int, filter map[string]any) (domain.RetrievalResult, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}
	candidates, err := g.index.SearchWithScore(ctx, query, k, filter)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("search vector index: %w", err)
	}
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	kept := make([]domain.RetrievedChunk, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Score >= g.threshold {
			kept = append(kept, candidate)
		}
	}
	return domain.RetrievalResult{Chunks: kept, Considered: len(candidates)}, nil
}
