package qdrant

import (
	"context"
	"fmt"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
)

// Index embeds query text and searches the collection, satisfying
// ports.VectorIndex and ports.ChunkIndexer.
type Index struct {
	client   *Client
	embedder ports.Embedder
}

func NewIndex(client *Client, embedder ports.Embedder) *Index {
	return &Index{client: client, embedder: embedder}
}

func (i *Index) SearchWithScore(ctx context.Context, query string, k int, filter map[string]any) ([]domain.RetrievedChunk, error) {
	vector, err := i.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	chunks, err := i.client.Search(ctx, vector, k, filter)
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", i.client.Collection(), err)
	}
	return chunks, nil
}

func (i *Index) CollectionStats(ctx context.Context) (domain.CollectionStats, error) {
	return i.client.CollectionStats(ctx)
}

func (i *Index) IndexChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, vectors [][]float32) error {
	return i.client.IndexChunks(ctx, doc, chunks, vectors)
}

func (i *Index) ResetCollection(ctx context.Context) error {
	return i.client.ResetCollection(ctx)
}
