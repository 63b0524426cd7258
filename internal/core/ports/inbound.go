package ports

import (
	"context"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

// QueryService is the inbound contract for the multilingual RAG pipeline.
// ProcessQuery never returns an error: failures are reported inside the response.
type QueryService interface {
	ProcessQuery(ctx context.Context, query domain.Query) *domain.QueryResponse
	Stats(ctx context.Context) domain.PipelineStats
}

// DocumentIngestor is the inbound contract for loading knowledge-base files.
type DocumentIngestor interface {
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error)
}
