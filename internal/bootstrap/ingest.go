package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/usecase"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/chunking"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/extractor/pdftext"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/extractor/plaintext"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/extractor/spreadsheet"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/repository/postgres"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/storage/localfs"
)

type extensionExtractor interface {
	ports.TextExtractor
	Extensions() []string
}

// NewIngestor builds the ingestion use case on top of the app's embedder and
// vector index. The Postgres registry is opened only when a DSN is configured.
func (a *App) NewIngestor(ctx context.Context) (*usecase.IngestUseCase, error) {
	var registry ports.DocumentRegistry
	if strings.TrimSpace(a.Config.PostgresDSN) != "" {
		db, err := postgres.OpenDB(ctx, a.Config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewDocumentRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		a.closeFns = append(a.closeFns, func() { _ = db.Close() })
		registry = repo
	}

	return usecase.NewIngestUseCase(
		localfs.NewSource(),
		extractorsByExtension(plaintext.NewExtractor(), pdftext.NewExtractor(), spreadsheet.NewExtractor()),
		chunking.NewSplitter(a.Config.ChunkSize, a.Config.ChunkOverlap),
		a.embedder,
		a.index,
		registry,
		a.logger,
	), nil
}

func extractorsByExtension(extractors ...extensionExtractor) map[string]ports.TextExtractor {
	out := make(map[string]ports.TextExtractor)
	for _, extractor := range extractors {
		for _, ext := range extractor.Extensions() {
			out[strings.ToLower(ext)] = extractor
		}
	}
	return out
}
