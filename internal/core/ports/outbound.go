package ports

import (
	"context"
	"time"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex runs similarity search over the knowledge base.
// Scores are higher-is-better similarities.
type VectorIndex interface {
	SearchWithScore(ctx context.Context, query string, k int, filter map[string]any) ([]domain.RetrievedChunk, error)
	CollectionStats(ctx context.Context) (domain.CollectionStats, error)
}

// ChunkIndexer writes embedded chunks into the vector collection.
type ChunkIndexer interface {
	IndexChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, vectors [][]float32) error
	ResetCollection(ctx context.Context) error
}

// TextGenerator produces completions from a local model.
type TextGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
	Health(ctx context.Context) bool
	ModelName() string
}

// TranslationBackend translates text between ISO-639-1 languages.
type TranslationBackend interface {
	Translate(ctx context.Context, text string, source, target domain.LanguageCode) (string, error)
}

// TranslationCache memoizes backend translations.
type TranslationCache interface {
	Get(ctx context.Context, source, target domain.LanguageCode, text string) (string, bool, error)
	Set(ctx context.Context, source, target domain.LanguageCode, text, translated string) error
}

// PipelineObserver receives query and translation outcomes for metrics.
type PipelineObserver interface {
	ObserveQuery(outcome domain.QueryOutcome, sources int, duration time.Duration)
	ObserveTranslation(direction, outcome string)
}

// DocumentSource resolves a file, directory or manifest into ingestable sources.
type DocumentSource interface {
	List(ctx context.Context, root string) ([]domain.IngestSource, error)
}

// TextExtractor extracts plain text from a source file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Chunker splits text into semantically usable chunks.
type Chunker interface {
	Split(text string) []string
}

// DocumentRegistry persists ingestion state per source document.
type DocumentRegistry interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	MarkIndexed(ctx context.Context, id string, chunkCount int) error
}
