package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
)

const defaultIngestBatchSize = 100

// IngestUseCase loads knowledge-base files into the vector collection.
type IngestUseCase struct {
	source     ports.DocumentSource
	extractors map[string]ports.TextExtractor
	chunker    ports.Chunker
	embedder   ports.Embedder
	index      ports.ChunkIndexer
	registry   ports.DocumentRegistry
	logger     *slog.Logger
}

// NewIngestUseCase wires ingestion. extractors is keyed by lowercase file
// extension including the dot. registry may be nil.
func NewIngestUseCase(
	source ports.DocumentSource,
	extractors map[string]ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.ChunkIndexer,
	registry ports.DocumentRegistry,
	logger *slog.Logger,
) *IngestUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUseCase{
		source:     source,
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		index:      index,
		registry:   registry,
		logger:     logger,
	}
}

func (uc *IngestUseCase) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	if strings.TrimSpace(req.Path) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest", errors.New("path is required"))
	}
	if req.BatchSize <= 0 {
		req.BatchSize = defaultIngestBatchSize
	}

	if req.Reset {
		if err := uc.index.ResetCollection(ctx); err != nil {
			return nil, fmt.Errorf("reset collection: %w", err)
		}
		uc.logger.Info("collection_reset")
	}

	sources, err := uc.source.List(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	report := &domain.IngestReport{}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		chunkCount, err := uc.ingestOne(ctx, src, req)
		switch {
		case err == nil:
			report.Documents++
			report.Chunks += chunkCount
		case domain.IsKind(err, domain.ErrUnsupported) || domain.IsKind(err, domain.ErrInvalidInput):
			uc.logger.Warn("ingest_skipped", "path", src.Path, "reason", err)
			report.Skipped = append(report.Skipped, domain.SkippedDocument{Path: src.Path, Reason: err.Error()})
		default:
			return report, fmt.Errorf("ingest %s: %w", src.Path, err)
		}
	}

	uc.logger.Info("ingest_completed",
		"documents", report.Documents,
		"chunks", report.Chunks,
		"skipped", len(report.Skipped),
	)
	return report, nil
}

func (uc *IngestUseCase) ingestOne(ctx context.Context, src domain.IngestSource, req domain.IngestRequest) (int, error) {
	ext := strings.ToLower(filepath.Ext(src.Path))
	extractor, ok := uc.extractors[ext]
	if !ok {
		return 0, domain.WrapError(domain.ErrUnsupported, "select extractor", fmt.Errorf("unsupported file type %q", ext))
	}

	text, err := extractor.Extract(ctx, src.Path)
	if err != nil {
		return 0, fmt.Errorf("extract text: %w", err)
	}
	pieces := uc.chunker.Split(text)
	if len(pieces) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("no text extracted"))
	}

	metadata := baseMetadata(src, req)
	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         uuid.NewString(),
		Filename:   filepath.Base(src.Path),
		SourcePath: src.Path,
		Category:   fmt.Sprint(metadata["category"]),
		Status:     domain.StatusProcessing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.register(ctx, doc); err != nil {
		return 0, err
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunkMeta := maps.Clone(metadata)
		chunkMeta["chunk_id"] = i
		chunkMeta["chunk_size"] = utf8.RuneCountInString(piece)
		chunks[i] = domain.Chunk{Content: piece, Metadata: chunkMeta}
	}

	if err := uc.indexInBatches(ctx, doc, chunks, req.BatchSize); err != nil {
		if failErr := uc.markFailed(ctx, doc.ID, err); failErr != nil {
			return 0, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return 0, err
	}
	if uc.registry != nil {
		if err := uc.registry.MarkIndexed(ctx, doc.ID, len(chunks)); err != nil {
			return 0, fmt.Errorf("mark document indexed: %w", err)
		}
	}

	uc.logger.Info("document_indexed", "document_id", doc.ID, "filename", doc.Filename, "chunks", len(chunks))
	return len(chunks), nil
}

func (uc *IngestUseCase) indexInBatches(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, batchSize int) error {
	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}
		vectors, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embed chunks: vectors/chunks mismatch: %d/%d", len(vectors), len(batch))
		}
		if err := uc.index.IndexChunks(ctx, doc, batch, vectors); err != nil {
			return fmt.Errorf("index chunks in vector db: %w", err)
		}
		uc.logger.Debug("batch_indexed", "document_id", doc.ID, "from", start, "to", end)
	}
	return nil
}

func (uc *IngestUseCase) register(ctx context.Context, doc *domain.Document) error {
	if uc.registry == nil {
		return nil
	}
	if err := uc.registry.Create(ctx, doc); err != nil {
		return fmt.Errorf("register document: %w", err)
	}
	return nil
}

func (uc *IngestUseCase) markFailed(ctx context.Context, documentID string, cause error) error {
	if uc.registry == nil {
		return nil
	}
	return uc.registry.UpdateStatus(ctx, documentID, domain.StatusFailed, cause.Error())
}

func baseMetadata(src domain.IngestSource, req domain.IngestRequest) map[string]any {
	metadata := map[string]any{
		"category":         domain.DefaultCategory,
		"ingestion_source": "file_upload",
	}
	maps.Copy(metadata, req.Metadata)
	if req.Category != "" {
		metadata["category"] = req.Category
	}
	maps.Copy(metadata, src.Metadata)
	metadata["source"] = filepath.Base(src.Path)
	return metadata
}
