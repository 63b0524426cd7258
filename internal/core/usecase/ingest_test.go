package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
)

type sourceFake struct {
	sources []domain.IngestSource
	err     error
}

func (f *sourceFake) List(context.Context, string) ([]domain.IngestSource, error) {
	return f.sources, f.err
}

type extractorFake struct {
	texts map[string]string
	err   error
}

func (f *extractorFake) Extract(_ context.Context, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.texts[path], nil
}

type chunkerFake struct{}

func (chunkerFake) Split(text string) []string {
	var out []string
	for _, part := range strings.Split(text, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type embedderFake struct {
	batches [][]string
	err     error
	short   bool
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(context.Context, string) ([]float32, error) { return []float32{1}, nil }

type chunkIndexerFake struct {
	indexed []domain.Chunk
	docs    []string
	resets  int
	err     error
}

func (f *chunkIndexerFake) IndexChunks(_ context.Context, doc *domain.Document, chunks []domain.Chunk, _ [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc.ID)
	f.indexed = append(f.indexed, chunks...)
	return nil
}

func (f *chunkIndexerFake) ResetCollection(context.Context) error {
	f.resets++
	return nil
}

type registryFake struct {
	created  []*domain.Document
	statuses map[string]domain.DocumentStatus
	counts   map[string]int
}

func newRegistryFake() *registryFake {
	return &registryFake{statuses: map[string]domain.DocumentStatus{}, counts: map[string]int{}}
}

func (f *registryFake) Create(_ context.Context, doc *domain.Document) error {
	copyDoc := *doc
	f.created = append(f.created, &copyDoc)
	f.statuses[doc.ID] = doc.Status
	return nil
}

func (f *registryFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	for _, doc := range f.created {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (f *registryFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, _ string) error {
	f.statuses[id] = status
	return nil
}

func (f *registryFake) MarkIndexed(_ context.Context, id string, chunkCount int) error {
	f.statuses[id] = domain.StatusIndexed
	f.counts[id] = chunkCount
	return nil
}

func newIngestFixture(sources []domain.IngestSource, texts map[string]string) (*IngestUseCase, *embedderFake, *chunkIndexerFake, *registryFake) {
	embedder := &embedderFake{}
	index := &chunkIndexerFake{}
	registry := newRegistryFake()
	extractor := &extractorFake{texts: texts}
	uc := NewIngestUseCase(
		&sourceFake{sources: sources},
		map[string]ports.TextExtractor{".txt": extractor, ".pdf": extractor},
		chunkerFake{},
		embedder,
		index,
		registry,
		nil,
	)
	return uc, embedder, index, registry
}

func TestIngestIndexesChunksWithMetadata(t *testing.T) {
	uc, _, index, registry := newIngestFixture(
		[]domain.IngestSource{{Path: "kb/emi.txt", Metadata: map[string]any{"topic": "emi"}}},
		map[string]string{"kb/emi.txt": "EMI basics | EMI formula | EMI tenure"},
	)

	report, err := uc.Ingest(context.Background(), domain.IngestRequest{Path: "kb"})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if report.Documents != 1 || report.Chunks != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(index.indexed) != 3 {
		t.Fatalf("expected 3 indexed chunks, got %d", len(index.indexed))
	}

	meta := index.indexed[1].Metadata
	if meta["source"] != "emi.txt" || meta["chunk_id"] != 1 || meta["chunk_size"] != len("EMI formula") {
		t.Fatalf("unexpected chunk metadata %+v", meta)
	}
	if meta["category"] != domain.DefaultCategory || meta["ingestion_source"] != "file_upload" || meta["topic"] != "emi" {
		t.Fatalf("unexpected base metadata %+v", meta)
	}
	if index.indexed[0].Metadata["chunk_id"] != 0 {
		t.Fatalf("chunk metadata maps must not be shared")
	}

	doc := registry.created[0]
	if registry.statuses[doc.ID] != domain.StatusIndexed || registry.counts[doc.ID] != 3 {
		t.Fatalf("expected indexed status with 3 chunks, got %s/%d", registry.statuses[doc.ID], registry.counts[doc.ID])
	}
}

func TestIngestCategoryOverride(t *testing.T) {
	uc, _, index, _ := newIngestFixture(
		[]domain.IngestSource{{Path: "a.txt"}},
		map[string]string{"a.txt": "one"},
	)
	if _, err := uc.Ingest(context.Background(), domain.IngestRequest{Path: "a.txt", Category: "tax"}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if index.indexed[0].Metadata["category"] != "tax" {
		t.Fatalf("category override not applied: %+v", index.indexed[0].Metadata)
	}
}

func TestIngestBatches(t *testing.T) {
	uc, embedder, _, _ := newIngestFixture(
		[]domain.IngestSource{{Path: "a.txt"}},
		map[string]string{"a.txt": "1|2|3|4|5"},
	)
	if _, err := uc.Ingest(context.Background(), domain.IngestRequest{Path: "a.txt", BatchSize: 2}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(embedder.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(embedder.batches))
	}
	if len(embedder.batches[2]) != 1 {
		t.Fatalf("expected trailing batch of 1, got %d", len(embedder.batches[2]))
	}
}

func TestIngestSkipsUnsupportedAndEmpty(t *testing.T) {
	uc, _, index, _ := newIngestFixture(
		[]domain.IngestSource{{Path: "notes.docx"}, {Path: "empty.txt"}, {Path: "ok.txt"}},
		map[string]string{"ok.txt": "content", "empty.txt": "   "},
	)

	report, err := uc.Ingest(context.Background(), domain.IngestRequest{Path: "kb"})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if report.Documents != 1 || len(report.Skipped) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(index.indexed) != 1 {
		t.Fatalf("expected only ok.txt indexed, got %d", len(index.indexed))
	}
}

func TestIngestReset(t *testing.T) {
	uc, _, index, _ := newIngestFixture(nil, nil)
	if _, err := uc.Ingest(context.Background(), domain.IngestRequest{Path: "kb", Reset: true}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if index.resets != 1 {
		t.Fatalf("expected reset, got %d", index.resets)
	}
}

func TestIngestIndexFailureMarksDocumentFailed(t *testing.T) {
	uc, _, index, registry := newIngestFixture(
		[]domain.IngestSource{{Path: "a.txt"}},
		map[string]string{"a.txt": "one|two"},
	)
	index.err = errors.New("qdrant write failed")

	if _, err := uc.Ingest(context.Background(), domain.IngestRequest{Path: "a.txt"}); err == nil {
		t.Fatalf("expected error")
	}
	doc := registry.created[0]
	if registry.statuses[doc.ID] != domain.StatusFailed {
		t.Fatalf("expected failed status, got %s", registry.statuses[doc.ID])
	}
}

func TestIngestVectorMismatch(t *testing.T) {
	uc, embedder, _, _ := newIngestFixture(
		[]domain.IngestSource{{Path: "a.txt"}},
		map[string]string{"a.txt": "one|two"},
	)
	embedder.short = true

	_, err := uc.Ingest(context.Background(), domain.IngestRequest{Path: "a.txt"})
	if err == nil || !strings.Contains(err.Error(), "mismatch") {
		t.Fatalf("expected mismatch error, got %v", err)
	}
}

func TestIngestRequiresPath(t *testing.T) {
	uc, _, _, _ := newIngestFixture(nil, nil)
	_, err := uc.Ingest(context.Background(), domain.IngestRequest{})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
