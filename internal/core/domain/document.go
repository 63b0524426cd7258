package domain

import "time"

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusIndexed    DocumentStatus = "indexed"
	StatusFailed     DocumentStatus = "failed"
)

const DefaultCategory = "financial_knowledge"

// Document is one knowledge-base source file registered during ingestion.
type Document struct {
	ID         string         `json:"id"`
	Filename   string         `json:"filename"`
	SourcePath string         `json:"source_path"`
	Category   string         `json:"category,omitempty"`
	ChunkCount int            `json:"chunk_count"`
	Status     DocumentStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Chunk is a slice of document text ready for embedding.
type Chunk struct {
	Content  string
	Metadata map[string]any
}

type IngestSource struct {
	Path     string
	Metadata map[string]any
}

type IngestRequest struct {
	Path      string
	Category  string
	Metadata  map[string]any
	Reset     bool
	BatchSize int
}

type SkippedDocument struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type IngestReport struct {
	Documents int               `json:"documents"`
	Chunks    int               `json:"chunks"`
	Skipped   []SkippedDocument `json:"skipped,omitempty"`
}
