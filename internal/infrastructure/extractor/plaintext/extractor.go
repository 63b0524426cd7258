package plaintext

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

const maxFileBytes = 32 << 20

// Extractor reads UTF-8 text and markdown files.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extensions() []string {
	return []string{".txt", ".md"}
}

func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxFileBytes+1))
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if len(raw) > maxFileBytes {
		return "", domain.WrapError(domain.ErrUnsupported, "read source document", fmt.Errorf("%s exceeds %d bytes", filepath.Base(path), maxFileBytes))
	}
	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrUnsupported, "read source document", fmt.Errorf("not valid utf-8: %s", filepath.Base(path)))
	}

	return strings.TrimSpace(string(raw)), nil
}
