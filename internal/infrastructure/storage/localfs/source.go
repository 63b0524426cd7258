package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

// Source resolves ingestion inputs on the local filesystem: a single file,
// a directory tree, or a YAML manifest listing files with metadata.
type Source struct{}

func NewSource() *Source {
	return &Source{}
}

type manifest struct {
	Category  string          `yaml:"category"`
	Metadata  map[string]any  `yaml:"metadata"`
	Documents []manifestEntry `yaml:"documents"`
}

type manifestEntry struct {
	Path     string         `yaml:"path"`
	Metadata map[string]any `yaml:"metadata"`
}

func (s *Source) List(ctx context.Context, root string) ([]domain.IngestSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		if isManifest(root) {
			return loadManifest(root)
		}
		return []domain.IngestSource{{Path: root}}, nil
	}

	var out []domain.IngestSource
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && !isManifest(path) {
			out = append(out, domain.IngestSource{Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	slices.SortFunc(out, func(a, b domain.IngestSource) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

func loadManifest(path string) ([]domain.IngestSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse manifest", err)
	}
	if len(m.Documents) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse manifest", errors.New("manifest lists no documents"))
	}

	base := filepath.Dir(path)
	out := make([]domain.IngestSource, 0, len(m.Documents))
	for i, entry := range m.Documents {
		if strings.TrimSpace(entry.Path) == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse manifest", fmt.Errorf("document %d has no path", i))
		}
		docPath := entry.Path
		if !filepath.IsAbs(docPath) {
			docPath = filepath.Join(base, docPath)
		}

		metadata := map[string]any{}
		for k, v := range m.Metadata {
			metadata[k] = v
		}
		if m.Category != "" {
			metadata["category"] = m.Category
		}
		for k, v := range entry.Metadata {
			metadata[k] = v
		}
		out = append(out, domain.IngestSource{Path: docPath, Metadata: metadata})
	}
	return out, nil
}

func isManifest(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
