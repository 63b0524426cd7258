package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/resilience"
)

const (
	serviceName     = "qdrant"
	metadataPayload = "metadata"
	textPayload     = "text"
)

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string) *Client {
	return NewWithExecutor(baseURL, collection, nil)
}

// NewWithExecutor routes search, upsert and stats calls through executor.
func NewWithExecutor(baseURL, collection string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

func (c *Client) Collection() string {
	return c.collection
}

func (c *Client) IndexChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 || len(vectors) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}

	if err := c.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(chunks))
	for i, chunk := range chunks {
		points = append(points, point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"doc_id":        doc.ID,
				textPayload:     chunk.Content,
				metadataPayload: chunk.Metadata,
			},
		})
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(c.collection))
	err := c.executor.Execute(ctx, "qdrant_upsert", func(ctx context.Context) error {
		return c.sendJSON(ctx, http.MethodPut, path, map[string]any{"points": points}, nil, "upsert")
	}, resilience.ClassifyHTTPError)
	return resilience.WrapTemporary("qdrant upsert", err)
}

// Search returns up to limit points ordered by descending cosine similarity.
func (c *Client) Search(ctx context.Context, queryVector []float32, limit int, filter map[string]any) ([]domain.RetrievedChunk, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if f := buildFilter(filter); f != nil {
		reqBody["filter"] = f
	}

	type searchResponse struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(c.collection))
	resp, err := resilience.Call(ctx, c.executor, "qdrant_search", func(ctx context.Context) (searchResponse, error) {
		var out searchResponse
		err := c.sendJSON(ctx, http.MethodPost, path, reqBody, &out, "search")
		return out, err
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return nil, resilience.WrapTemporary("qdrant search", err)
	}

	out := make([]domain.RetrievedChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		out = append(out, domain.RetrievedChunk{
			Content:  getStringPayload(r.Payload, textPayload),
			Metadata: getMapPayload(r.Payload, metadataPayload),
			Score:    r.Score,
		})
	}
	return out, nil
}

func (c *Client) CollectionStats(ctx context.Context) (domain.CollectionStats, error) {
	type infoResponse struct {
		Result struct {
			Status      string `json:"status"`
			PointsCount *int64 `json:"points_count"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s", url.PathEscape(c.collection))
	info, err := resilience.Call(ctx, c.executor, "qdrant_collection_info", func(ctx context.Context) (infoResponse, error) {
		var out infoResponse
		err := c.sendJSON(ctx, http.MethodGet, path, nil, &out, "collection info")
		return out, err
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return domain.CollectionStats{}, resilience.WrapTemporary("qdrant collection info", err)
	}

	stats := domain.CollectionStats{
		CollectionName: c.collection,
		Status:         info.Result.Status,
	}
	if info.Result.PointsCount != nil {
		stats.DocumentCount = *info.Result.PointsCount
	}
	return stats, nil
}

// ResetCollection drops the collection. A missing collection is not an error.
func (c *Client) ResetCollection(ctx context.Context) error {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(c.collection))
	err := c.sendJSON(ctx, http.MethodDelete, path, nil, nil, "delete collection")
	if err != nil {
		var statusErr *resilience.HTTPStatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
			return err
		}
	}

	c.ensureMu.Lock()
	c.ensuredCollection = false
	c.ensuredVectorSize = 0
	c.ensureMu.Unlock()
	return nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	path := fmt.Sprintf("/collections/%s", url.PathEscape(c.collection))
	err := c.sendJSON(ctx, http.MethodPut, path, reqBody, nil, "ensure collection")
	if err != nil {
		// 409 when the collection already exists (depends on version/config).
		var statusErr *resilience.HTTPStatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusConflict {
			return err
		}
	}

	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any, out any, operation string) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", operation, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return resilience.NewHTTPStatusError(serviceName, operation, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// buildFilter turns equality constraints on chunk metadata into a Qdrant
// must-clause. Slice values match any of their elements.
func buildFilter(filter map[string]any) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	must := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		match := map[string]any{"value": filter[key]}
		switch v := filter[key].(type) {
		case []any:
			match = map[string]any{"any": v}
		case []string:
			match = map[string]any{"any": v}
		}
		must = append(must, map[string]any{
			"key":   metadataPayload + "." + key,
			"match": match,
		})
	}
	return map[string]any{"must": must}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getMapPayload(payload map[string]any, key string) map[string]any {
	if m, ok := payload[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
