package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

func TestIndexChunksEnsuresCollectionOncePerVectorSize(t *testing.T) {
	var ensureCalls int32
	var lastPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			atomic.AddInt32(&ensureCalls, 1)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points":
			var body struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if len(body.Points) > 0 {
				lastPayload = body.Points[0].Payload
			}
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	doc := &domain.Document{ID: "doc-1", Filename: "emi.txt"}
	chunks := []domain.Chunk{
		{Content: "EMI basics", Metadata: map[string]any{"source": "emi.txt", "chunk_id": 0}},
		{Content: "EMI formula", Metadata: map[string]any{"source": "emi.txt", "chunk_id": 1}},
	}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	if err := client.IndexChunks(context.Background(), doc, chunks, vectors); err != nil {
		t.Fatalf("first IndexChunks() error = %v", err)
	}
	if err := client.IndexChunks(context.Background(), doc, chunks, vectors); err != nil {
		t.Fatalf("second IndexChunks() error = %v", err)
	}
	if got := atomic.LoadInt32(&ensureCalls); got != 1 {
		t.Fatalf("expected ensure collection called once, got %d", got)
	}
	meta, _ := lastPayload["metadata"].(map[string]any)
	if lastPayload["text"] != "EMI basics" || meta["source"] != "emi.txt" || lastPayload["doc_id"] != "doc-1" {
		t.Fatalf("unexpected payload %+v", lastPayload)
	}
}

func TestEnsureCollectionIncludesResponseBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/docs" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	doc := &domain.Document{ID: "doc-1", Filename: "a.txt"}
	err := client.IndexChunks(context.Background(), doc, []domain.Chunk{{Content: "a"}}, [][]float32{{0.1, 0.2}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "boom") {
		t.Fatalf("expected error to include body, got %v", err)
	}
}

func TestEnsureCollectionTreatsConflictAsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			http.Error(w, "already exists", http.StatusConflict)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	err := client.IndexChunks(context.Background(), &domain.Document{ID: "d"}, []domain.Chunk{{Content: "a"}}, [][]float32{{0.1}})
	if err != nil {
		t.Fatalf("IndexChunks() error = %v", err)
	}
}

type staticEmbedder struct {
	query string
}

func (e *staticEmbedder) Embed(context.Context, []string) ([][]float32, error) { return nil, nil }
func (e *staticEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.query = text
	return []float32{0.5, 0.5}, nil
}

func TestSearchWithScoreMapsPayloadAndFilter(t *testing.T) {
	var request map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/collections/docs/points/search" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&request)
		_, _ = w.Write([]byte(`{"result":[
			{"score":0.91,"payload":{"text":"EMI is an instalment.","metadata":{"source":"emi.txt","chunk_id":0}}},
			{"score":0.42,"payload":{"text":"UPI basics"}}
		]}`))
	}))
	defer server.Close()

	embedder := &staticEmbedder{}
	index := NewIndex(New(server.URL, "docs"), embedder)
	chunks, err := index.SearchWithScore(context.Background(), "What is EMI?", 2, map[string]any{"category": "loans", "topic": []any{"emi", "loan"}})
	if err != nil {
		t.Fatalf("SearchWithScore() error = %v", err)
	}
	if embedder.query != "What is EMI?" {
		t.Fatalf("query not embedded: %q", embedder.query)
	}
	if len(chunks) != 2 || chunks[0].Score != 0.91 || chunks[0].Content != "EMI is an instalment." {
		t.Fatalf("unexpected chunks %+v", chunks)
	}
	if chunks[0].Metadata["source"] != "emi.txt" {
		t.Fatalf("metadata not mapped: %+v", chunks[0].Metadata)
	}
	if chunks[1].Metadata == nil {
		t.Fatalf("missing metadata should map to empty map")
	}

	if request["limit"] != float64(2) || request["with_payload"] != true {
		t.Fatalf("unexpected request %+v", request)
	}
	filter, _ := request["filter"].(map[string]any)
	must, _ := filter["must"].([]any)
	if len(must) != 2 {
		t.Fatalf("expected two filter clauses, got %+v", filter)
	}
	first, _ := must[0].(map[string]any)
	if first["key"] != "metadata.category" {
		t.Fatalf("unexpected first clause %+v", first)
	}
	second, _ := must[1].(map[string]any)
	if match, _ := second["match"].(map[string]any); match["any"] == nil {
		t.Fatalf("expected match-any clause, got %+v", second)
	}
}

func TestCollectionStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/collections/financial_knowledge" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"result":{"status":"green","points_count":128}}`))
	}))
	defer server.Close()

	stats, err := New(server.URL, "financial_knowledge").CollectionStats(context.Background())
	if err != nil {
		t.Fatalf("CollectionStats() error = %v", err)
	}
	if stats.CollectionName != "financial_knowledge" || stats.DocumentCount != 128 || stats.Status != "green" {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestResetCollectionIgnoresMissing(t *testing.T) {
	var ensureCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			http.NotFound(w, r)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			atomic.AddInt32(&ensureCalls, 1)
			w.WriteHeader(http.StatusOK)
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := New(server.URL, "docs")
	doc := &domain.Document{ID: "d"}
	chunk := []domain.Chunk{{Content: "a"}}
	if err := client.IndexChunks(context.Background(), doc, chunk, [][]float32{{0.1}}); err != nil {
		t.Fatalf("IndexChunks() error = %v", err)
	}
	if err := client.ResetCollection(context.Background()); err != nil {
		t.Fatalf("ResetCollection() error = %v", err)
	}
	if err := client.IndexChunks(context.Background(), doc, chunk, [][]float32{{0.1}}); err != nil {
		t.Fatalf("IndexChunks() error = %v", err)
	}
	if got := atomic.LoadInt32(&ensureCalls); got != 2 {
		t.Fatalf("expected collection re-ensured after reset, got %d", got)
	}
}
