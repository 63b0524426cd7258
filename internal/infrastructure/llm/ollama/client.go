package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/resilience"
)

const (
	defaultGenerateTimeout = 60 * time.Second
	defaultEmbedTimeout    = 60 * time.Second
	defaultHealthTimeout   = 5 * time.Second
)

type Options struct {
	GenerateTimeout time.Duration
	EmbedTimeout    time.Duration
	HealthTimeout   time.Duration

	// GenerateExecutor guards generation; it should not retry.
	GenerateExecutor *resilience.Executor
	EmbedExecutor    *resilience.Executor
}

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	opts       Options
}

func New(baseURL, genModel, embedModel string) *Client {
	return NewWithOptions(baseURL, genModel, embedModel, Options{})
}

// NewWithOptions builds a client whose per-call deadlines come from opts.
// The http.Client itself has no timeout.
func NewWithOptions(baseURL, genModel, embedModel string, opts Options) *Client {
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = defaultGenerateTimeout
	}
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = defaultEmbedTimeout
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = defaultHealthTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{},
		opts:       opts,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	type embedResponse struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	response, err := resilience.Call(ctx, e.client.opts.EmbedExecutor, "ollama_embed", func(ctx context.Context) (embedResponse, error) {
		ctx, cancel := context.WithTimeout(ctx, e.client.opts.EmbedTimeout)
		defer cancel()
		var out embedResponse
		err := e.client.postJSON(ctx, "/api/embed", request, &out, "embed")
		return out, err
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return nil, resilience.WrapTemporary("ollama embed", err)
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Generator is the text generation side of the client. It satisfies
// ports.TextGenerator.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) ModelName() string {
	return g.client.genModel
}

func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	payload := map[string]any{
		"model":   g.client.genModel,
		"prompt":  buildGenerationPrompt(req.SystemInstruction, req.Prompt),
		"stream":  false,
		"options": generationOptions(req.Options),
	}

	text, err := resilience.Call(ctx, g.client.opts.GenerateExecutor, "ollama_generate", func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, g.client.opts.GenerateTimeout)
		defer cancel()
		var response struct {
			Response string `json:"response"`
		}
		if err := g.client.postJSON(ctx, "/api/generate", payload, &response, "generate"); err != nil {
			return "", err
		}
		return strings.TrimSpace(response.Response), nil
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return "", resilience.WrapTemporary("ollama generate", err)
	}
	return text, nil
}

// Health probes the tag listing. Any failure reads as offline.
func (g *Generator) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, g.client.opts.HealthTimeout)
	defer cancel()

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	return g.client.getJSON(ctx, "/api/tags", &tags, "tags") == nil
}
