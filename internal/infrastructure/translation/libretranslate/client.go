package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/resilience"
)

const (
	serviceName    = "libretranslate"
	defaultTimeout = 15 * time.Second
)

type Options struct {
	APIKey   string
	Timeout  time.Duration
	Executor *resilience.Executor
}

// Client talks to a LibreTranslate-compatible /translate endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	opts       Options
}

func New(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		opts:       opts,
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (c *Client) Translate(ctx context.Context, text string, source, target domain.LanguageCode) (string, error) {
	payload := translateRequest{
		Q:      text,
		Source: string(source),
		Target: string(target),
		Format: "text",
		APIKey: c.opts.APIKey,
	}

	out, err := resilience.Call(ctx, c.opts.Executor, "translate", func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
		return c.translate(ctx, payload)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return "", resilience.WrapTemporary("libretranslate translate", err)
	}
	return out, nil
}

func (c *Client) translate(ctx context.Context, payload translateRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal translate request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("libretranslate translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", resilience.NewHTTPStatusError(serviceName, "translate", resp)
	}

	var decoded translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("libretranslate: %s", decoded.Error)
	}
	if decoded.TranslatedText == "" && strings.TrimSpace(payload.Q) != "" {
		return "", errors.New("libretranslate returned empty translation")
	}
	return decoded.TranslatedText, nil
}
