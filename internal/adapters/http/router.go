package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/config"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/observability/metrics"
)

const maxChatBodyBytes = 1 << 20

const chatRequestSchema = `{
  "type": "object",
  "required": ["query"],
  "properties": {
    "query": {"type": "string", "minLength": 1, "maxLength": 4000},
    "language": {"type": ["string", "null"], "maxLength": 8},
    "proficiency_level": {"type": ["string", "null"], "maxLength": 32},
    "k": {"type": "integer", "minimum": 1, "maximum": 10},
    "return_sources": {"type": "boolean"},
    "metadata_filter": {"type": ["object", "null"]}
  }
}`

var chatSchema = mustCompileSchema(chatRequestSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(err)
	}
	return compiled
}

type chatRequest struct {
	Query            string         `json:"query"`
	Language         *string        `json:"language"`
	ProficiencyLevel *string        `json:"proficiency_level"`
	K                *int           `json:"k"`
	ReturnSources    *bool          `json:"return_sources"`
	MetadataFilter   map[string]any `json:"metadata_filter"`
}

func (r chatRequest) toQuery() domain.Query {
	query := domain.Query{
		Text:           r.Query,
		WantSources:    true,
		MetadataFilter: r.MetadataFilter,
	}
	if r.Language != nil {
		query.Language = domain.LanguageCode(strings.TrimSpace(*r.Language))
	}
	if r.ProficiencyLevel != nil {
		query.Proficiency = domain.Proficiency(*r.ProficiencyLevel)
	}
	if r.K != nil {
		query.K = *r.K
	}
	if r.ReturnSources != nil {
		query.WantSources = *r.ReturnSources
	}
	return query
}

type Router struct {
	cfg       config.Config
	query     ports.QueryService
	languages []domain.Language
	metrics   *metrics.HTTPServerMetrics
}

// NewRouter builds the public API. m may be nil, in which case /metrics is
// not mounted.
func NewRouter(cfg config.Config, query ports.QueryService, languages []domain.Language, m *metrics.HTTPServerMetrics) *Router {
	return &Router{
		cfg:       cfg,
		query:     query,
		languages: append([]domain.Language(nil), languages...),
		metrics:   m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", rt.root)
	mux.HandleFunc("GET /health", rt.health)
	mux.HandleFunc("POST /api/chat", rt.chat)
	mux.HandleFunc("GET /api/languages", rt.listLanguages)
	mux.HandleFunc("GET /api/stats", rt.stats)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = corsMiddleware(handler, rt.cfg.APICORSOrigins)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "online",
		"message": "FinanceYatra multilingual RAG API is running",
	})
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	stats := rt.query.Stats(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"message": "RAG pipeline is operational",
		"stats":   stats,
	})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeDetail(w, http.StatusBadRequest, "could not read request body")
		return
	}

	result, err := chatSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": problems})
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}

	resp := rt.query.ProcessQuery(r.Context(), req.toQuery())
	annotateQuery(r.Context(), resp)
	if resp.Outcome == domain.OutcomeError {
		writeDetail(w, mapErrorToHTTPStatus(resp.Cause), resp.Error)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type languageEntry struct {
	Name string              `json:"name"`
	Code domain.LanguageCode `json:"code"`
}

func (rt *Router) listLanguages(w http.ResponseWriter, _ *http.Request) {
	languages := make(map[domain.LanguageCode]languageEntry, len(rt.languages))
	for _, lang := range rt.languages {
		languages[lang.Code] = languageEntry{Name: lang.Name, Code: lang.Code}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": languages,
		"count":     len(languages),
	})
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.query.Stats(r.Context()))
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
