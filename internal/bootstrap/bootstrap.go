package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/config"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/usecase"
	rediscache "github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/cache/redis"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/llm/ollama"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/resilience"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/translation/libretranslate"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/infrastructure/vector/qdrant"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/observability/metrics"
)

const redisPingTimeout = 2 * time.Second

type Options struct {
	Logger *slog.Logger
	// Metrics, when set, receives pipeline outcomes and breaker transitions.
	Metrics *metrics.HTTPServerMetrics
}

// App holds the long-lived collaborators of the query path.
type App struct {
	Config   config.Config
	Pipeline *usecase.Pipeline
	Query    ports.QueryService

	embedder *ollama.Embedder
	index    *qdrant.Index
	logger   *slog.Logger
	closeFns []func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var listener resilience.StateListener
	var observer ports.PipelineObserver
	if opts.Metrics != nil {
		listener = opts.Metrics.ObserveBreakerState
		observer = opts.Metrics
	}

	executor := func(c resilience.Collaborator) *resilience.Executor {
		return newExecutor(resilience.ConfigFor(c), logger, listener)
	}

	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		GenerateTimeout:  cfg.OllamaGenerateTimeout,
		HealthTimeout:    cfg.OllamaHealthTimeout,
		GenerateExecutor: executor(resilience.CollaboratorGenerate),
		EmbedExecutor:    executor(resilience.CollaboratorEmbed),
	})
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorClient := qdrant.NewWithExecutor(cfg.QdrantURL, cfg.QdrantCollection, executor(resilience.CollaboratorQdrant))
	index := qdrant.NewIndex(vectorClient, embedder)

	translator := libretranslate.New(cfg.TranslateURL, libretranslate.Options{
		APIKey:   cfg.TranslateAPIKey,
		Timeout:  cfg.TranslateTimeout,
		Executor: executor(resilience.CollaboratorTranslate),
	})

	app := &App{
		Config:   cfg,
		embedder: embedder,
		index:    index,
		logger:   logger,
	}

	cache := app.openTranslationCache(ctx, cfg)

	pipeline := usecase.NewPipeline(cfg.Pipeline(), translator, cache, index, generator, observer, logger)
	app.Pipeline = pipeline
	app.Query = pipeline

	logger.Info("pipeline_ready",
		"ollama_url", cfg.OllamaURL,
		"model", cfg.OllamaGenModel,
		"qdrant_collection", cfg.QdrantCollection,
		"translation_enabled", cfg.TranslationEnabled,
		"translation_cache", cache != nil,
	)
	return app, nil
}

// openTranslationCache returns nil when Redis is not configured or not
// reachable; the pipeline then translates without memoization.
func (a *App) openTranslationCache(ctx context.Context, cfg config.Config) ports.TranslationCache {
	if cfg.RedisAddr == "" || !cfg.TranslationEnabled {
		return nil
	}

	cache := rediscache.NewTranslationCache(rediscache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.TranslationCacheTTL,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		a.logger.Warn("translation_cache_unavailable", "addr", cfg.RedisAddr, "error", err)
		_ = cache.Close()
		return nil
	}

	a.closeFns = append(a.closeFns, func() { _ = cache.Close() })
	return cache
}

func newExecutor(cfg resilience.Config, logger *slog.Logger, listener resilience.StateListener) *resilience.Executor {
	executor := resilience.NewExecutor(cfg, logger)
	if listener != nil {
		executor.OnStateChange(listener)
	}
	return executor
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
