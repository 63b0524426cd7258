package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
)

const tracerName = "github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/usecase"

// Pipeline runs one query through detection, translation, gated retrieval,
// grounded generation and back-translation.
type Pipeline struct {
	settings  domain.PipelineSettings
	bridge    *TranslationBridge
	gate      *RetrievalGate
	prompts   *PromptSelector
	answers   *AnswerGenerator
	index     ports.VectorIndex
	generator ports.TextGenerator
	observer  ports.PipelineObserver
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewPipeline wires the query stages once; the returned pipeline is safe for
// concurrent use and never mutates settings.
func NewPipeline(
	settings domain.PipelineSettings,
	translator ports.TranslationBackend,
	cache ports.TranslationCache,
	index ports.VectorIndex,
	generator ports.TextGenerator,
	observer ports.PipelineObserver,
	logger *slog.Logger,
) *Pipeline {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	settings.SupportedLanguages = append([]domain.Language(nil), settings.SupportedLanguages...)

	return &Pipeline{
		settings:  settings,
		bridge:    NewTranslationBridge(translator, cache, settings.TranslationChunkLimit, observer, logger),
		gate:      NewRetrievalGate(index, settings.RelevanceThreshold),
		prompts:   NewPromptSelector(settings.TokenBudgets),
		answers:   NewAnswerGenerator(generator, settings.ContextChunks, settings.ContextCharLimit, logger),
		index:     index,
		generator: generator,
		observer:  observer,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// ProcessQuery always returns a well-formed response. Failures before an
// answer exists produce the generic error reply.
func (p *Pipeline) ProcessQuery(ctx context.Context, query domain.Query) (resp *domain.QueryResponse) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "rag.process_query")

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			p.logger.Error("query_panic", "panic", r)
			resp = domain.ErrorResponse(err)
		}
		if resp.Outcome == domain.OutcomeError {
			span.RecordError(resp.Cause)
			span.SetStatus(codes.Error, resp.Error)
		}
		span.SetAttributes(
			attribute.String("rag.outcome", string(resp.Outcome)),
			attribute.String("rag.query_language", string(resp.QueryLanguage)),
			attribute.Int("rag.sources", len(resp.Sources)),
		)
		span.End()
		p.observer.ObserveQuery(resp.Outcome, len(resp.Sources), time.Since(start))
	}()

	resp, err := p.run(ctx, query)
	if err != nil {
		p.logger.Error("query_failed", "error", err)
		return domain.ErrorResponse(err)
	}
	return resp
}

func (p *Pipeline) run(ctx context.Context, query domain.Query) (*domain.QueryResponse, error) {
	query = query.WithDefaults(p.settings.DefaultTopK)
	if err := query.Validate(); err != nil {
		return nil, err
	}

	queryLang := DetectLanguage(query.Text)
	target := query.TargetLanguage(queryLang)
	p.logger.Info("query_received",
		"query", truncateRunes(query.Text, 50),
		"query_language", queryLang,
		"target_language", target,
		"proficiency", query.Proficiency,
		"k", query.K,
	)

	englishQuery := query.Text
	if p.settings.TranslationEnabled && queryLang != domain.LangEnglish {
		stageCtx, span := p.tracer.Start(ctx, "rag.translate_query")
		englishQuery = p.bridge.TranslateToEnglish(stageCtx, query.Text)
		span.End()
	}

	retrieval, err := p.retrieve(ctx, englishQuery, query)
	if err != nil {
		return nil, err
	}
	if retrieval.Miss() {
		p.logger.Info("retrieval_miss", "considered", retrieval.Considered, "threshold", p.gate.Threshold())
		return p.missResponse(ctx, queryLang, target), nil
	}
	p.logger.Info("retrieval_hit", "kept", len(retrieval.Chunks), "considered", retrieval.Considered, "avg_score", retrieval.AverageScore())

	profile := p.prompts.Select(query.Proficiency)
	genCtx, genSpan := p.tracer.Start(ctx, "rag.generate")
	genSpan.SetAttributes(attribute.String("rag.proficiency", string(profile.Level)), attribute.Int("rag.max_tokens", profile.MaxTokens))
	generation := p.answers.Generate(genCtx, englishQuery, retrieval.Chunks, profile, p.settings.Temperature)
	if !generation.OK() {
		genSpan.SetStatus(codes.Error, generation.Failure)
	}
	genSpan.End()

	englishAnswer := generation.Text
	outcome := domain.OutcomeAnswered
	if !generation.OK() {
		englishAnswer = domain.GenerationFailedMessage
		outcome = domain.OutcomeGenerationFailed
	}

	resp := &domain.QueryResponse{
		Answer:        englishAnswer,
		QueryLanguage: queryLang,
		Error:         generation.Failure,
		Outcome:       outcome,
	}
	if p.settings.TranslationEnabled && target != domain.LangEnglish {
		stageCtx, span := p.tracer.Start(ctx, "rag.translate_answer")
		resp.Answer = p.bridge.TranslateFromEnglish(stageCtx, englishAnswer, target)
		span.End()
		resp.TranslationUsed = true
		resp.EnglishQuery = &englishQuery
		resp.EnglishAnswer = &englishAnswer
	}
	if query.WantSources {
		resp.Sources = append([]domain.RetrievedChunk{}, retrieval.Chunks...)
	}
	return resp, nil
}

func (p *Pipeline) retrieve(ctx context.Context, englishQuery string, query domain.Query) (domain.RetrievalResult, error) {
	ctx, span := p.tracer.Start(ctx, "rag.retrieve")
	defer span.End()

	result, err := p.gate.Retrieve(ctx, englishQuery, query.K, query.MetadataFilter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.RetrievalResult{}, fmt.Errorf("retrieve context: %w", err)
	}
	span.SetAttributes(attribute.Int("rag.considered", result.Considered), attribute.Int("rag.kept", len(result.Chunks)))
	return result, nil
}

func (p *Pipeline) missResponse(ctx context.Context, queryLang, target domain.LanguageCode) *domain.QueryResponse {
	resp := &domain.QueryResponse{
		Answer:        domain.FallbackMessage,
		QueryLanguage: queryLang,
		Sources:       []domain.RetrievedChunk{},
		Outcome:       domain.OutcomeMiss,
	}
	if p.settings.TranslationEnabled && target != domain.LangEnglish {
		resp.Answer = p.bridge.TranslateFromEnglish(ctx, domain.FallbackMessage, target)
		resp.TranslationUsed = true
	}
	return resp
}

// Stats never fails: collaborator errors are reported inside the snapshot.
func (p *Pipeline) Stats(ctx context.Context) domain.PipelineStats {
	vectorStore, err := p.index.CollectionStats(ctx)
	if err != nil {
		p.logger.Warn("collection_stats_failed", "error", err)
		vectorStore = domain.CollectionStats{Error: err.Error()}
	}

	online := p.generator.Health(ctx)
	status := "offline"
	if online {
		status = "online"
	}

	return domain.PipelineStats{
		VectorStore:        vectorStore,
		LLMModel:           p.generator.ModelName(),
		LLMStatus:          status,
		GeneratorOnline:    online,
		TranslationEnabled: p.settings.TranslationEnabled,
		SupportedLanguages: len(p.settings.SupportedLanguages),
	}
}

// SupportedLanguages returns a copy of the language table answers can be
// delivered in.
func (p *Pipeline) SupportedLanguages() []domain.Language {
	return append([]domain.Language(nil), p.settings.SupportedLanguages...)
}
