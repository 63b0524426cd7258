package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
)

const (
	DirectionToEnglish   = "to_english"
	DirectionFromEnglish = "from_english"
	DirectionOther       = "other"

	TranslationTranslated = "translated"
	TranslationSkipped    = "skipped"
	TranslationFailed     = "failed"
)

// TranslationBridge wraps a translation backend. It never fails: any backend
// error yields the untranslated input.
type TranslationBridge struct {
	backend    ports.TranslationBackend
	cache      ports.TranslationCache
	observer   ports.PipelineObserver
	logger     *slog.Logger
	chunkLimit int
}

// NewTranslationBridge builds a bridge over backend. cache and observer may be
// nil; chunkLimit defaults to 4000 runes.
func NewTranslationBridge(
	backend ports.TranslationBackend,
	cache ports.TranslationCache,
	chunkLimit int,
	observer ports.PipelineObserver,
	logger *slog.Logger,
) *TranslationBridge {
	if chunkLimit <= 0 {
		chunkLimit = 4000
	}
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslationBridge{
		backend:    backend,
		cache:      cache,
		observer:   observer,
		logger:     logger,
		chunkLimit: chunkLimit,
	}
}

// Translate converts text from source to target. Source may be LangAuto.
func (b *TranslationBridge) Translate(ctx context.Context, text string, source, target domain.LanguageCode) string {
	direction := translationDirection(source, target)
	if strings.TrimSpace(text) == "" || source == target || b.backend == nil {
		b.observer.ObserveTranslation(direction, TranslationSkipped)
		return text
	}
	if source == domain.LangAuto && target == domain.LangEnglish && DetectLanguage(text) == domain.LangEnglish {
		b.observer.ObserveTranslation(direction, TranslationSkipped)
		return text
	}

	translated, err := b.translate(ctx, text, source, target)
	if err != nil {
		b.logger.Warn("translation_failed",
			"source", source,
			"target", target,
			"chars", utf8.RuneCountInString(text),
			"error", err,
		)
		b.observer.ObserveTranslation(direction, TranslationFailed)
		return text
	}
	b.observer.ObserveTranslation(direction, TranslationTranslated)
	return translated
}

func (b *TranslationBridge) TranslateToEnglish(ctx context.Context, text string) string {
	detected := DetectLanguage(text)
	if detected == domain.LangEnglish {
		b.observer.ObserveTranslation(DirectionToEnglish, TranslationSkipped)
		return text
	}
	return b.Translate(ctx, text, detected, domain.LangEnglish)
}

func (b *TranslationBridge) TranslateFromEnglish(ctx context.Context, text string, target domain.LanguageCode) string {
	return b.Translate(ctx, text, domain.LangEnglish, target)
}

func (b *TranslationBridge) translate(ctx context.Context, text string, source, target domain.LanguageCode) (string, error) {
	if utf8.RuneCountInString(text) <= b.chunkLimit {
		return b.translateChunk(ctx, text, source, target)
	}

	chunks := SplitForTranslation(text, b.chunkLimit)
	out := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		translated, err := b.translateChunk(ctx, chunk, source, target)
		if err != nil {
			return "", fmt.Errorf("translate chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out = append(out, translated)
	}
	return strings.Join(out, " "), nil
}

func (b *TranslationBridge) translateChunk(ctx context.Context, text string, source, target domain.LanguageCode) (string, error) {
	if b.cache != nil {
		cached, ok, err := b.cache.Get(ctx, source, target, text)
		if err != nil {
			b.logger.Debug("translation_cache_get_failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	translated, err := b.backend.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}

	if b.cache != nil {
		if err := b.cache.Set(ctx, source, target, text, translated); err != nil {
			b.logger.Debug("translation_cache_set_failed", "error", err)
		}
	}
	return translated, nil
}

// SplitForTranslation packs sentences greedily into chunks of at most limit
// runes. A single sentence longer than limit becomes its own chunk.
func SplitForTranslation(text string, limit int) []string {
	sentences := splitSentences(text)
	chunks := make([]string, 0, len(sentences))

	var current strings.Builder
	currentLen := 0
	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		currentLen = 0
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		n := utf8.RuneCountInString(sentence)
		if currentLen > 0 && currentLen+1+n > limit {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += n
	}
	flush()
	return chunks
}

// splitSentences cuts after ". " and the Devanagari danda "। ", keeping the
// terminator with its sentence.
func splitSentences(text string) []string {
	const danda = "।"
	var out []string
	start := 0
	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], ". "):
			out = append(out, text[start:i+1])
			i += 2
			start = i
		case strings.HasPrefix(text[i:], danda+" "):
			out = append(out, text[start:i+len(danda)])
			i += len(danda) + 1
			start = i
		default:
			i++
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func translationDirection(source, target domain.LanguageCode) string {
	switch {
	case target == domain.LangEnglish:
		return DirectionToEnglish
	case source == domain.LangEnglish:
		return DirectionFromEnglish
	default:
		return DirectionOther
	}
}

type noopObserver struct{}

func (noopObserver) ObserveQuery(domain.QueryOutcome, int, time.Duration) {}
func (noopObserver) ObserveTranslation(string, string)                    {}
