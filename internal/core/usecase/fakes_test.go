package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

type indexFake struct {
	chunks    []domain.RetrievedChunk
	err       error
	stats     domain.CollectionStats
	statsErr  error
	gotQuery  string
	gotK      int
	gotFilter map[string]any
	panicMsg  string
}

func (f *indexFake) SearchWithScore(_ context.Context, query string, k int, filter map[string]any) ([]domain.RetrievedChunk, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.gotQuery = query
	f.gotK = k
	f.gotFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.chunks) {
		return append([]domain.RetrievedChunk(nil), f.chunks[:k]...), nil
	}
	return append([]domain.RetrievedChunk(nil), f.chunks...), nil
}

func (f *indexFake) CollectionStats(context.Context) (domain.CollectionStats, error) {
	if f.statsErr != nil {
		return domain.CollectionStats{}, f.statsErr
	}
	return f.stats, nil
}

type generatorFake struct {
	text    string
	err     error
	online  bool
	calls   int
	lastReq domain.GenerationRequest
}

func (f *generatorFake) Generate(_ context.Context, req domain.GenerationRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *generatorFake) Health(context.Context) bool { return f.online }
func (f *generatorFake) ModelName() string           { return "qwen2.5:3b" }

type translateCall struct {
	text           string
	source, target domain.LanguageCode
}

// translatorFake looks up "target:text" then "text" in table and otherwise
// prefixes the target code.
type translatorFake struct {
	mu      sync.Mutex
	table   map[string]string
	err     error
	calls   []translateCall
	failFor map[string]bool
}

func (f *translatorFake) Translate(_ context.Context, text string, source, target domain.LanguageCode) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, translateCall{text: text, source: source, target: target})
	if f.err != nil {
		return "", f.err
	}
	if f.failFor[text] {
		return "", errors.New("backend rejected text")
	}
	if out, ok := f.table[string(target)+":"+text]; ok {
		return out, nil
	}
	if out, ok := f.table[text]; ok {
		return out, nil
	}
	return "[" + string(target) + "] " + text, nil
}

type cacheFake struct {
	entries map[string]string
	gets    int
	sets    int
}

func (f *cacheFake) key(source, target domain.LanguageCode, text string) string {
	return string(source) + "|" + string(target) + "|" + text
}

func (f *cacheFake) Get(_ context.Context, source, target domain.LanguageCode, text string) (string, bool, error) {
	f.gets++
	v, ok := f.entries[f.key(source, target, text)]
	return v, ok, nil
}

func (f *cacheFake) Set(_ context.Context, source, target domain.LanguageCode, text, translated string) error {
	f.sets++
	if f.entries == nil {
		f.entries = map[string]string{}
	}
	f.entries[f.key(source, target, text)] = translated
	return nil
}

type observation struct {
	outcome domain.QueryOutcome
	sources int
}

type observerFake struct {
	queries      []observation
	translations map[string]int
}

func (f *observerFake) ObserveQuery(outcome domain.QueryOutcome, sources int, _ time.Duration) {
	f.queries = append(f.queries, observation{outcome: outcome, sources: sources})
}

func (f *observerFake) ObserveTranslation(direction, outcome string) {
	if f.translations == nil {
		f.translations = map[string]int{}
	}
	f.translations[direction+"/"+outcome]++
}
