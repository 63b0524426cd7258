package domain

import (
	"fmt"
	"strings"
)

type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyExpert       Proficiency = "expert"
)

const (
	DefaultTopK = 2
	MinTopK     = 1
	MaxTopK     = 10
)

// Query is one inbound user question. An empty Language means the answer
// follows the detected query language.
type Query struct {
	Text           string
	Language       LanguageCode
	Proficiency    Proficiency
	K              int
	MetadataFilter map[string]any
	WantSources    bool
}

// WithDefaults fills the optional knobs left at their zero value.
func (q Query) WithDefaults(defaultK int) Query {
	if q.K == 0 {
		q.K = defaultK
	}
	if q.K == 0 {
		q.K = DefaultTopK
	}
	q.Language = LanguageCode(strings.ToLower(strings.TrimSpace(string(q.Language))))
	if q.Language == LangAuto {
		q.Language = ""
	}
	return q
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return WrapError(ErrInvalidInput, "validate query", fmt.Errorf("query text is empty"))
	}
	if q.K < MinTopK || q.K > MaxTopK {
		return WrapError(ErrInvalidInput, "validate query", fmt.Errorf("k must be between %d and %d, got %d", MinTopK, MaxTopK, q.K))
	}
	if q.Language != "" && !q.Language.IsSupported() {
		return WrapError(ErrInvalidInput, "validate query", fmt.Errorf("unsupported language code %q", q.Language))
	}
	return nil
}

// TargetLanguage is the language the final answer is delivered in.
func (q Query) TargetLanguage(detected LanguageCode) LanguageCode {
	if q.Language != "" {
		return q.Language
	}
	return detected
}

type RetrievedChunk struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// RetrievalResult holds the chunks that passed the relevance gate and how
// many candidates the index returned before filtering.
type RetrievalResult struct {
	Chunks     []RetrievedChunk
	Considered int
}

func (r RetrievalResult) Miss() bool {
	return len(r.Chunks) == 0
}

func (r RetrievalResult) AverageScore() float64 {
	if len(r.Chunks) == 0 {
		return 0
	}
	var sum float64
	for _, chunk := range r.Chunks {
		sum += chunk.Score
	}
	return sum / float64(len(r.Chunks))
}
