package domain

const (
	FallbackMessage         = "I don't have enough information to answer that question. Please ask about financial topics like EMI, UPI, savings, loans, or investments."
	ErrorMessage            = "I encountered an error processing your question. Please try again."
	GenerationFailedMessage = "I couldn't generate an answer right now. Please try again."
)

type QueryOutcome string

const (
	OutcomeAnswered         QueryOutcome = "answered"
	OutcomeMiss             QueryOutcome = "miss"
	OutcomeGenerationFailed QueryOutcome = "generation_failed"
	OutcomeError            QueryOutcome = "error"
)

type QueryResponse struct {
	Answer          string           `json:"answer"`
	QueryLanguage   LanguageCode     `json:"query_language"`
	TranslationUsed bool             `json:"translation_used"`
	Sources         []RetrievedChunk `json:"sources"`
	EnglishQuery    *string          `json:"english_query"`
	EnglishAnswer   *string          `json:"english_answer"`
	Error           string           `json:"error,omitempty"`

	Outcome QueryOutcome `json:"-"`
	Cause   error        `json:"-"`
}

// ErrorResponse is the well-formed reply for a query that failed before an
// answer could be produced.
func ErrorResponse(err error) *QueryResponse {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &QueryResponse{
		Answer:        ErrorMessage,
		QueryLanguage: LangEnglish,
		Sources:       []RetrievedChunk{},
		Error:         msg,
		Outcome:       OutcomeError,
		Cause:         err,
	}
}

type CollectionStats struct {
	CollectionName string `json:"collection_name,omitempty"`
	DocumentCount  int64  `json:"document_count"`
	Status         string `json:"status,omitempty"`
	Error          string `json:"error,omitempty"`
}

type PipelineStats struct {
	VectorStore        CollectionStats `json:"vector_store"`
	LLMModel           string          `json:"llm_model"`
	LLMStatus          string          `json:"llm_status"`
	GeneratorOnline    bool            `json:"generator_online"`
	TranslationEnabled bool            `json:"translation_enabled"`
	SupportedLanguages int             `json:"supported_languages"`
}
