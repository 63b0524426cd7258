package domain

type TokenBudgets struct {
	Beginner     int
	Intermediate int
	Expert       int
}

// PipelineSettings is built once at startup and shared read-only by every
// pipeline component.
type PipelineSettings struct {
	TranslationEnabled    bool
	RelevanceThreshold    float64
	DefaultTopK           int
	ContextChunks         int
	ContextCharLimit      int
	Temperature           float64
	TranslationChunkLimit int
	TokenBudgets          TokenBudgets
	SupportedLanguages    []Language
}

func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		TranslationEnabled:    true,
		RelevanceThreshold:    0.70,
		DefaultTopK:           DefaultTopK,
		ContextChunks:         1,
		ContextCharLimit:      500,
		Temperature:           0.7,
		TranslationChunkLimit: 4000,
		TokenBudgets: TokenBudgets{
			Beginner:     200,
			Intermediate: 250,
			Expert:       300,
		},
		SupportedLanguages: SupportedLanguages(),
	}
}
