package domain

// Sampling defaults applied to every grounded generation call.
const (
	DefaultTopP          = 0.9
	DefaultTopKSampling  = 30
	DefaultRepeatPenalty = 1.1
	DefaultContextWindow = 8192
)

type GenerationOptions struct {
	Temperature   float64
	TopP          float64
	TopK          int
	RepeatPenalty float64
	NumCtx        int
	MaxTokens     int
}

func DefaultGenerationOptions(temperature float64, maxTokens int) GenerationOptions {
	return GenerationOptions{
		Temperature:   temperature,
		TopP:          DefaultTopP,
		TopK:          DefaultTopKSampling,
		RepeatPenalty: DefaultRepeatPenalty,
		NumCtx:        DefaultContextWindow,
		MaxTokens:     maxTokens,
	}
}

type GenerationRequest struct {
	Prompt            string
	SystemInstruction string
	Options           GenerationOptions
}

// GenerationResult carries either generated text or a failure description,
// never an error string posing as an answer.
type GenerationResult struct {
	Text    string
	Failure string
}

func (r GenerationResult) OK() bool {
	return r.Failure == ""
}
