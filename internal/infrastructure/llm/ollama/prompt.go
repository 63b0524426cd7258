package ollama

import "github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"

func buildGenerationPrompt(system, prompt string) string {
	if system == "" {
		return "User: " + prompt + "\n\nAssistant:"
	}
	return system + "\n\nUser: " + prompt + "\n\nAssistant:"
}

func generationOptions(opts domain.GenerationOptions) map[string]any {
	out := map[string]any{
		"temperature":    opts.Temperature,
		"top_p":          opts.TopP,
		"top_k":          opts.TopK,
		"repeat_penalty": opts.RepeatPenalty,
		"num_ctx":        opts.NumCtx,
	}
	if opts.MaxTokens > 0 {
		out["num_predict"] = opts.MaxTokens
	}
	return out
}
