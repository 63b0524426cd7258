package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
)

const groundingInstructions = "Instructions: Answer ONLY the specific question asked. Stay focused and concise. " +
	"Do not provide additional information about related topics unless directly asked."

// AnswerGenerator builds the grounded prompt and asks the text generator
// for an English answer.
type AnswerGenerator struct {
	generator     ports.TextGenerator
	contextChunks int
	contextChars  int
	logger        *slog.Logger
}

func NewAnswerGenerator(generator ports.TextGenerator, contextChunks, contextChars int, logger *slog.Logger) *AnswerGenerator {
	if contextChunks <= 0 {
		contextChunks = 1
	}
	if contextChars <= 0 {
		contextChars = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerGenerator{
		generator:     generator,
		contextChunks: contextChunks,
		contextChars:  contextChars,
		logger:        logger,
	}
}

func (a *AnswerGenerator) Generate(
	ctx context.Context,
	question string,
	chunks []domain.RetrievedChunk,
	profile PromptProfile,
	temperature float64,
) domain.GenerationResult {
	req := domain.GenerationRequest{
		Prompt:            BuildGroundedPrompt(question, chunks, a.contextChunks, a.contextChars),
		SystemInstruction: profile.Instruction,
		Options:           domain.DefaultGenerationOptions(temperature, profile.MaxTokens),
	}

	text, err := a.generator.Generate(ctx, req)
	if err != nil {
		a.logger.Warn("generation_failed", "model", a.generator.ModelName(), "error", err)
		return domain.GenerationResult{Failure: describeGenerationFailure(err)}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		a.logger.Warn("generation_empty", "model", a.generator.ModelName())
		return domain.GenerationResult{Failure: "generation returned an empty answer"}
	}
	return domain.GenerationResult{Text: text}
}

// BuildGroundedPrompt renders the top chunks, each cut to charLimit runes,
// followed by the question and the focus instructions.
func BuildGroundedPrompt(question string, chunks []domain.RetrievedChunk, maxChunks, charLimit int) string {
	if maxChunks > len(chunks) {
		maxChunks = len(chunks)
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	for i := 0; i < maxChunks; i++ {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Context %d]\n%s", i+1, truncateRunes(chunks[i].Content, charLimit))
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(groundingInstructions)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

func describeGenerationFailure(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "generation timed out"
	case errors.Is(err, context.Canceled):
		return "generation canceled"
	case domain.IsKind(err, domain.ErrUnavailable):
		return "generation service unavailable"
	default:
		return fmt.Sprintf("generation failed: %v", err)
	}
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
