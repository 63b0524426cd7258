package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	answerColor  = color.New(color.FgGreen)
	mutedColor   = color.New(color.FgHiBlack)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

const sourcePreviewRunes = 150

func renderResponse(w io.Writer, resp *domain.QueryResponse) {
	switch resp.Outcome {
	case domain.OutcomeError:
		errorColor.Fprintln(w, resp.Answer)
		mutedColor.Fprintf(w, "  cause: %s\n", resp.Error)
		return
	case domain.OutcomeGenerationFailed:
		warnColor.Fprintln(w, resp.Answer)
		mutedColor.Fprintf(w, "  cause: %s\n", resp.Error)
	default:
		answerColor.Fprintln(w, resp.Answer)
	}

	fmt.Fprintf(w, "\nlanguage: %s (%s)  translated: %t\n", resp.QueryLanguage.Name(), resp.QueryLanguage, resp.TranslationUsed)
	if resp.EnglishAnswer != nil {
		mutedColor.Fprintf(w, "english: %s\n", *resp.EnglishAnswer)
	}

	if len(resp.Sources) == 0 {
		return
	}
	headingColor.Fprintf(w, "\nsources (%d)\n", len(resp.Sources))
	for i, src := range resp.Sources {
		name, _ := src.Metadata["source"].(string)
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(w, "  %d. %s  score=%.3f\n", i+1, name, src.Score)
		mutedColor.Fprintf(w, "     %s\n", preview(src.Content, sourcePreviewRunes))
	}
}

func renderStats(w io.Writer, stats domain.PipelineStats) {
	headingColor.Fprintln(w, "pipeline")
	fmt.Fprintf(w, "  llm model:           %s\n", stats.LLMModel)
	status := answerColor.Sprint(stats.LLMStatus)
	if !stats.GeneratorOnline {
		status = errorColor.Sprint(stats.LLMStatus)
	}
	fmt.Fprintf(w, "  llm status:          %s\n", status)
	fmt.Fprintf(w, "  translation:         %t\n", stats.TranslationEnabled)
	fmt.Fprintf(w, "  supported languages: %d\n", stats.SupportedLanguages)

	headingColor.Fprintln(w, "vector store")
	if stats.VectorStore.Error != "" {
		errorColor.Fprintf(w, "  error: %s\n", stats.VectorStore.Error)
		return
	}
	fmt.Fprintf(w, "  collection: %s\n", stats.VectorStore.CollectionName)
	fmt.Fprintf(w, "  documents:  %d\n", stats.VectorStore.DocumentCount)
	if stats.VectorStore.Status != "" {
		fmt.Fprintf(w, "  status:     %s\n", stats.VectorStore.Status)
	}
}

func renderLanguages(w io.Writer, languages []domain.Language) {
	sorted := append([]domain.Language(nil), languages...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	headingColor.Fprintf(w, "supported languages (%d)\n", len(sorted))
	for _, lang := range sorted {
		fmt.Fprintf(w, "  %-3s %s\n", lang.Code, lang.Name)
	}
}

func renderIngestReport(w io.Writer, report *domain.IngestReport) {
	answerColor.Fprintf(w, "indexed %d documents, %d chunks\n", report.Documents, report.Chunks)
	if len(report.Skipped) == 0 {
		return
	}
	warnColor.Fprintf(w, "skipped %d\n", len(report.Skipped))
	for _, skipped := range report.Skipped {
		fmt.Fprintf(w, "  %s: %s\n", skipped.Path, skipped.Reason)
	}
}

func preview(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
