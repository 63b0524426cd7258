package usecase

import (
	"strings"
	"testing"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

func TestPromptSelectorTiers(t *testing.T) {
	selector := NewPromptSelector(domain.DefaultPipelineSettings().TokenBudgets)

	tests := []struct {
		level     domain.Proficiency
		wantLevel domain.Proficiency
		wantMax   int
		marker    string
	}{
		{level: "beginner", wantLevel: domain.ProficiencyBeginner, wantMax: 200, marker: "BEGINNER"},
		{level: "intermediate", wantLevel: domain.ProficiencyIntermediate, wantMax: 250, marker: "INTERMEDIATE"},
		{level: "expert", wantLevel: domain.ProficiencyExpert, wantMax: 300, marker: "EXPERT"},
		{level: " Expert ", wantLevel: domain.ProficiencyExpert, wantMax: 300, marker: "EXPERT"},
		{level: "", wantLevel: domain.ProficiencyIntermediate, wantMax: 250, marker: "INTERMEDIATE"},
		{level: "guru", wantLevel: domain.ProficiencyIntermediate, wantMax: 250, marker: "INTERMEDIATE"},
	}

	for _, tt := range tests {
		profile := selector.Select(tt.level)
		if profile.Level != tt.wantLevel {
			t.Fatalf("Select(%q).Level = %q, want %q", tt.level, profile.Level, tt.wantLevel)
		}
		if profile.MaxTokens != tt.wantMax {
			t.Fatalf("Select(%q).MaxTokens = %d, want %d", tt.level, profile.MaxTokens, tt.wantMax)
		}
		if !strings.HasPrefix(profile.Instruction, baseSystemPrompt) {
			t.Fatalf("Select(%q) instruction does not start with base prompt", tt.level)
		}
		if !strings.Contains(profile.Instruction, tt.marker) {
			t.Fatalf("Select(%q) instruction missing %q", tt.level, tt.marker)
		}
	}
}

func TestPromptSelectorUsesConfiguredBudgets(t *testing.T) {
	selector := NewPromptSelector(domain.TokenBudgets{Beginner: 10, Intermediate: 20, Expert: 30})
	if got := selector.Select(domain.ProficiencyExpert).MaxTokens; got != 30 {
		t.Fatalf("expected expert budget 30, got %d", got)
	}
}
