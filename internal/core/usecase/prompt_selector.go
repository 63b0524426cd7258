package usecase

import (
	"strings"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

const baseSystemPrompt = `You are FinanceYatra, a friendly financial literacy assistant for people in India.
You explain personal finance topics such as EMI, UPI, savings, loans, insurance, taxes and investments.
Use Indian context: rupees (₹), Indian banks, RBI rules and government schemes where relevant.
Only use the provided context. If the context does not contain the answer, say you don't know.
Never give personalised investment advice or guarantee returns.`

const beginnerModifier = `The user is a BEGINNER.
- Use very simple words and short sentences.
- Explain any financial term the first time you use it.
- Use one everyday example with small rupee amounts.
- Keep the answer under 100 words.
CRITICAL: Answer ONLY what was asked. Do not add extra topics.`

const intermediateModifier = `The user has INTERMEDIATE financial knowledge.
- Use standard financial terms without over-explaining basics.
- Include a short worked example or comparison when useful.
- Keep the answer under 150 words.
CRITICAL: Answer ONLY what was asked. Do not add extra topics.`

const expertModifier = `The user is an EXPERT.
- Be precise and use technical terminology.
- Mention relevant formulas, regulations or edge cases briefly.
- Keep the answer under 200 words.
CRITICAL: Answer ONLY what was asked. Do not add extra topics.`

// PromptProfile is the system instruction and output budget for one proficiency tier.
type PromptProfile struct {
	Level       domain.Proficiency
	Instruction string
	MaxTokens   int
}

type PromptSelector struct {
	budgets domain.TokenBudgets
}

func NewPromptSelector(budgets domain.TokenBudgets) *PromptSelector {
	return &PromptSelector{budgets: budgets}
}

// Select maps a proficiency to its profile. Unknown or empty levels get the
// intermediate profile.
func (s *PromptSelector) Select(level domain.Proficiency) PromptProfile {
	switch domain.Proficiency(strings.ToLower(strings.TrimSpace(string(level)))) {
	case domain.ProficiencyBeginner:
		return s.profile(domain.ProficiencyBeginner, beginnerModifier, s.budgets.Beginner)
	case domain.ProficiencyIntermediate:
		return s.profile(domain.ProficiencyIntermediate, intermediateModifier, s.budgets.Intermediate)
	case domain.ProficiencyExpert:
		return s.profile(domain.ProficiencyExpert, expertModifier, s.budgets.Expert)
	default:
		return s.profile(domain.ProficiencyIntermediate, intermediateModifier, s.budgets.Intermediate)
	}
}

func (s *PromptSelector) profile(level domain.Proficiency, modifier string, maxTokens int) PromptProfile {
	return PromptProfile{
		Level:       level,
		Instruction: baseSystemPrompt + "\n\n" + modifier,
		MaxTokens:   maxTokens,
	}
}
