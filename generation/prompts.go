package generation

import (
	"fmt"

	"github.com/poiesic/quizpipe/core"
)

// Default labels prefixed to the chunk text and to the carried context.
const (
	DefaultSourceLabel      = "원본데이터: "
	DefaultTermSeedLabel    = "오표기 수정용어 : "
	DefaultConceptSeedLabel = "생성해야할 개념 데이터 : "
)

// Prompts holds the system prompt of every step and the labels used to
// build user messages.
type Prompts struct {
	TermAnalysis       string
	ConceptAnalysis    string
	QuestionGeneration string

	// SourceLabel prefixes the chunk text in every user message.
	SourceLabel string
	// TermSeedLabel prefixes the term analysis passed to concept analysis.
	TermSeedLabel string
	// ConceptSeedLabel prefixes the concept analysis passed to question
	// generation.
	ConceptSeedLabel string
}

// WithDefaults returns a copy with empty labels set to their defaults.
func (p Prompts) WithDefaults() Prompts {
	if p.SourceLabel == "" {
		p.SourceLabel = DefaultSourceLabel
	}
	if p.TermSeedLabel == "" {
		p.TermSeedLabel = DefaultTermSeedLabel
	}
	if p.ConceptSeedLabel == "" {
		p.ConceptSeedLabel = DefaultConceptSeedLabel
	}
	return p
}

// Validate checks that every step has a system prompt.
func (p Prompts) Validate() error {
	for _, s := range []struct {
		stage  Stage
		prompt string
	}{
		{StageTermAnalysis, p.TermAnalysis},
		{StageConceptAnalysis, p.ConceptAnalysis},
		{StageQuestionGeneration, p.QuestionGeneration},
	} {
		if s.prompt == "" {
			return fmt.Errorf("%w: %s prompt is empty", core.ErrInvalidConfiguration, s.stage)
		}
	}
	return nil
}
