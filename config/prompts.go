package config

import "gopkg.in/yaml.v3"

// PromptsConfig holds the system prompts and message labels of the
// generation steps.
type PromptsConfig struct {
	TermAnalysis       string
	ConceptAnalysis    string
	QuestionGeneration string
	SourceLabel        string
	TermSeedLabel      string
	ConceptSeedLabel   string
}

// promptKeys maps each accepted YAML key to its field. The Korean agent
// names are accepted so existing configuration files keep working.
var promptKeys = map[string]func(p *PromptsConfig) *string{
	"term_analysis":       func(p *PromptsConfig) *string { return &p.TermAnalysis },
	"concept_analysis":    func(p *PromptsConfig) *string { return &p.ConceptAnalysis },
	"question_generation": func(p *PromptsConfig) *string { return &p.QuestionGeneration },
	"source_label":        func(p *PromptsConfig) *string { return &p.SourceLabel },
	"term_seed_label":     func(p *PromptsConfig) *string { return &p.TermSeedLabel },
	"concept_seed_label":  func(p *PromptsConfig) *string { return &p.ConceptSeedLabel },
	"용어분석_에이전트":           func(p *PromptsConfig) *string { return &p.TermAnalysis },
	"개념분석_에이전트":           func(p *PromptsConfig) *string { return &p.ConceptAnalysis },
	"문제출제_에이전트":           func(p *PromptsConfig) *string { return &p.QuestionGeneration },
}

// UnmarshalYAML decodes the prompts mapping. Unknown keys are ignored.
func (p *PromptsConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	for key, text := range raw {
		if field, ok := promptKeys[key]; ok {
			*field(p) = text
		}
	}
	return nil
}
