package generation

// Stage names a step of the chain.
type Stage string

const (
	StageTermAnalysis       Stage = "term_analysis"
	StageConceptAnalysis    Stage = "concept_analysis"
	StageQuestionGeneration Stage = "question_generation"
)

// Kind classifies a step result.
type Kind int

const (
	// KindSuccess means the generator replied.
	KindSuccess Kind = iota
	// KindGenerationFailure means the generator call failed and Text holds
	// a description of the error.
	KindGenerationFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindGenerationFailure:
		return "generation_failure"
	default:
		return "unknown"
	}
}

// Result is the normalised outcome of one generator call. Text is always
// usable as step output.
type Result struct {
	Stage Stage
	Kind  Kind
	Text  string
	Err   error
}

// Failed reports whether the call failed.
func (r Result) Failed() bool {
	return r.Kind != KindSuccess
}
