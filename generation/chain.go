// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/quizpipe/ai"
	"github.com/poiesic/quizpipe/core"
)

// ErrGeneratorRequired is returned when a Chain is created without a generator.
var ErrGeneratorRequired = errors.New("generator is required")

// Output is everything the chain produced for one chunk.
type Output struct {
	TermAnalysis    string
	ConceptAnalysis string
	Questions       []core.Question

	// Steps holds the result of every step in order.
	Steps []Result
	// ParseErr is set when no questions could be extracted.
	ParseErr error
}

// Failures returns the steps whose generator call failed.
func (o *Output) Failures() []Result {
	var failed []Result
	for _, s := range o.Steps {
		if s.Failed() {
			failed = append(failed, s)
		}
	}
	return failed
}

// step is one link of the chain. seedLabel prefixes the carried context;
// the first step receives none.
type step struct {
	stage     Stage
	system    string
	seedLabel string
}

// Chain runs the term, concept and question steps for a chunk.
type Chain struct {
	gen     ai.Generator
	prompts Prompts
	steps   []step
	logger  *slog.Logger
}

// NewChain creates a chain. Empty labels in prompts take their defaults.
func NewChain(gen ai.Generator, prompts Prompts, logger *slog.Logger) (*Chain, error) {
	if gen == nil {
		return nil, ErrGeneratorRequired
	}
	prompts = prompts.WithDefaults()
	if err := prompts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Chain{
		gen:     gen,
		prompts: prompts,
		steps: []step{
			{stage: StageTermAnalysis, system: prompts.TermAnalysis},
			{stage: StageConceptAnalysis, system: prompts.ConceptAnalysis, seedLabel: prompts.TermSeedLabel},
			{stage: StageQuestionGeneration, system: prompts.QuestionGeneration, seedLabel: prompts.ConceptSeedLabel},
		},
		logger: logger.With("component", "generation", "provider", gen.Name()),
	}, nil
}

// Run executes the steps in order, threading each step's output into the
// next. Generator failures are folded into the output; only cancellation of
// ctx makes Run return an error.
func (c *Chain) Run(ctx context.Context, chunkText string) (*Output, error) {
	userMessage := c.prompts.SourceLabel + chunkText
	out := &Output{Steps: make([]Result, 0, len(c.steps))}

	var carried string
	for i, s := range c.steps {
		var extra string
		if i > 0 {
			extra = s.seedLabel + carried
		}

		res := c.call(ctx, s.stage, s.system, userMessage, extra)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out.Steps = append(out.Steps, res)
		carried = res.Text
	}

	out.TermAnalysis = out.Steps[0].Text
	out.ConceptAnalysis = out.Steps[1].Text

	questions, err := ExtractQuestions(out.Steps[2].Text)
	if err != nil {
		c.logger.Warn("no questions extracted", "error", err)
		out.ParseErr = err
	}
	out.Questions = questions

	return out, nil
}

// call runs one step and normalises a failed call into a Result whose text
// describes the error.
func (c *Chain) call(ctx context.Context, stage Stage, system, userMessage, extra string) Result {
	reply, err := c.gen.Generate(ctx, system, userMessage, extra)
	if err != nil {
		c.logger.Error("generation failed", "stage", stage, "error", err)
		return Result{
			Stage: stage,
			Kind:  KindGenerationFailure,
			Text:  fmt.Sprintf("Error generating response with %s: %v", c.gen.Name(), err),
			Err:   fmt.Errorf("%w: %s: %w", core.ErrGenerationFailure, stage, err),
		}
	}

	c.logger.Debug("step finished", "stage", stage, "chars", len(reply))
	return Result{Stage: stage, Kind: KindSuccess, Text: reply}
}
