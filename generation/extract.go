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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/quizpipe/core"
)

// ExtractQuestions finds the structured payload in question generation
// output and returns its "questions" array. The payload is the span from
// the first '{' to the last '}'. A payload that fails to decode is decoded
// once more after repairing unquoted keys and trailing commas.
//
// The returned slice is never nil. When no questions can be extracted it is
// empty and the error wraps core.ErrParseFailure.
func ExtractQuestions(text string) ([]core.Question, error) {
	text = stripCodeFence(text)

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return []core.Question{}, fmt.Errorf("%w: no brace-delimited span", core.ErrParseFailure)
	}
	span := text[start : end+1]

	questions, err := decodeQuestions(span)
	if err != nil {
		repaired := repairJSON(span)
		if repaired == span {
			return []core.Question{}, err
		}
		if questions, err = decodeQuestions(repaired); err != nil {
			return []core.Question{}, err
		}
	}
	return questions, nil
}

func decodeQuestions(span string) ([]core.Question, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrParseFailure, err)
	}

	raw, ok := payload["questions"]
	if !ok {
		return nil, fmt.Errorf("%w: missing questions field", core.ErrParseFailure)
	}

	var questions []core.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("%w: questions is not a list: %w", core.ErrParseFailure, err)
	}
	if questions == nil {
		questions = []core.Question{}
	}
	return questions, nil
}

// stripCodeFence removes a surrounding markdown code fence.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
