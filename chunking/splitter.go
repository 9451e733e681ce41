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

package chunking

import (
	"fmt"
	"strings"

	"github.com/poiesic/quizpipe/core"
)

// Span is the untrimmed [Start, End) rune window a chunk was cut from.
type Span struct {
	Start int
	End   int
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Validate checks that a chunk size and overlap can make progress.
func Validate(maxSize, overlap int) error {
	if overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", core.ErrInvalidConfiguration, overlap)
	}
	if maxSize <= overlap {
		return fmt.Errorf("%w: chunk size %d must be greater than overlap %d",
			core.ErrInvalidConfiguration, maxSize, overlap)
	}
	return nil
}

// Spans computes the chunk windows of text.
//
// Each window is at most maxSize runes. When text remains past the window,
// the window is shortened to end just after the right-most '.', '?' or '!'
// it contains, as long as that still moves the next window forward.
// Consecutive windows share overlap runes.
func Spans(text string, maxSize, overlap int) ([]Span, error) {
	if err := Validate(maxSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	length := len(runes)
	var spans []Span

	start := 0
	for start < length {
		end := min(start+maxSize, length)
		if end < length {
			if p := lastTerminator(runes, start, end); p > start && p+1-overlap > start {
				end = p + 1
			}
		}

		spans = append(spans, Span{Start: start, End: end})
		if end >= length {
			break
		}
		start = end - overlap
	}

	return spans, nil
}

// Split returns the trimmed text of every chunk of text. A window holding
// only whitespace yields an empty string so chunk indices stay aligned with
// artifact names.
func Split(text string, maxSize, overlap int) ([]string, error) {
	spans, err := Spans(text, maxSize, overlap)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	chunks := make([]string, len(spans))
	for i, span := range spans {
		chunks[i] = strings.TrimSpace(string(runes[span.Start:span.End]))
	}
	return chunks, nil
}

// Chunks is Split returning indexed chunks.
func Chunks(text string, maxSize, overlap int) ([]core.Chunk, error) {
	texts, err := Split(text, maxSize, overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]core.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = core.Chunk{Index: i, Text: t}
	}
	return chunks, nil
}

// lastTerminator returns the position of the right-most sentence terminator
// in runes[start:end], or -1.
func lastTerminator(runes []rune, start, end int) int {
	for p := end - 1; p >= start; p-- {
		switch runes[p] {
		case '.', '?', '!':
			return p
		}
	}
	return -1
}
