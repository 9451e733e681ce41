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

import "unicode"

// repairJSON fixes two slips models make when writing question payloads:
// object keys missing their opening quote (`{정답": 1}`) and commas before a
// closing bracket (`[1, 2,]`). String contents are never touched.
func repairJSON(s string) string {
	src := []rune(s)
	out := make([]rune, 0, len(src)+16)
	inString, escaped := false, false

	for i := 0; i < len(src); i++ {
		ch := src[i]

		if inString {
			out = append(out, ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out = append(out, ch)

		case '{', ',':
			j := skipSpace(src, i+1)
			if ch == ',' && j < len(src) && (src[j] == '}' || src[j] == ']') {
				continue
			}
			out = append(out, ch)
			out = append(out, src[i+1:j]...)
			i = j - 1

			if end, ok := bareKey(src, j); ok {
				out = append(out, '"')
				out = append(out, src[j:end]...)
				out = append(out, '"', ':')
				i = end + 1
			}

		default:
			out = append(out, ch)
		}
	}

	return string(out)
}

func skipSpace(src []rune, i int) int {
	for i < len(src) && unicode.IsSpace(src[i]) {
		i++
	}
	return i
}

// bareKey reports whether a key missing its opening quote starts at i, and
// returns the index of its closing quote.
func bareKey(src []rune, i int) (int, bool) {
	if i >= len(src) || !unicode.IsLetter(src[i]) {
		return 0, false
	}
	end := i
	for end < len(src) && (unicode.IsLetter(src[end]) || unicode.IsDigit(src[end]) || src[end] == '_') {
		end++
	}
	if end+1 < len(src) && src[end] == '"' && src[end+1] == ':' {
		return end, true
	}
	return 0, false
}
