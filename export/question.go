package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/quizpipe/core"
)

// Question fields are owned by the prompt, so rendering only recognises a
// few common names and lists everything else as label: value lines.
var (
	promptKeys  = []string{"question", "문제", "prompt", "q"}
	optionKeys  = []string{"options", "choices", "보기", "선택지"}
	orderedKeys = []string{"answer", "정답", "explanation", "해설"}
)

type renderedQuestion struct {
	Prompt  string
	Options []string
	Fields  [][2]string
}

// renderQuestion flattens one question record. Records that are not JSON
// objects render as their compact JSON text.
func renderQuestion(q core.Question) renderedQuestion {
	var fields map[string]any
	if err := json.Unmarshal(q, &fields); err != nil || fields == nil {
		return renderedQuestion{Prompt: compact(q)}
	}

	var r renderedQuestion
	for _, k := range promptKeys {
		if v, ok := fields[k]; ok {
			r.Prompt = scalar(v)
			delete(fields, k)
			break
		}
	}
	for _, k := range optionKeys {
		if v, ok := fields[k]; ok {
			r.Options = list(v)
			delete(fields, k)
			break
		}
	}
	for _, k := range orderedKeys {
		if v, ok := fields[k]; ok {
			r.Fields = append(r.Fields, [2]string{k, scalar(v)})
			delete(fields, k)
		}
	}
	rest := make([]string, 0, len(fields))
	for k := range fields {
		rest = append(rest, k)
	}
	slices.Sort(rest)
	for _, k := range rest {
		r.Fields = append(r.Fields, [2]string{k, scalar(fields[k])})
	}
	return r
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case []any:
		return strings.Join(list(t), ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func list(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = scalar(item)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		out := make([]string, len(keys))
		for i, k := range keys {
			out[i] = k + ". " + scalar(t[k])
		}
		return out
	default:
		return []string{scalar(v)}
	}
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
