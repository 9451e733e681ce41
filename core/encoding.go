package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Zone-less layouts accepted for timestamps in files read from disk. Files
// written by other tools often carry local ISO-8601 times without an offset.
var localTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an RFC 3339 timestamp, or a zone-less one read as
// local time. An empty or unrecognised value yields the zero time and false.
func ParseTimestamp(s string) (time.Time, bool) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, true
	}
	for _, layout := range localTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// EncodeJSON renders v as UTF-8 JSON indented with four spaces, without
// HTML escaping and with a trailing newline.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeTranscript parses a transcript file. The timestamp is informational,
// so a missing or unrecognised one decodes as the zero time instead of
// failing the whole transcript.
func DecodeTranscript(data []byte) (*Transcript, error) {
	var raw struct {
		FileName  string `json:"file_name"`
		Text      string `json:"text"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTranscript, err)
	}

	ts, _ := ParseTimestamp(raw.Timestamp)
	return &Transcript{
		FileName:  raw.FileName,
		Text:      raw.Text,
		Timestamp: ts,
	}, nil
}

// DecodeChunkResult parses a chunk result artifact, tolerating the same
// timestamp layouts as DecodeTranscript.
func DecodeChunkResult(data []byte) (*ChunkResult, error) {
	var raw struct {
		ChunkInfo struct {
			OriginalFile  string `json:"original_file"`
			ChunkNumber   int    `json:"chunk_number"`
			TotalChunks   int    `json:"total_chunks"`
			ProcessedTime string `json:"processed_time"`
		} `json:"chunk_info"`
		TermAnalysis    string     `json:"term_analysis"`
		ConceptAnalysis string     `json:"concept_analysis"`
		Questions       []Question `json:"questions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidChunkResult, err)
	}

	ts, _ := ParseTimestamp(raw.ChunkInfo.ProcessedTime)
	result := &ChunkResult{
		ChunkInfo: ChunkInfo{
			OriginalFile:  raw.ChunkInfo.OriginalFile,
			ChunkNumber:   raw.ChunkInfo.ChunkNumber,
			TotalChunks:   raw.ChunkInfo.TotalChunks,
			ProcessedTime: ts,
		},
		TermAnalysis:    raw.TermAnalysis,
		ConceptAnalysis: raw.ConceptAnalysis,
		Questions:       raw.Questions,
	}
	if result.Questions == nil {
		result.Questions = []Question{}
	}
	return result, nil
}
