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

package artifact

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// ChunkSuffix is the extension of chunk result artifacts.
	ChunkSuffix = ".json"

	untitled = "untitled"
)

// NameFor returns the artifact name for the chunk at 0-based index of a
// source: "<source>_chunk_001.json". Numbering is 1-based and padded to three
// digits; chunk 1000 and later simply use more digits. total does not affect
// the name, so names stay stable however many chunks a source has.
func NameFor(sourceName string, index, total int) string {
	return fmt.Sprintf("%s_chunk_%03d%s", SanitizeName(sourceName), index+1, ChunkSuffix)
}

// ChunkPrefix returns the name prefix shared by every chunk artifact of a source.
func ChunkPrefix(sourceName string) string {
	return SanitizeName(sourceName) + "_chunk_"
}

// TranscriptName returns the transcript artifact name for an audio file.
func TranscriptName(audioFile string) string {
	return filepath.Base(audioFile) + ".json"
}

// SanitizeName makes name safe to use as a single path element. Directory
// components are dropped and characters that are not portable in file
// names are replaced with '_'.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)

	name = strings.Trim(name, " .")
	if name == "" {
		return untitled
	}
	return name
}
