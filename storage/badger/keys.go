package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/quizpipe/core"
)

const (
	chunkEntryPrefix = "jrnchk:"
	runSummaryPrefix = "jrnrun:"
)

// makeChunkPrefix generates the key prefix shared by every chunk of one source.
// Format: prefix:sourceID
func makeChunkPrefix(source string) []byte {
	buf := make([]byte, len(chunkEntryPrefix)+8)
	offset := copy(buf, chunkEntryPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(source)))
	return buf
}

// makeChunkKey generates a composite key for one chunk's journal entry.
// Format: prefix:sourceID:index
func makeChunkKey(source string, index int) []byte {
	prefix := makeChunkPrefix(source)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// BigEndian so lexicographic order matches chunk order
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makeRunKey generates a composite key for a run summary.
// Format: prefix:startedAt:runID
func makeRunKey(startedAt time.Time, runID string) []byte {
	buf := make([]byte, len(runSummaryPrefix)+8+len(runID))
	offset := copy(buf, runSummaryPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(startedAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], runID)
	return buf
}
