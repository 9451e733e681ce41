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
package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/quizpipe/core"
)

// Times are stored as Unix microseconds in UTC.

func timeSize(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func journalEntrySize(e *core.JournalEntry) int {
	return ord.String.Size(e.RunID) +
		ord.String.Size(e.Source) +
		varint.Int.Size(e.ChunkIndex) +
		ord.String.Size(e.Artifact) +
		varint.Int.Size(int(e.Outcome)) +
		ord.String.Size(e.Error) +
		timeSize(e.RecordedAt)
}

// MarshalJournalEntry serializes a JournalEntry to bytes.
func MarshalJournalEntry(e *core.JournalEntry) []byte {
	buf := make([]byte, journalEntrySize(e))
	n := ord.String.Marshal(e.RunID, buf)
	n += ord.String.Marshal(e.Source, buf[n:])
	n += varint.Int.Marshal(e.ChunkIndex, buf[n:])
	n += ord.String.Marshal(e.Artifact, buf[n:])
	n += varint.Int.Marshal(int(e.Outcome), buf[n:])
	n += ord.String.Marshal(e.Error, buf[n:])
	marshalTime(e.RecordedAt, buf[n:])
	return buf
}

// UnmarshalJournalEntry deserializes a JournalEntry from bytes.
func UnmarshalJournalEntry(data []byte) (*core.JournalEntry, error) {
	var (
		e       core.JournalEntry
		n, n1   int
		outcome int
		err     error
	)
	if e.RunID, n1, err = ord.String.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: run id: %w", ErrSerializationFailed, err)
	}
	n += n1
	if e.Source, n1, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: source: %w", ErrSerializationFailed, err)
	}
	n += n1
	if e.ChunkIndex, n1, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: chunk index: %w", ErrSerializationFailed, err)
	}
	n += n1
	if e.Artifact, n1, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: artifact: %w", ErrSerializationFailed, err)
	}
	n += n1
	if outcome, n1, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: outcome: %w", ErrSerializationFailed, err)
	}
	e.Outcome = core.Outcome(outcome)
	n += n1
	if e.Error, n1, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: error: %w", ErrSerializationFailed, err)
	}
	n += n1
	if e.RecordedAt, _, err = unmarshalTime(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: recorded at: %w", ErrSerializationFailed, err)
	}
	return &e, nil
}

func runSummarySize(s *core.RunSummary) int {
	return ord.String.Size(s.RunID) +
		timeSize(s.StartedAt) +
		timeSize(s.FinishedAt) +
		varint.Int.Size(s.Transcripts) +
		varint.Int.Size(s.Done) +
		varint.Int.Size(s.Skipped) +
		varint.Int.Size(s.Failed)
}

// MarshalRunSummary serializes a RunSummary to bytes.
func MarshalRunSummary(s *core.RunSummary) []byte {
	buf := make([]byte, runSummarySize(s))
	n := ord.String.Marshal(s.RunID, buf)
	n += marshalTime(s.StartedAt, buf[n:])
	n += marshalTime(s.FinishedAt, buf[n:])
	n += varint.Int.Marshal(s.Transcripts, buf[n:])
	n += varint.Int.Marshal(s.Done, buf[n:])
	n += varint.Int.Marshal(s.Skipped, buf[n:])
	varint.Int.Marshal(s.Failed, buf[n:])
	return buf
}

// UnmarshalRunSummary deserializes a RunSummary from bytes.
func UnmarshalRunSummary(data []byte) (*core.RunSummary, error) {
	var (
		s     core.RunSummary
		n, n1 int
		err   error
	)
	if s.RunID, n1, err = ord.String.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: run id: %w", ErrSerializationFailed, err)
	}
	n += n1
	if s.StartedAt, n1, err = unmarshalTime(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: started at: %w", ErrSerializationFailed, err)
	}
	n += n1
	if s.FinishedAt, n1, err = unmarshalTime(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: finished at: %w", ErrSerializationFailed, err)
	}
	n += n1
	counts := []*int{&s.Transcripts, &s.Done, &s.Skipped, &s.Failed}
	for _, c := range counts {
		if *c, n1, err = varint.Int.Unmarshal(data[n:]); err != nil {
			return nil, fmt.Errorf("%w: counts: %w", ErrSerializationFailed, err)
		}
		n += n1
	}
	return &s, nil
}
