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

package badger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/storage"
)

// Journal implements storage.Journal on BadgerDB.
type Journal struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.Journal = (*Journal)(nil)

// NewJournal opens (or creates) a journal database in dir.
func NewJournal(dir string, logger *slog.Logger) (*Journal, error) {
	backend, err := OpenBackend(dir, false, logger)
	if err != nil {
		return nil, fmt.Errorf("opening journal at %s: %w", dir, err)
	}
	return newJournal(backend), nil
}

func newJournal(backend *Backend) *Journal {
	return &Journal{
		backend: backend,
		logger:  backend.logger.With("component", "journal"),
	}
}

// RecordChunk stores entry under (Source, ChunkIndex), replacing any previous entry.
// A zero RecordedAt is set to the current time.
func (j *Journal) RecordChunk(ctx context.Context, entry *core.JournalEntry) error {
	if j.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if entry == nil || entry.Source == "" || entry.ChunkIndex < 0 {
		return storage.ErrInvalidEntry
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	return j.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeChunkKey(entry.Source, entry.ChunkIndex), storage.MarshalJournalEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ChunkEntries returns the entries recorded for source ordered by chunk index.
func (j *Journal) ChunkEntries(ctx context.Context, source string) ([]*core.JournalEntry, error) {
	if j.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	entries := []*core.JournalEntry{}
	err := j.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(source)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.JournalEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalJournalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			// Source IDs are hashes; filter out colliding names.
			if entry.Source != source {
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveRun stores a run summary. Saving the same run twice overwrites it.
func (j *Journal) SaveRun(ctx context.Context, summary *core.RunSummary) error {
	if j.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if summary == nil || summary.RunID == "" {
		return storage.ErrInvalidEntry
	}
	err := j.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeRunKey(summary.StartedAt, summary.RunID), storage.MarshalRunSummary(summary)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	j.logger.Debug("run saved", "run_id", summary.RunID)
	return nil
}

// Runs returns every recorded run summary, most recent first.
func (j *Journal) Runs(ctx context.Context) ([]*core.RunSummary, error) {
	if j.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	runs := []*core.RunSummary{}
	err := j.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runSummaryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				run, err := storage.UnmarshalRunSummary(val)
				if err != nil {
					return err
				}
				runs = append(runs, run)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	slices.Reverse(runs)
	return runs, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.backend.IsClosed() {
		return nil
	}
	return j.backend.Close()
}
