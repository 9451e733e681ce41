// Package storage defines the run journal used to record what each pipeline
// run did.
//
// The journal is advisory. Artifact existence on disk decides whether a chunk
// still needs work; the journal only answers "what happened last time" for
// the status command and for operators reading logs.
//
// # Implementations
//
//   - badger.Journal: persistent journal backed by BadgerDB
//   - NopJournal: discards everything, used when no journal path is configured
//
// Open a journal:
//
//	j, err := badger.NewJournal("/path/to/journal", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer j.Close()
//
// Use in tests with in-memory storage:
//
//	j, err := badger.NewMemoryJournal()
//
// # Thread Safety
//
// Journal implementations must be safe for concurrent use.
package storage
