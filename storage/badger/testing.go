package badger

// NewMemoryJournal creates an in-memory journal for testing.
// Caller must close it when done.
func NewMemoryJournal() (*Journal, error) {
	backend, err := OpenBackend("", true, nil)
	if err != nil {
		return nil, err
	}
	return newJournal(backend), nil
}
