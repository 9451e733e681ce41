package executor

import (
	"context"
	"sync"
)

// Call records one command run through a Recorder.
type Call struct {
	Name string
	Args []string
}

// Recorder is an Executor for tests. It records every command and delegates
// to RunFunc, which may create files the real tool would have produced.
type Recorder struct {
	RunFunc func(ctx context.Context, name string, args []string) (string, error)

	mu    sync.Mutex
	calls []Call
}

var _ Executor = (*Recorder)(nil)

// Execute records the call and runs RunFunc if set.
func (r *Recorder) Execute(ctx context.Context, name string, args ...string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: append([]string(nil), args...)})
	fn := r.RunFunc
	r.mu.Unlock()

	if fn != nil {
		return fn(ctx, name, args)
	}
	return "", nil
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}
