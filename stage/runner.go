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

package stage

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/quizpipe/artifact"
	"github.com/poiesic/quizpipe/core"
)

// Item is one unit of work. Key is the name of the artifact it produces and
// must be unique within a run.
type Item[T any] struct {
	Key   string
	Value T
}

// Handler produces the artifact content for an item.
type Handler[T any] func(ctx context.Context, item Item[T]) ([]byte, error)

// Observer is notified after every item reaches an outcome.
type Observer interface {
	ItemFinished(ctx context.Context, result Result)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, result Result)

// ItemFinished calls f.
func (f ObserverFunc) ItemFinished(ctx context.Context, result Result) {
	f(ctx, result)
}

type options struct {
	name           string
	logger         *slog.Logger
	observers      []Observer
	progress       io.Writer
	reportInterval int
}

// Option configures a Runner.
type Option func(*options) error

// WithName sets the stage name used in logs and progress output.
func WithName(name string) Option {
	return func(o *options) error {
		o.name = name
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithObserver adds an observer. Observers are called in the order added.
func WithObserver(observer Observer) Option {
	return func(o *options) error {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
		return nil
	}
}

// WithProgress reports progress to w every reportInterval items.
func WithProgress(w io.Writer, reportInterval int) Option {
	return func(o *options) error {
		if reportInterval <= 0 {
			return ErrInvalidReportInterval
		}
		o.progress = w
		o.reportInterval = reportInterval
		return nil
	}
}

// Runner runs items through a handler, skipping those whose artifact exists.
type Runner[T any] struct {
	store   artifact.Store
	handler Handler[T]
	opts    options
	logger  *slog.Logger
}

// NewRunner creates a runner that stores handler output in store.
func NewRunner[T any](store artifact.Store, handler Handler[T], opts ...Option) (*Runner[T], error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if handler == nil {
		return nil, ErrHandlerRequired
	}

	o := options{name: "stage"}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Runner[T]{
		store:   store,
		handler: handler,
		opts:    o,
		logger:  o.logger.With("component", "stage", "stage", o.name),
	}, nil
}

// Run processes items in order. Failed items are reported and do not stop
// the run. Cancellation is checked between items; when ctx is done the
// report covers the items finished so far and ctx.Err() is returned.
func (r *Runner[T]) Run(ctx context.Context, items []Item[T]) (*Report, error) {
	report := &Report{StartedAt: time.Now()}

	var tracker *ProgressTracker
	if r.opts.progress != nil {
		tracker = NewProgressTracker(r.opts.progress, r.opts.name, len(items), r.opts.reportInterval)
		tracker.Start()
	}

	var runErr error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run cancelled", "remaining", len(items)-report.Total(), "error", err)
			runErr = err
			break
		}

		res := r.runItem(ctx, item)
		report.Add(res)
		for _, obs := range r.opts.observers {
			obs.ItemFinished(ctx, res)
		}
		if tracker != nil {
			tracker.Record(res.Outcome)
		}
	}

	if tracker != nil {
		tracker.Finish()
	}
	report.FinishedAt = time.Now()

	r.logger.Info("stage finished",
		"done", report.Done,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"elapsed", report.Elapsed().Round(time.Millisecond))

	return report, runErr
}

func (r *Runner[T]) runItem(ctx context.Context, item Item[T]) Result {
	exists, err := r.store.Exists(item.Key)
	if err != nil {
		r.logger.Error("failed to check artifact", "key", item.Key, "error", err)
		return Result{Key: item.Key, Outcome: core.OutcomeFailed, Err: err}
	}
	if exists {
		r.logger.Info("artifact exists, skipping", "key", item.Key)
		return Result{Key: item.Key, Outcome: core.OutcomeSkipped}
	}

	r.logger.Debug("processing item", "key", item.Key)
	data, err := r.handler(ctx, item)
	if err != nil {
		r.logger.Error("item failed", "key", item.Key, "error", err)
		return Result{Key: item.Key, Outcome: core.OutcomeFailed, Err: err}
	}

	if err := r.store.Put(item.Key, data); err != nil {
		r.logger.Error("failed to store artifact", "key", item.Key, "error", err)
		return Result{Key: item.Key, Outcome: core.OutcomeFailed, Err: err}
	}

	r.logger.Info("artifact written", "key", item.Key, "bytes", len(data))
	return Result{Key: item.Key, Outcome: core.OutcomeDone}
}
