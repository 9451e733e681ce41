package stage

import (
	"time"

	"github.com/poiesic/quizpipe/core"
)

// Result is the outcome of one item.
type Result struct {
	Key     string
	Outcome core.Outcome
	Err     error
}

// Report summarises a run.
type Report struct {
	Results    []Result
	Done       int
	Skipped    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Total returns the number of items that reached an outcome.
func (r *Report) Total() int {
	return r.Done + r.Skipped + r.Failed
}

// Elapsed returns the wall time of the run.
func (r *Report) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failures returns the results of failed items.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Outcome == core.OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Add records a result.
func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case core.OutcomeDone:
		r.Done++
	case core.OutcomeSkipped:
		r.Skipped++
	case core.OutcomeFailed:
		r.Failed++
	}
}

// Merge folds other into r, widening the time window to cover both.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	for _, res := range other.Results {
		r.Add(res)
	}
	if r.StartedAt.IsZero() || (!other.StartedAt.IsZero() && other.StartedAt.Before(r.StartedAt)) {
		r.StartedAt = other.StartedAt
	}
	if other.FinishedAt.After(r.FinishedAt) {
		r.FinishedAt = other.FinishedAt
	}
}
