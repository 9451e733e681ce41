package stage

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/quizpipe/core"
)

// ProgressTracker writes a single, overwritten progress line for a stage run.
// Throughput counts only items that were produced, since skipped items cost
// nothing.
type ProgressTracker struct {
	writer         io.Writer
	label          string
	total          int
	reportInterval int

	mu           sync.Mutex
	started      bool
	startTime    time.Time
	seen         int
	lastReported int
	done         int
	skipped      int
	failed       int
}

// NewProgressTracker creates a tracker for total items that reports every
// reportInterval recorded outcomes.
func NewProgressTracker(writer io.Writer, label string, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		label:          label,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started = true
	p.startTime = time.Now()
	p.seen, p.lastReported = 0, 0
	p.done, p.skipped, p.failed = 0, 0, 0
}

// Record counts one finished item.
func (p *ProgressTracker) Record(outcome core.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	switch outcome {
	case core.OutcomeDone:
		p.done++
	case core.OutcomeSkipped:
		p.skipped++
	case core.OutcomeFailed:
		p.failed++
	}
	if p.seen < p.total {
		p.seen++
	}

	if p.seen-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.seen
	}
}

// Finish writes the final line, which shows how far a cancelled run got.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since Start, or zero before it.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report must be called with p.mu held.
func (p *ProgressTracker) report() {
	percent := 0.0
	if p.total > 0 {
		percent = float64(p.seen) / float64(p.total) * 100
	}

	line := fmt.Sprintf("\r%s: %d/%d (%.1f%%) done %d, skipped %d, failed %d",
		p.label, p.seen, p.total, percent, p.done, p.skipped, p.failed)
	if secs := time.Since(p.startTime).Seconds(); p.done > 0 && secs > 0 {
		line += fmt.Sprintf(" - %.1fs/item", secs/float64(p.done))
	}
	fmt.Fprint(p.writer, line)
}
