package pipeline

import (
	"time"

	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/stage"
)

// TranscriptReport describes what happened to one transcript.
type TranscriptReport struct {
	Path   string
	Source string
	Chunks int
	// Stage is nil when the transcript failed before it was split.
	Stage *stage.Report
	// Err is set when the transcript could not be read or decoded.
	Err error
}

// Failed reports whether the transcript itself failed.
func (t *TranscriptReport) Failed() bool {
	return t.Err != nil
}

// Report summarizes one orchestrator run.
type Report struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Transcripts []*TranscriptReport
	// Chunks merges the chunk outcomes of every transcript.
	Chunks stage.Report
}

func newReport(runID string) *Report {
	return &Report{RunID: runID, StartedAt: time.Now()}
}

func (r *Report) add(t *TranscriptReport) {
	r.Transcripts = append(r.Transcripts, t)
	if t.Stage != nil {
		r.Chunks.Merge(t.Stage)
	}
}

// FailedTranscripts returns the transcripts that could not be processed at all.
func (r *Report) FailedTranscripts() []*TranscriptReport {
	var failed []*TranscriptReport
	for _, t := range r.Transcripts {
		if t.Failed() {
			failed = append(failed, t)
		}
	}
	return failed
}

// Summary converts the report into a journal record. Failed transcripts
// count toward Failed.
func (r *Report) Summary() *core.RunSummary {
	return &core.RunSummary{
		RunID:       r.RunID,
		StartedAt:   r.StartedAt.UTC(),
		FinishedAt:  r.FinishedAt.UTC(),
		Transcripts: len(r.Transcripts),
		Done:        r.Chunks.Done,
		Skipped:     r.Chunks.Skipped,
		Failed:      r.Chunks.Failed + len(r.FailedTranscripts()),
	}
}
