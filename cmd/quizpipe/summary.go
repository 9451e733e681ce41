package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/quizpipe/chunking"
	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/pipeline"
	"github.com/poiesic/quizpipe/stage"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
)

const previewRunes = 60

func counts(done, skipped, failed int) string {
	failedText := fmt.Sprintf("%d failed", failed)
	if failed > 0 {
		failedText = errorStyle.Render(failedText)
	}
	return fmt.Sprintf("%s, %s, %s",
		successStyle.Render(fmt.Sprintf("%d done", done)),
		mutedStyle.Render(fmt.Sprintf("%d skipped", skipped)),
		failedText)
}

func printStage(w io.Writer, label string, r *stage.Report) {
	fmt.Fprintf(w, "%s  %s  %s\n", titleStyle.Render(label), counts(r.Done, r.Skipped, r.Failed),
		mutedStyle.Render(r.Elapsed().Round(time.Millisecond).String()))
	for _, f := range r.Failures() {
		fmt.Fprintf(w, "  %s %s: %v\n", errorStyle.Render("✗"), f.Key, f.Err)
	}
}

func printRun(w io.Writer, r *pipeline.Report) {
	elapsed := r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(w, "%s  %s\n", titleStyle.Render("Run "+r.RunID), mutedStyle.Render(elapsed.String()))
	for _, t := range r.Transcripts {
		switch {
		case t.Failed():
			fmt.Fprintf(w, "  %s %s: %v\n", errorStyle.Render("✗"), t.Source, t.Err)
		case t.Stage == nil || t.Chunks == 0:
			fmt.Fprintf(w, "  %s %s: no chunks\n", warningStyle.Render("-"), t.Source)
		default:
			fmt.Fprintf(w, "  %s %s: %d chunks, %s\n", successStyle.Render("✓"), t.Source, t.Chunks,
				counts(t.Stage.Done, t.Stage.Skipped, t.Stage.Failed))
			for _, f := range t.Stage.Failures() {
				fmt.Fprintf(w, "      %s %s: %v\n", errorStyle.Render("✗"), f.Key, f.Err)
			}
		}
	}
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("total"), counts(r.Chunks.Done, r.Chunks.Skipped, r.Chunks.Failed))
}

func printDownload(w io.Writer, succeeded, failed []string) {
	fmt.Fprintf(w, "%s  %s\n", titleStyle.Render("Download"),
		counts(len(succeeded), 0, len(failed)))
	for _, url := range failed {
		fmt.Fprintf(w, "  %s %s\n", errorStyle.Render("✗"), url)
	}
}

func printSpans(w io.Writer, text string, spans []chunking.Span) {
	runes := []rune(text)
	fmt.Fprintf(w, "%s  %d runes, %d chunks\n", titleStyle.Render("Split"), len(runes), len(spans))
	for i, s := range spans {
		fmt.Fprintf(w, "  %s [%d, %d) %d runes  %s\n",
			mutedStyle.Render(fmt.Sprintf("#%d", i+1)), s.Start, s.End, s.Len(),
			preview(runes[s.Start:s.End]))
	}
}

func preview(runes []rune) string {
	text := strings.Join(strings.Fields(string(runes)), " ")
	if r := []rune(text); len(r) > previewRunes {
		text = string(r[:previewRunes]) + "…"
	}
	return text
}

func printRuns(w io.Writer, runs []*core.RunSummary) {
	fmt.Fprintln(w, titleStyle.Render("Recent runs"))
	if len(runs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  none recorded"))
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "  %s  %s  %d transcripts, %s\n",
			r.StartedAt.Local().Format(time.DateTime),
			mutedStyle.Render(r.RunID),
			r.Transcripts, counts(r.Done, r.Skipped, r.Failed))
	}
}

type sourceStatus struct {
	Source    string
	Artifacts int
	// Failed counts chunks whose latest recorded outcome is a failure.
	Failed int
}

func printSources(w io.Writer, rows []sourceStatus) {
	fmt.Fprintln(w, titleStyle.Render("Transcripts"))
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  none found"))
		return
	}
	for _, r := range rows {
		line := fmt.Sprintf("  %s: %d results", r.Source, r.Artifacts)
		if r.Failed > 0 {
			line += ", " + errorStyle.Render(fmt.Sprintf("%d failing", r.Failed))
		}
		fmt.Fprintln(w, line)
	}
}

func printExports(w io.Writer, paths []string) {
	fmt.Fprintf(w, "%s  %d files\n", titleStyle.Render("Export"), len(paths))
	for _, p := range paths {
		fmt.Fprintf(w, "  %s %s\n", successStyle.Render("✓"), p)
	}
}
