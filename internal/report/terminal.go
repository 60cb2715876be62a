package report

import (
	"fmt"
	"io"

	"mirror/internal/display"
	"mirror/internal/flaky"
	"mirror/internal/format"
	"mirror/internal/model"
)

// Summary is the human-readable outcome of one detection run.
type Summary struct {
	Source   string // report the run analyzed
	Tracked  int
	Findings []flaky.Finding
	Top      int // leaderboard size; <= 0 means flaky.DefaultTop
	Warnings []string
}

// RenderSummary prints the tracked-test count and the flakiest tests.
func RenderSummary(w io.Writer, s Summary) error {
	top := s.Top
	if top <= 0 {
		top = flaky.DefaultTop
	}
	if s.Source != "" {
		fmt.Fprintf(w, "Analyzing test outcomes from %s...\n", s.Source)
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "! %s\n", warn)
	}
	fmt.Fprintf(w, "✓ Updated history for %d tests\n", s.Tracked)

	if len(s.Findings) == 0 {
		fmt.Fprintln(w, "✓ No flaky tests detected")
		return nil
	}
	fmt.Fprintf(w, "\n⚠ Detected %d flaky tests:\n", len(s.Findings))
	_, err := Leaderboard(format.ASCII, s.Findings, top).WriteTo(w)
	return err
}

// Leaderboard builds the top-n table of findings.
func Leaderboard(m format.Mode, findings []flaky.Finding, n int) *format.Table {
	tb := format.NewTable(m)
	tb.Header("#", "Test", "Flakiness", "Recent")
	for i, f := range flaky.Top(findings, n) {
		tb.Row(i+1, string(f.ID), display.Score(f.Score), strip(f.Outcomes))
	}
	tb.Align(1, format.AlignRight)
	tb.Align(3, format.AlignRight)
	return tb
}

func strip(outcomes []model.Outcome) string {
	codes := make([]string, len(outcomes))
	for i, o := range outcomes {
		codes[i] = string(o)
	}
	return display.OutcomeStrip(codes)
}
