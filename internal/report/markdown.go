package report

import (
	"fmt"
	"strings"

	"mirror/internal/flaky"
	"mirror/internal/format"
	"mirror/internal/fsutil"
)

// Markdown renders the flaky leaderboard as a Markdown document.
func Markdown(tracked int, findings []flaky.Finding, top int) string {
	var b strings.Builder
	b.WriteString("# Flaky tests\n\n")
	fmt.Fprintf(&b, "Tracked tests: %d  \n", tracked)
	fmt.Fprintf(&b, "Flaky tests: %d\n\n", len(findings))
	if len(findings) == 0 {
		b.WriteString("No flaky tests detected.\n")
		return b.String()
	}
	b.WriteString(Leaderboard(format.Markdown, findings, top).String())
	b.WriteString("\n")
	return b.String()
}

// WriteMarkdown writes Markdown(...) to path, creating parent directories.
func WriteMarkdown(path string, tracked int, findings []flaky.Finding, top int) error {
	if err := fsutil.WriteFileAtomic(path, []byte(Markdown(tracked, findings, top)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
