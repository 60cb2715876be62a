package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mirror/internal/flaky"
	"mirror/internal/history"
	"mirror/internal/junit"
	"mirror/internal/logging"
	"mirror/internal/orchestrate"
	"mirror/internal/report"
)

var flakyFlags struct {
	history  string
	out      string
	markdown string
	top      int
	lock     bool
}

var flakyCmd = &cobra.Command{
	Use:   "flaky <junit.xml>",
	Short: "Record a JUnit report into the test history and list flaky tests",
	Long: `Reads one JUnit XML report, appends each test's outcome to its rolling
window of the last 10 runs, saves the history atomically and scores every
window. Tests whose outcome changes in more than 20% of consecutive runs are
written to the flaky report and the top entries are printed.

Finding flaky tests is not a failure: the command exits 0 unless the report
cannot be read or the history cannot be saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlaky,
}

func init() {
	f := flakyCmd.Flags()
	f.StringVar(&flakyFlags.history, "history", history.DefaultPath, "Outcome history file")
	f.StringVar(&flakyFlags.out, "out", report.DefaultFlakyPath, "Flaky test report (JSON test id -> score)")
	f.StringVar(&flakyFlags.markdown, "markdown", "", "Also write the leaderboard as Markdown to this path")
	f.IntVar(&flakyFlags.top, "top", flaky.DefaultTop, "Number of flaky tests to print")
	f.BoolVar(&flakyFlags.lock, "lock", true, "Hold an exclusive lock on the history while updating it")
}

func runFlaky(cmd *cobra.Command, args []string) error {
	historyPath := pick(cmd, "history", flakyFlags.history, cfg.Paths.History)
	outPath := pick(cmd, "out", flakyFlags.out, cfg.Paths.FlakyReport)
	mdPath := pick(cmd, "markdown", flakyFlags.markdown, cfg.Paths.Markdown)
	top := pickInt(cmd, "top", flakyFlags.top, cfg.Flaky.Top)
	lock := flakyFlags.lock
	if !cmd.Flags().Changed("lock") {
		lock = cfg.Flaky.LockEnabled()
	}
	if top <= 0 {
		return fmt.Errorf("--top must be positive, got %d", top)
	}

	results, err := junit.ParseFile(args[0])
	if err != nil {
		return err
	}

	res, err := orchestrate.Run(cmd.Context(), orchestrate.RunnerConfig{
		HistoryPath: historyPath,
		Lock:        lock,
		Logger:      logging.New("flaky"),
	}, junit.Pairs(results))
	if err != nil {
		return err
	}

	if err := report.WriteFlaky(outPath, res.Findings); err != nil {
		return err
	}
	if mdPath != "" {
		if err := report.WriteMarkdown(mdPath, res.Tracked, res.Findings, top); err != nil {
			return err
		}
	}

	return report.RenderSummary(cmd.OutOrStdout(), report.Summary{
		Source:   args[0],
		Tracked:  res.Tracked,
		Findings: res.Findings,
		Top:      top,
		Warnings: res.Warnings,
	})
}
