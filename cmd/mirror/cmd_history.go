package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mirror/internal/display"
	"mirror/internal/flaky"
	"mirror/internal/history"
	"mirror/internal/model"
)

var historyFlags struct {
	history string
}

var historyCmd = &cobra.Command{
	Use:   "history <test-id>",
	Short: "Show the recorded outcome window and flakiness of one test",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.history, "history", history.DefaultPath, "Outcome history file")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := pick(cmd, "history", historyFlags.history, cfg.Paths.History)
	st, err := history.Load(path)
	if err != nil {
		return err
	}

	id := model.TestID(args[0])
	out := cmd.OutOrStdout()
	w, ok := st.Window(id)
	if !ok {
		fmt.Fprintf(out, "No history for %s in %s (%d tests tracked)\n", id, path, st.Len())
		return nil
	}

	outcomes := w.Outcomes()
	codes := make([]string, len(outcomes))
	for i, o := range outcomes {
		codes[i] = string(o)
	}

	fmt.Fprintf(out, "Test:     %s\n", id)
	fmt.Fprintf(out, "Runs:     %d (window %d)\n", len(outcomes), history.WindowSize)
	fmt.Fprintf(out, "Recent:   %s  (oldest first)\n", display.OutcomeStrip(codes))
	if last, ok := w.Latest(); ok {
		fmt.Fprintf(out, "Last:     %s\n", display.Outcome(string(last)))
	}
	score, scored := flaky.Score(outcomes)
	if !scored {
		fmt.Fprintf(out, "Score:    n/a (needs %d runs)\n", flaky.MinRuns)
		return nil
	}
	fmt.Fprintf(out, "Score:    %s (%d transitions)\n", display.Score(flaky.Round(score)), flaky.Transitions(outcomes))
	if flaky.IsFlaky(score) {
		fmt.Fprintln(out, "Status:   ⚠ flaky")
	} else {
		fmt.Fprintln(out, "Status:   ✓ stable")
	}
	return nil
}
