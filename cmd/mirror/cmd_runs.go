package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mirror/internal/display"
	"mirror/internal/format"
	"mirror/internal/mirror"
	"mirror/internal/payload"
	"mirror/internal/quadrant"
)

var runsFlags struct {
	project   string
	limit     int
	table     string
	decisions bool
	api       apiFlags
}

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recent runs stored by the Mirror API, or show one",
	Long: `Without arguments, lists runs from <url>/runs in the order the API returns
them, with their coverage scores checked against the configured thresholds.
With a run id, shows that run and its oracle decisions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsFlags.project, "project", "", "Only runs of this project (owner/name)")
	f.IntVar(&runsFlags.limit, "limit", 20, "Maximum number of runs")
	f.StringVar(&runsFlags.table, "format", "text", "Table format: text or markdown")
	f.BoolVar(&runsFlags.decisions, "decisions", false, "With a run id, print only its decisions")
	runsFlags.api.register(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	mode, err := format.ParseMode(runsFlags.table)
	if err != nil {
		return err
	}
	client, err := runsFlags.api.client(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		return showRun(cmd, client, mode, args[0])
	}
	runs, err := client.ListRuns(cmd.Context(), runsFlags.project, runsFlags.limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found")
		return nil
	}
	_, err = runsTable(mode, runs, now()).WriteTo(out)
	return err
}

func runsTable(m format.Mode, runs []mirror.RunListItem, at time.Time) *format.Table {
	tb := format.NewTable(m)
	tb.Header("Run", "Project", "Branch", "Requirement", "Temporal", "Healthy", "Created")
	for _, r := range runs {
		q := quadrant.Quadrants{
			Requirement: r.Coverage.Requirement,
			Temporal:    r.Coverage.Temporal,
			Interface:   r.Coverage.Interface,
			Risk:        r.Coverage.Risk,
		}
		created := r.CreatedAt
		if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
			created = display.TimeAgo(t, at)
		}
		tb.Row(r.RunID, r.Project, r.Branch,
			display.Percent(q.Requirement), display.Percent(q.Temporal),
			format.BoolMark(quadrant.Gate(q, cfg.Thresholds)), created)
	}
	tb.Align(4, format.AlignRight)
	tb.Align(5, format.AlignRight)
	tb.MaxWidth(1, 40)
	return tb
}

func showRun(cmd *cobra.Command, client *mirror.Client, m format.Mode, id string) error {
	out := cmd.OutOrStdout()
	if runsFlags.decisions {
		ds, err := client.GetDecisions(cmd.Context(), id)
		if err != nil {
			return err
		}
		_, err = decisionsTable(m, ds).WriteTo(out)
		return err
	}

	d, err := client.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run:       %s\n", d.Run.RunID)
	fmt.Fprintf(out, "Project:   %s (%s @ %s)\n", d.Run.Project, d.Run.Branch, shortSHA(d.Run.Commit))
	fmt.Fprintf(out, "Created:   %s\n", d.Run.CreatedAt)
	if d.Run.CI.RunURL != "" {
		fmt.Fprintf(out, "CI:        %s\n", d.Run.CI.RunURL)
	}
	fmt.Fprintf(out, "Coverage:  %s req, %s temporal, %s interface, %s risk\n",
		display.Percent(d.Coverage.Requirement), display.Percent(d.Coverage.Temporal),
		display.Percent(d.Coverage.Interface), display.Percent(d.Coverage.Risk))
	fmt.Fprintf(out, "Artifacts: %d\n", len(d.Manifest.Artifacts))
	if len(d.Decisions) == 0 {
		fmt.Fprintln(out, "No decisions recorded")
		return nil
	}
	_, err = decisionsTable(m, d.Decisions).WriteTo(out)
	return err
}

// shortSHA returns the 12-character abbreviated commit.
func shortSHA(commit string) string {
	return commit[:min(12, len(commit))]
}

func decisionsTable(m format.Mode, ds []payload.Decision) *format.Table {
	tb := format.NewTable(m)
	tb.Header("Oracle", "Result", "Satisfies", "Message")
	for _, d := range ds {
		tb.Row(d.Oracle, d.Result, strings.Join(d.Satisfies, ", "), d.Message)
	}
	tb.MaxWidth(4, 60)
	return tb
}
