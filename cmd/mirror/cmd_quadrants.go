package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mirror/internal/display"
	"mirror/internal/format"
	"mirror/internal/fsutil"
	"mirror/internal/junit"
	"mirror/internal/quadrant"
)

var quadrantsFlags struct {
	out   string
	table string
	check bool
}

var quadrantsCmd = &cobra.Command{
	Use:   "quadrants <junit.xml>",
	Short: "Classify a JUnit report into requirement, temporal, interface and risk coverage",
	Long: `Computes per-quadrant coverage from test markers and requirement_id
properties. Without -o the result is printed as JSON; with -o it is written
there and a summary table is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuadrants,
}

func init() {
	f := quadrantsCmd.Flags()
	f.StringVarP(&quadrantsFlags.out, "output", "o", "", "Write coverage JSON to this path")
	f.StringVar(&quadrantsFlags.table, "format", "ascii", "Summary table format: ascii or markdown")
	f.BoolVar(&quadrantsFlags.check, "check", false, "Fail when coverage is below the configured thresholds")
}

func runQuadrants(cmd *cobra.Command, args []string) error {
	mode, err := format.ParseMode(quadrantsFlags.table)
	if err != nil {
		return err
	}
	results, err := junit.ParseFile(args[0])
	if err != nil {
		return err
	}
	cov := quadrant.Compute(results)
	out := cmd.OutOrStdout()

	if quadrantsFlags.out == "" {
		data, err := json.MarshalIndent(cov, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal coverage: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		if err := fsutil.WriteJSON(quadrantsFlags.out, cov); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Coverage written: %s\n", quadrantsFlags.out)
		if _, err := coverageTable(mode, cov, cfg.Thresholds).WriteTo(out); err != nil {
			return err
		}
	}

	if quadrantsFlags.check && !quadrant.Gate(cov.Quadrants, cfg.Thresholds) {
		return fmt.Errorf("coverage below thresholds: requirement %s (min %s), temporal %s (min %s)",
			display.Percent(cov.Quadrants.Requirement), display.Percent(cfg.Thresholds.Requirement),
			display.Percent(cov.Quadrants.Temporal), display.Percent(cfg.Thresholds.Temporal))
	}
	return nil
}

func coverageTable(m format.Mode, cov quadrant.Coverage, th quadrant.Thresholds) *format.Table {
	minimum := map[string]float64{
		quadrant.Requirement: th.Requirement,
		quadrant.Temporal:    th.Temporal,
	}
	tb := format.NewTable(m)
	tb.Header("Quadrant", "Coverage", "Minimum", "OK")
	for _, q := range quadrant.Names {
		v := cov.Quadrants.Get(q)
		floor, gated := minimum[q]
		if !gated {
			tb.Row(display.Quadrant(q), display.Percent(v), "", "")
			continue
		}
		tb.Row(display.Quadrant(q), display.Percent(v), display.Percent(floor), format.BoolMark(v >= floor))
	}
	tb.Footer("Tests", fmt.Sprintf("%d/%d", cov.Passed, cov.Total), "", "")
	tb.Align(2, format.AlignRight)
	tb.Align(3, format.AlignRight)
	return tb
}
