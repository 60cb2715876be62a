package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mirror/internal/fsutil"
	"mirror/internal/payload"
	"mirror/internal/report"
)

var badgeFlags struct {
	out string
}

var badgeCmd = &cobra.Command{
	Use:   "badge <coverage.json>",
	Short: "Render a coverage badge SVG from a coverage file",
	Long: `Reads coverage in either the API shape or the 'mirror quadrants' output and
renders "requirement% / temporal%" as a shields-style SVG. Without -o the SVG
is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runBadge,
}

func init() {
	badgeCmd.Flags().StringVarP(&badgeFlags.out, "output", "o", "", "Write the SVG to this path")
}

func runBadge(cmd *cobra.Command, args []string) error {
	cov, err := payload.ReadCoverage(args[0])
	if err != nil {
		if badgeFlags.out != "" {
			_ = fsutil.WriteFileAtomic(badgeFlags.out, []byte(report.ErrorBadge()+"\n"), 0o644)
		}
		return fmt.Errorf("badge: %w", err)
	}

	svg := report.CoverageBadge(cov.Requirement, cov.Temporal) + "\n"
	if badgeFlags.out == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), svg)
		return err
	}
	if err := fsutil.WriteFileAtomic(badgeFlags.out, []byte(svg), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Badge written: %s\n", badgeFlags.out)
	return nil
}
