package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mirror/internal/cimeta"
	"mirror/internal/display"
	"mirror/internal/logging"
	"mirror/internal/payload"
)

var payloadFlags struct {
	dir string
	out string
}

// now is swapped in tests.
var now = time.Now

var payloadCmd = &cobra.Command{
	Use:   "payload",
	Short: "Assemble the Mirror API payload from a report directory",
	Long: `Reads run-manifest.json, coverage.json and decisions.json from the report
directory, hashes everything under its artifacts/ subdirectory and combines
them with run metadata from the CI environment (GITHUB_* variables, or
RUN_ID/PROJECT/COMMIT/BRANCH when CI_PROVIDER is not github_actions).`,
	Args: cobra.NoArgs,
	RunE: runPayload,
}

func init() {
	f := payloadCmd.Flags()
	f.StringVar(&payloadFlags.dir, "dir", payload.DefaultDir, "Report directory")
	f.StringVarP(&payloadFlags.out, "output", "o", payload.DefaultPath, "Payload output path")
}

func runPayload(cmd *cobra.Command, _ []string) error {
	dir := pick(cmd, "dir", payloadFlags.dir, cfg.Paths.ReportDir)
	outPath := pick(cmd, "output", payloadFlags.out, cfg.Paths.Payload)
	out := cmd.OutOrStdout()

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logging.New("payload").Warn("report directory not found, building minimal payload", "dir", dir)
	}

	p, err := payload.Build(cmd.Context(), dir, cimeta.FromEnv(os.Getenv, now()), now())
	if err != nil {
		return err
	}
	if err := payload.Write(outPath, p); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Payload written to %s\n", outPath)
	fmt.Fprintf(out, "  Run ID: %s\n", p.Run.RunID)
	fmt.Fprintf(out, "  Project: %s\n", p.Run.Project)
	fmt.Fprintf(out, "  Decisions: %d\n", len(p.Decisions))
	fmt.Fprintf(out, "  Coverage: %s req, %s temporal\n",
		display.Score(p.Coverage.Requirement), display.Score(p.Coverage.Temporal))
	return nil
}
