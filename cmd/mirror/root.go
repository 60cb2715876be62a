package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mirror/internal/config"
	"mirror/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config    string
	logLevel  string
	logFormat string
}

// cfg is the resolved project configuration. setup replaces it before any
// subcommand runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Flaky-test detection and run reporting for CI test results",
	Long: "Mirror records JUnit outcomes into a rolling per-test history, flags tests\n" +
		"whose results flip between runs, and assembles run payloads for the\n" +
		"Reactive Mirror dashboard.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.config, "config", "", "Config file (default: "+config.DefaultFile+" if present)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(flakyCmd)
	rootCmd.AddCommand(quadrantsCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(payloadCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(badgeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, _ []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	c, used, err := config.Resolve(rootFlags.config, wd)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(pick(cmd, "log-level", rootFlags.logLevel, c.Logging.Level))
	if err != nil {
		return err
	}
	format := pick(cmd, "log-format", rootFlags.logFormat, c.Logging.Format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown log format %q (want text or json)", format)
	}
	logging.Init(level, format, cmd.ErrOrStderr())

	cfg = c
	if used != "" {
		logging.New("config").Debug("config loaded", "path", used)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
