package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mirror/internal/config"
	"mirror/internal/logging"
	"mirror/internal/mirror"
	"mirror/internal/payload"
)

// apiFlags are shared by every command that talks to the Mirror API.
type apiFlags struct {
	url       string
	tokenFile string
	timeout   time.Duration
}

func (a *apiFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&a.url, "url", "", "Mirror API base URL (e.g. https://mirror.example.com/api)")
	f.StringVar(&a.tokenFile, "token-file", "", "File holding the API token")
	f.DurationVar(&a.timeout, "timeout", 0, "Request timeout (default from config, 30s)")
}

// client builds an API client from flags, falling back to the api config
// section.
func (a *apiFlags) client(cmd *cobra.Command) (*mirror.Client, error) {
	url := pick(cmd, "url", a.url, cfg.API.URL)
	if url == "" {
		return nil, fmt.Errorf("no API URL: pass --url or set api.url in %s", rootConfigName())
	}
	timeout := cfg.API.TimeoutDuration()
	if cmd.Flags().Changed("timeout") {
		timeout = a.timeout
	}
	token, err := mirror.ResolveToken(pick(cmd, "token-file", a.tokenFile, cfg.API.TokenFile), os.Getenv)
	if err != nil {
		return nil, err
	}
	return mirror.New(url, token,
		mirror.WithTimeout(timeout),
		mirror.WithLogger(logging.New("mirror-api")),
	)
}

var pushFlags struct {
	file string
	api  apiFlags
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "POST a payload to the Mirror API",
	Long: `Sends a payload built by 'mirror payload' to <url>/runs. The bearer token
comes from --token-file, else the api.token_file config entry, else the
` + mirror.TokenEnv + ` environment variable. Failed requests are not retried.`,
	Args: cobra.NoArgs,
	RunE: runPush,
}

func init() {
	f := pushCmd.Flags()
	f.StringVarP(&pushFlags.file, "file", "f", payload.DefaultPath, "Payload file")
	pushFlags.api.register(pushCmd)
}

func runPush(cmd *cobra.Command, _ []string) error {
	file := pick(cmd, "file", pushFlags.file, cfg.Paths.Payload)
	client, err := pushFlags.api.client(cmd)
	if err != nil {
		return err
	}
	p, err := payload.Read(file)
	if err != nil {
		return err
	}
	resp, err := client.CreateRun(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("push %s: %w", file, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Pushed run %s\n", resp.RunID)
	if resp.DashboardURL != "" {
		fmt.Fprintf(out, "  Dashboard: %s\n", resp.DashboardURL)
	}
	fmt.Fprintf(out, "  Received: %d events, %d decisions, %d artifacts hashed\n",
		resp.Received.Events, resp.Received.Decisions, resp.Received.ArtifactsHashed)
	return nil
}

func rootConfigName() string {
	if rootFlags.config != "" {
		return rootFlags.config
	}
	return config.DefaultFile
}
