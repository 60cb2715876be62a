// Package cimeta derives run identity from CI environment variables.
package cimeta

import (
	"fmt"
	"time"
)

// ProviderGitHub is the default provider.
const ProviderGitHub = "github_actions"

// CI describes the pipeline that produced a run.
type CI struct {
	Provider string `json:"provider"`
	Workflow string `json:"workflow"`
	RunURL   string `json:"run_url,omitempty"`
}

// Meta identifies one run.
type Meta struct {
	RunID   string `json:"run_id"`
	Project string `json:"project"`
	Commit  string `json:"commit"`
	Branch  string `json:"branch"`
	CI      CI     `json:"ci"`
}

// FromEnv reads run metadata through getenv (os.Getenv in production).
// CI_PROVIDER selects the variable set; anything other than github_actions
// uses the generic RUN_ID/PROJECT/COMMIT/BRANCH/WORKFLOW variables.
func FromEnv(getenv func(string) string, now time.Time) Meta {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	provider := env("CI_PROVIDER", ProviderGitHub)
	if provider == ProviderGitHub {
		runID := env("GITHUB_RUN_ID", "local")
		repo := getenv("GITHUB_REPOSITORY")
		return Meta{
			RunID:   fmt.Sprintf("%s-%s", runID, env("GITHUB_RUN_ATTEMPT", "1")),
			Project: env("GITHUB_REPOSITORY", "local/project"),
			Commit:  env("GITHUB_SHA", "unknown"),
			Branch:  env("GITHUB_REF_NAME", "main"),
			CI: CI{
				Provider: ProviderGitHub,
				Workflow: env("GITHUB_WORKFLOW", "Tests"),
				RunURL:   fmt.Sprintf("%s/%s/actions/runs/%s", env("GITHUB_SERVER_URL", "https://github.com"), repo, runID),
			},
		}
	}

	return Meta{
		RunID:   env("RUN_ID", "local-"+now.UTC().Format("20060102150405")),
		Project: env("PROJECT", "local/project"),
		Commit:  env("COMMIT", "HEAD"),
		Branch:  env("BRANCH", "main"),
		CI: CI{
			Provider: provider,
			Workflow: env("WORKFLOW", "Tests"),
		},
	}
}
