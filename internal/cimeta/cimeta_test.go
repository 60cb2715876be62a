package cimeta

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600))

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Meta
	}{
		{
			name: "github defaults",
			env:  nil,
			want: Meta{
				RunID: "local-1", Project: "local/project", Commit: "unknown", Branch: "main",
				CI: CI{Provider: "github_actions", Workflow: "Tests", RunURL: "https://github.com//actions/runs/local"},
			},
		},
		{
			name: "github actions run",
			env: map[string]string{
				"GITHUB_RUN_ID":      "42",
				"GITHUB_RUN_ATTEMPT": "3",
				"GITHUB_REPOSITORY":  "acme/clock",
				"GITHUB_SHA":         "abc123",
				"GITHUB_REF_NAME":    "feature",
				"GITHUB_WORKFLOW":    "CI",
				"GITHUB_SERVER_URL":  "https://ghe.example.com",
			},
			want: Meta{
				RunID: "42-3", Project: "acme/clock", Commit: "abc123", Branch: "feature",
				CI: CI{Provider: "github_actions", Workflow: "CI", RunURL: "https://ghe.example.com/acme/clock/actions/runs/42"},
			},
		},
		{
			name: "generic defaults",
			env:  map[string]string{"CI_PROVIDER": "gitlab"},
			want: Meta{
				RunID: "local-20260304040607", Project: "local/project", Commit: "HEAD", Branch: "main",
				CI: CI{Provider: "gitlab", Workflow: "Tests"},
			},
		},
		{
			name: "generic overrides",
			env: map[string]string{
				"CI_PROVIDER": "jenkins", "RUN_ID": "r-9", "PROJECT": "p/q",
				"COMMIT": "deadbeef", "BRANCH": "dev", "WORKFLOW": "nightly",
			},
			want: Meta{
				RunID: "r-9", Project: "p/q", Commit: "deadbeef", Branch: "dev",
				CI: CI{Provider: "jenkins", Workflow: "nightly"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromEnv(mapEnv(tt.env), fixedNow)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromEnv mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
