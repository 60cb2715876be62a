package payload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mirror/internal/cimeta"
	"mirror/internal/quadrant"
)

var (
	testNow  = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	testMeta = cimeta.Meta{
		RunID: "7-1", Project: "acme/clock", Commit: "abc", Branch: "main",
		CI: cimeta.CI{Provider: "github_actions", Workflow: "Tests", RunURL: "https://github.com/acme/clock/actions/runs/7"},
	}
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuild_EmptyDirUsesDefaults(t *testing.T) {
	p, err := Build(context.Background(), t.TempDir(), testMeta, testNow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := &Payload{
		Run:       RunMeta{Meta: testMeta, CreatedAt: "2026-01-02T03:04:05Z"},
		Manifest:  RunManifest{Schema: RunManifestSchema, Artifacts: []Artifact{}},
		Decisions: []Decision{},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatal(err)
	}
	run := generic["run"].(map[string]any)
	if run["run_id"] != "7-1" || run["created_at"] != "2026-01-02T03:04:05Z" {
		t.Errorf("run = %v", run)
	}
	if _, ok := run["ci"].(map[string]any); !ok {
		t.Errorf("run.ci missing: %v", run)
	}
	if d, ok := generic["decisions"].([]any); !ok || len(d) != 0 {
		t.Errorf("decisions = %v, want []", generic["decisions"])
	}
}

func TestBuild_FullDir(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, RunManifestFile), `{
  "schema": "mirror.run-manifest.v1",
  "decisions_ref": "decisions.json",
  "counts": {"events": 0},
  "artifacts": [{"path": "stale", "sha256": "00"}],
  "tooling": {"evaluator": "pytest"}
}`)
	write(t, filepath.Join(dir, CoverageFile), `{"requirement": 0.9, "temporal": 0.4, "interface": 0.5, "risk": 0.1}`)
	write(t, filepath.Join(dir, DecisionsFile), `[
  {"oracle": "clock.drift", "result": "pass", "satisfies": ["REQ-1"]},
  {"oracle": "clock.skew", "result": "fail", "message": "skew 12ms"}
]`)
	write(t, filepath.Join(dir, ArtifactsSubdir, "junit.xml"), "x")

	p, err := Build(context.Background(), dir, testMeta, testNow)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256([]byte("x"))
	wantManifest := RunManifest{
		Schema:       RunManifestSchema,
		DecisionsRef: "decisions.json",
		Counts:       Counts{Events: 2},
		Artifacts:    []Artifact{{Path: "artifacts/junit.xml", SHA256: hex.EncodeToString(sum[:])}},
		Tooling:      Tooling{Evaluator: "pytest"},
	}
	if diff := cmp.Diff(wantManifest, p.Manifest); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
	if p.Coverage.Requirement != 0.9 || p.Coverage.Risk != 0.1 {
		t.Errorf("coverage = %+v", p.Coverage)
	}
	if len(p.Decisions) != 2 || p.Decisions[1].Message != "skew 12ms" {
		t.Errorf("decisions = %+v", p.Decisions)
	}
}

func TestBuild_EventCountKeptWhenNonZero(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, RunManifestFile), `{"schema": "mirror.run-manifest.v1", "counts": {"events": 9}}`)
	write(t, filepath.Join(dir, DecisionsFile), `[{"oracle": "a", "result": "pass"}]`)

	p, err := Build(context.Background(), dir, testMeta, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if p.Manifest.Counts.Events != 9 {
		t.Errorf("events = %d, want 9", p.Manifest.Counts.Events)
	}
	if p.Manifest.Artifacts == nil {
		t.Error("artifacts should be [] not null")
	}
}

func TestBuild_BadInput(t *testing.T) {
	for _, name := range []string{RunManifestFile, CoverageFile, DecisionsFile} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			write(t, filepath.Join(dir, name), "{not json")
			if _, err := Build(context.Background(), dir, testMeta, testNow); err == nil {
				t.Errorf("expected error for corrupt %s", name)
			}
		})
	}
}

func TestLoadCoverage_ClassifierShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coverage.json")
	write(t, path, `{
  "total": 4, "passed": 3, "pass_rate": 0.75,
  "quadrants": {"requirement": 0.5, "temporal": 0.25, "interface": 0.25, "risk": 0},
  "requirements": {"REQ-2": {"pass": 0, "fail": 1}, "REQ-1": {"pass": 2, "fail": 0}}
}`)
	got, err := LoadCoverage(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Coverage{
		Requirement: 0.5, Temporal: 0.25, Interface: 0.25,
		ByRequirement: []quadrant.RequirementResult{
			{ID: "REQ-1", Result: "pass"},
			{ID: "REQ-2", Result: "fail"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("coverage mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRead(t *testing.T) {
	p, err := Build(context.Background(), t.TempDir(), testMeta, testNow)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "payload.json")
	if err := Write(path, p); err != nil {
		t.Fatal(err)
	}
	back, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p, back); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}

	if _, err := Read(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing payload")
	}
}

func TestReadCoverage_Missing(t *testing.T) {
	if _, err := ReadCoverage(filepath.Join(t.TempDir(), "coverage.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
	if _, err := LoadCoverage(filepath.Join(t.TempDir(), "coverage.json")); err != nil {
		t.Errorf("LoadCoverage on missing file: %v", err)
	}
}
