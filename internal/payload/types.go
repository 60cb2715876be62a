package payload

import (
	"mirror/internal/cimeta"
	"mirror/internal/manifest"
	"mirror/internal/quadrant"
)

// RunManifestSchema identifies the run manifest format.
const RunManifestSchema = "mirror.run-manifest.v1"

// RunMeta identifies the run on the Mirror API.
type RunMeta struct {
	cimeta.Meta
	CreatedAt string `json:"created_at"`
}

// Artifact is a hashed file shipped with a run.
type Artifact struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// Counts carries the run's event tally.
type Counts struct {
	Events int `json:"events"`
}

// Tooling records which evaluator produced the decisions.
type Tooling struct {
	Evaluator string `json:"evaluator,omitempty"`
	Plugin    string `json:"plugin,omitempty"`
}

// RunManifest describes what a run produced.
type RunManifest struct {
	Schema       string     `json:"schema"`
	DecisionsRef string     `json:"decisions_ref,omitempty"`
	Counts       Counts     `json:"counts"`
	Artifacts    []Artifact `json:"artifacts"`
	Tooling      Tooling    `json:"tooling"`
}

// Coverage is the quadrant summary in the API's flat shape.
type Coverage struct {
	Requirement   float64                      `json:"requirement"`
	Temporal      float64                      `json:"temporal"`
	Interface     float64                      `json:"interface"`
	Risk          float64                      `json:"risk"`
	ByRequirement []quadrant.RequirementResult `json:"by_requirement,omitempty"`
}

// Decision is one oracle verdict.
type Decision struct {
	Oracle    string   `json:"oracle"`
	Result    string   `json:"result"`
	Satisfies []string `json:"satisfies,omitempty"`
	Evidence  []string `json:"evidence,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// Payload is the body of POST /runs.
type Payload struct {
	Run       RunMeta     `json:"run"`
	Manifest  RunManifest `json:"manifest"`
	Coverage  Coverage    `json:"coverage"`
	Decisions []Decision  `json:"decisions"`
}

// CoverageFrom converts classifier output into the API shape.
func CoverageFrom(c quadrant.Coverage) Coverage {
	return Coverage{
		Requirement:   c.Quadrants.Requirement,
		Temporal:      c.Quadrants.Temporal,
		Interface:     c.Quadrants.Interface,
		Risk:          c.Quadrants.Risk,
		ByRequirement: c.ByRequirement(),
	}
}

func artifactsFrom(entries []manifest.Entry) []Artifact {
	out := make([]Artifact, len(entries))
	for i, e := range entries {
		out[i] = Artifact{Path: e.Path, SHA256: e.SHA256}
	}
	return out
}
