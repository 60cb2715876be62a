// Package payload assembles the run document pushed to the Mirror API from
// the files a test run leaves in its report directory.
package payload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mirror/internal/cimeta"
	"mirror/internal/fsutil"
	"mirror/internal/manifest"
	"mirror/internal/quadrant"
)

// Inputs read from the report directory.
const (
	DefaultDir      = ".mirror/report"
	DefaultPath     = "payload.json"
	RunManifestFile = "run-manifest.json"
	CoverageFile    = "coverage.json"
	DecisionsFile   = "decisions.json"
	ArtifactsSubdir = "artifacts"
)

// DefaultRunManifest is used when run-manifest.json is absent.
func DefaultRunManifest() RunManifest {
	return RunManifest{Schema: RunManifestSchema, Artifacts: []Artifact{}}
}

// Build reads dir and returns the payload for the run described by meta.
// Missing input files fall back to empty defaults; unparseable ones are
// errors.
func Build(ctx context.Context, dir string, meta cimeta.Meta, now time.Time) (*Payload, error) {
	rm, err := LoadRunManifest(filepath.Join(dir, RunManifestFile))
	if err != nil {
		return nil, err
	}
	cov, err := LoadCoverage(filepath.Join(dir, CoverageFile))
	if err != nil {
		return nil, err
	}
	decisions, err := LoadDecisions(filepath.Join(dir, DecisionsFile))
	if err != nil {
		return nil, err
	}

	artifacts, err := collectArtifacts(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(artifacts) > 0 {
		rm.Artifacts = artifacts
	}
	if rm.Counts.Events == 0 && len(decisions) > 0 {
		rm.Counts.Events = len(decisions)
	}

	return &Payload{
		Run:       RunMeta{Meta: meta, CreatedAt: now.UTC().Format(time.RFC3339Nano)},
		Manifest:  rm,
		Coverage:  cov,
		Decisions: decisions,
	}, nil
}

func collectArtifacts(ctx context.Context, dir string) ([]Artifact, error) {
	root := filepath.Join(dir, ArtifactsSubdir)
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}
	if !info.IsDir() {
		return nil, nil
	}
	entries, err := manifest.Collect(ctx, root, dir)
	if err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}
	return artifactsFrom(entries), nil
}

// LoadRunManifest reads a run manifest, or the default when path is absent.
func LoadRunManifest(path string) (RunManifest, error) {
	rm := DefaultRunManifest()
	if _, err := fsutil.ReadJSON(path, &rm); err != nil {
		return RunManifest{}, err
	}
	if rm.Artifacts == nil {
		rm.Artifacts = []Artifact{}
	}
	return rm, nil
}

// LoadCoverage reads coverage in either the API's flat shape or the
// classifier's {quadrants, requirements} shape. Absent means all zero.
func LoadCoverage(path string) (Coverage, error) {
	c, _, err := readCoverage(path)
	return c, err
}

// ReadCoverage is LoadCoverage for callers that need the file to exist.
func ReadCoverage(path string) (Coverage, error) {
	c, found, err := readCoverage(path)
	if err == nil && !found {
		err = fmt.Errorf("read %s: %w", path, os.ErrNotExist)
	}
	return c, err
}

func readCoverage(path string) (Coverage, bool, error) {
	var raw struct {
		Coverage
		Quadrants    *quadrant.Quadrants        `json:"quadrants"`
		Requirements map[string]quadrant.Counts `json:"requirements"`
	}
	found, err := fsutil.ReadJSON(path, &raw)
	if err != nil {
		return Coverage{}, found, err
	}
	if raw.Quadrants != nil {
		return CoverageFrom(quadrant.Coverage{Quadrants: *raw.Quadrants, Requirements: raw.Requirements}), found, nil
	}
	return raw.Coverage, found, nil
}

// LoadDecisions reads the oracle decisions. Absent means none.
func LoadDecisions(path string) ([]Decision, error) {
	var ds []Decision
	if _, err := fsutil.ReadJSON(path, &ds); err != nil {
		return nil, err
	}
	if ds == nil {
		ds = []Decision{}
	}
	return ds, nil
}

// Write stores p as indented JSON.
func Write(path string, p *Payload) error {
	return fsutil.WriteJSON(path, p)
}

// Read loads a payload written by Write.
func Read(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse payload %s: %w", path, err)
	}
	return &p, nil
}
