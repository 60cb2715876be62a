// Package report writes detection results for people and for downstream
// tooling.
package report

import (
	"fmt"

	"mirror/internal/flaky"
	"mirror/internal/fsutil"
	"mirror/internal/model"
)

// DefaultFlakyPath is where the flaky-test mapping is written.
const DefaultFlakyPath = "reports/flaky_tests.json"

// WriteFlaky writes the test id -> score mapping of every finding. An empty
// slice produces "{}", so consumers can always read the file.
func WriteFlaky(path string, findings []flaky.Finding) error {
	return fsutil.WriteJSON(path, flaky.Scores(findings))
}

// ReadFlaky reads a mapping written by WriteFlaky back into sorted findings.
// Only ID and Score are populated.
func ReadFlaky(path string) ([]flaky.Finding, error) {
	var scores map[string]float64
	found, err := fsutil.ReadJSON(path, &scores)
	if err != nil {
		return nil, fmt.Errorf("read flaky report: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("read flaky report: %s does not exist", path)
	}
	out := make([]flaky.Finding, 0, len(scores))
	for id, s := range scores {
		out = append(out, flaky.Finding{ID: model.TestID(id), Score: s})
	}
	flaky.Sort(out)
	return out, nil
}
