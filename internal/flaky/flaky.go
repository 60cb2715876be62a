// Package flaky scores outcome windows for instability.
//
// The score of a window is the fraction of temporally adjacent pairs whose
// outcomes differ. Every outcome is its own category, so pass->error counts
// the same as pass->fail.
package flaky

import (
	"math"
	"sort"

	"mirror/internal/history"
	"mirror/internal/model"
)

const (
	// MinRuns is the shortest window that gets a score.
	MinRuns = 4
	// Threshold is the score a test must strictly exceed to be flaky.
	Threshold = 0.2
	// DefaultTop is how many findings human-readable summaries show.
	DefaultTop = 10
)

// Finding is one test classified as flaky.
type Finding struct {
	ID          model.TestID    `json:"test_id"`
	Score       float64         `json:"score"`
	Transitions int             `json:"transitions"`
	Runs        int             `json:"runs"`
	Outcomes    []model.Outcome `json:"outcomes"`
}

// Transitions counts adjacent pairs with different outcomes.
func Transitions(outcomes []model.Outcome) int {
	n := 0
	for i := 1; i < len(outcomes); i++ {
		if outcomes[i-1] != outcomes[i] {
			n++
		}
	}
	return n
}

// Score returns the flakiness of outcomes (oldest first). ok is false when
// there are fewer than MinRuns outcomes; absent is not the same as zero.
func Score(outcomes []model.Outcome) (score float64, ok bool) {
	if len(outcomes) < MinRuns {
		return 0, false
	}
	return float64(Transitions(outcomes)) / float64(len(outcomes)-1), true
}

// IsFlaky reports whether score crosses the threshold. Exactly 0.2 is stable.
func IsFlaky(score float64) bool {
	return score > Threshold
}

// Round rounds a score to 3 decimal places for reporting.
func Round(score float64) float64 {
	return math.Round(score*1000) / 1000
}

// Evaluate scores a single window. ok is false when the window is too short.
func Evaluate(id model.TestID, w *history.Window) (Finding, bool) {
	outcomes := w.Outcomes()
	score, ok := Score(outcomes)
	if !ok {
		return Finding{}, false
	}
	return Finding{
		ID:          id,
		Score:       Round(score),
		Transitions: Transitions(outcomes),
		Runs:        len(outcomes),
		Outcomes:    outcomes,
	}, true
}

// Detect returns every flaky test among entries, highest score first, ties
// broken by id. Classification uses the unrounded score.
func Detect(entries []history.Entry) []Finding {
	var out []Finding
	for _, e := range entries {
		raw, ok := Score(e.Window.Outcomes())
		if !ok || !IsFlaky(raw) {
			continue
		}
		f, _ := Evaluate(e.ID, e.Window)
		out = append(out, f)
	}
	Sort(out)
	return out
}

// Sort orders findings by descending score, then ascending id.
func Sort(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Score != findings[j].Score {
			return findings[i].Score > findings[j].Score
		}
		return findings[i].ID < findings[j].ID
	})
}

// Top returns at most n findings. n <= 0 means all.
func Top(findings []Finding, n int) []Finding {
	if n <= 0 || len(findings) <= n {
		return findings
	}
	return findings[:n]
}

// Scores flattens findings into the id -> score mapping written to disk.
func Scores(findings []Finding) map[model.TestID]float64 {
	out := make(map[model.TestID]float64, len(findings))
	for _, f := range findings {
		out[f.ID] = f.Score
	}
	return out
}
