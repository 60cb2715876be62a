// Package quadrant classifies a test report into the four coverage
// quadrants: requirement, temporal, interface and risk.
//
// A test belongs to a quadrant through pytest-style markers, either the
// comma-separated "markers" property or the quadrant name appearing in its
// class or test name. Requirement coverage comes from "requirement_id"
// properties only.
package quadrant

import (
	"sort"
	"strings"

	"mirror/internal/junit"
)

// Marker names. Requirement is also inferred from names but only
// requirement_id properties count toward requirement coverage.
const (
	Requirement = "requirement"
	Temporal    = "temporal"
	Interface   = "interface"
	Risk        = "risk"
)

// Names lists the quadrants in display order.
var Names = []string{Requirement, Temporal, Interface, Risk}

// Counts is the pass/fail tally for one requirement id.
type Counts struct {
	Pass int `json:"pass"`
	Fail int `json:"fail"`
}

// Quadrants holds the per-quadrant scores in [0,1].
type Quadrants struct {
	Requirement float64 `json:"requirement"`
	Temporal    float64 `json:"temporal"`
	Interface   float64 `json:"interface"`
	Risk        float64 `json:"risk"`
}

// Get returns the score for a quadrant name.
func (q Quadrants) Get(name string) float64 {
	switch name {
	case Requirement:
		return q.Requirement
	case Temporal:
		return q.Temporal
	case Interface:
		return q.Interface
	case Risk:
		return q.Risk
	}
	return 0
}

// Coverage is the classifier output written to coverage.json.
type Coverage struct {
	Total        int               `json:"total"`
	Passed       int               `json:"passed"`
	PassRate     float64           `json:"pass_rate"`
	Quadrants    Quadrants         `json:"quadrants"`
	Requirements map[string]Counts `json:"requirements"`
}

// Markers returns the quadrant markers of one test.
func Markers(r junit.Result) map[string]bool {
	marks := map[string]bool{}
	for _, v := range r.PropertyValues("markers") {
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				marks[m] = true
			}
		}
	}
	text := strings.ToLower(r.ClassName + "::" + r.Name)
	for _, m := range []string{Interface, Temporal, Risk, Requirement} {
		if strings.Contains(text, m) {
			marks[m] = true
		}
	}
	return marks
}

// Compute classifies every result. With no tests all scores are 0 except
// risk, which is 0.5 (unknown risk is neither covered nor uncovered).
func Compute(results []junit.Result) Coverage {
	cov := Coverage{Requirements: map[string]Counts{}}
	var interfaceN, temporalN, riskN, requirementN int

	for _, r := range results {
		cov.Total++
		failed := r.Outcome.Failed()
		if !failed {
			cov.Passed++
		}

		marks := Markers(r)
		if marks[Interface] {
			interfaceN++
		}
		if marks[Temporal] {
			temporalN++
		}
		if marks[Risk] {
			riskN++
		}

		ids := r.PropertyValues("requirement_id")
		for _, id := range ids {
			c := cov.Requirements[id]
			if failed {
				c.Fail++
			} else {
				c.Pass++
			}
			cov.Requirements[id] = c
		}
		if len(ids) > 0 {
			requirementN++
		}
	}

	if cov.Total == 0 {
		cov.Quadrants.Risk = 0.5
		return cov
	}
	total := float64(cov.Total)
	cov.PassRate = float64(cov.Passed) / total
	cov.Quadrants = Quadrants{
		Requirement: float64(requirementN) / total,
		Temporal:    float64(temporalN) / total,
		Interface:   float64(interfaceN) / total,
		Risk:        float64(riskN) / total,
	}
	return cov
}

// RequirementResult is the per-requirement verdict carried in a payload.
type RequirementResult struct {
	ID     string `json:"id"`
	Result string `json:"result"` // pass, fail or unknown
}

// ByRequirement flattens the tallies into verdicts sorted by id. Any failure
// fails the requirement; no observations at all is unknown.
func (c Coverage) ByRequirement() []RequirementResult {
	ids := make([]string, 0, len(c.Requirements))
	for id := range c.Requirements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]RequirementResult, 0, len(ids))
	for _, id := range ids {
		n := c.Requirements[id]
		result := "unknown"
		switch {
		case n.Fail > 0:
			result = "fail"
		case n.Pass > 0:
			result = "pass"
		}
		out = append(out, RequirementResult{ID: id, Result: result})
	}
	return out
}
