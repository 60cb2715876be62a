// Package model defines the value types shared by the extractor, the history
// store and the scorer.
package model

import "fmt"

// TestID names a test across runs. It is "classname.name" for JUnit input and
// must be stable between runs for history to mean anything.
type TestID string

// Outcome is the result of one test in one run.
type Outcome string

const (
	OutcomePass  Outcome = "pass"
	OutcomeFail  Outcome = "fail"
	OutcomeError Outcome = "error"
	OutcomeSkip  Outcome = "skip"
)

// Outcomes lists every valid outcome in a fixed order.
var Outcomes = []Outcome{OutcomePass, OutcomeFail, OutcomeError, OutcomeSkip}

// Valid reports whether o is one of the four known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePass, OutcomeFail, OutcomeError, OutcomeSkip:
		return true
	}
	return false
}

// Failed is true for fail and error. Skips are not failures.
func (o Outcome) Failed() bool {
	return o == OutcomeFail || o == OutcomeError
}

// ParseOutcome converts a persisted string back to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if !o.Valid() {
		return "", fmt.Errorf("unknown outcome %q", s)
	}
	return o, nil
}

// Pair is one (test, outcome) observation produced by an extractor.
type Pair struct {
	ID      TestID  `json:"test_id"`
	Outcome Outcome `json:"outcome"`
}
