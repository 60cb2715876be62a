package orchestrate

import (
	"fmt"
	"time"
)

// State is a stage of one detection run.
type State string

const (
	StateInit      State = "init"
	StateLoaded    State = "loaded"
	StateUpdated   State = "updated"
	StatePersisted State = "persisted"
)

// next is the only legal successor of each state. Persisted is terminal.
var next = map[State]State{
	StateInit:    StateLoaded,
	StateLoaded:  StateUpdated,
	StateUpdated: StatePersisted,
}

// StepRecord is one transition in a cycle's history.
type StepRecord struct {
	From      State  `json:"from"`
	To        State  `json:"to"`
	Note      string `json:"note,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Cycle tracks a run through init -> loaded -> updated -> persisted.
type Cycle struct {
	State   State        `json:"state"`
	History []StepRecord `json:"history"`
}

// NewCycle returns a cycle in the init state.
func NewCycle() *Cycle {
	return &Cycle{State: StateInit}
}

// Advance moves to the given state. Skipping a state or moving backwards is
// an error and leaves the cycle unchanged.
func (c *Cycle) Advance(to State, note string) error {
	want, ok := next[c.State]
	if !ok {
		return fmt.Errorf("cycle already %s", c.State)
	}
	if to != want {
		return fmt.Errorf("illegal transition %s -> %s (want %s)", c.State, to, want)
	}
	c.History = append(c.History, StepRecord{
		From:      c.State,
		To:        to,
		Note:      note,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	c.State = to
	return nil
}

// Done reports whether the cycle reached its terminal state.
func (c *Cycle) Done() bool { return c.State == StatePersisted }
