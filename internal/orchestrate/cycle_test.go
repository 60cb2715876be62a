package orchestrate

import "testing"

func TestCycle_AdvanceInOrder(t *testing.T) {
	c := NewCycle()
	for _, s := range []State{StateLoaded, StateUpdated, StatePersisted} {
		if err := c.Advance(s, ""); err != nil {
			t.Fatalf("Advance(%s): %v", s, err)
		}
	}
	if !c.Done() || len(c.History) != 3 {
		t.Fatalf("cycle = %+v", c)
	}
	if c.History[0].From != StateInit || c.History[2].To != StatePersisted {
		t.Errorf("history = %+v", c.History)
	}
}

func TestCycle_RejectsSkipAndRestart(t *testing.T) {
	c := NewCycle()
	if err := c.Advance(StateUpdated, ""); err == nil {
		t.Fatal("init -> updated must fail")
	}
	if c.State != StateInit || len(c.History) != 0 {
		t.Fatalf("failed advance changed the cycle: %+v", c)
	}

	_ = c.Advance(StateLoaded, "")
	_ = c.Advance(StateUpdated, "")
	_ = c.Advance(StatePersisted, "")
	if err := c.Advance(StateLoaded, ""); err == nil {
		t.Fatal("advance past persisted must fail")
	}
}
