package history

import "mirror/internal/model"

// WindowSize is the number of most recent outcomes kept per test.
const WindowSize = 10

// Window is a fixed-capacity FIFO of outcomes, oldest first. Once full,
// each Push evicts exactly the oldest entry.
type Window struct {
	buf   [WindowSize]model.Outcome
	start int
	n     int
}

// NewWindow returns a window holding the last WindowSize of outcomes, in order.
func NewWindow(outcomes ...model.Outcome) *Window {
	w := &Window{}
	for _, o := range outcomes {
		w.Push(o)
	}
	return w
}

// Push appends o, evicting the oldest outcome when the window is full.
func (w *Window) Push(o model.Outcome) {
	if w.n < WindowSize {
		w.buf[(w.start+w.n)%WindowSize] = o
		w.n++
		return
	}
	w.buf[w.start] = o
	w.start = (w.start + 1) % WindowSize
}

// Len returns the number of recorded outcomes.
func (w *Window) Len() int { return w.n }

// Outcomes returns a copy of the window in temporal order (oldest first).
func (w *Window) Outcomes() []model.Outcome {
	out := make([]model.Outcome, w.n)
	for i := 0; i < w.n; i++ {
		out[i] = w.buf[(w.start+i)%WindowSize]
	}
	return out
}

// Latest returns the most recent outcome, or false if the window is empty.
func (w *Window) Latest() (model.Outcome, bool) {
	if w.n == 0 {
		return "", false
	}
	return w.buf[(w.start+w.n-1)%WindowSize], true
}
