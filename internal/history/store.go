// Package history persists a bounded per-test outcome window across CI runs.
//
// The whole mapping is one JSON document, rewritten in full on every Save
// through a temp file and rename, so a crash mid-write never leaves a
// truncated history behind.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"mirror/internal/fsutil"
	"mirror/internal/model"
)

// DefaultPath is where the history lives relative to the working directory.
const DefaultPath = "reports/test_history.json"

// Store maps test ids to their outcome windows. It is not safe for
// concurrent use; one invocation owns it from Load to Save.
type Store struct {
	path    string
	windows map[model.TestID]*Window
}

// Entry is one (id, window) pair yielded by All.
type Entry struct {
	ID     model.TestID
	Window *Window
}

// New returns an empty store that will be saved to path.
func New(path string) *Store {
	return &Store{path: path, windows: make(map[model.TestID]*Window)}
}

// Load reads the history at path. A missing file yields an empty store and no
// error. Content that is not a JSON object of string lists with known outcome
// values yields an empty store and a *CorruptHistoryError.
func Load(path string) (*Store, error) {
	s := New(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read history %s: %w", path, err)
	}

	var raw map[string][]string
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return s, &CorruptHistoryError{Path: path, Err: err}
	}
	if raw == nil {
		return s, &CorruptHistoryError{Path: path, Err: errors.New("top-level value is not an object")}
	}
	if dec.More() {
		return s, &CorruptHistoryError{Path: path, Err: errors.New("trailing data after history object")}
	}

	windows := make(map[model.TestID]*Window, len(raw))
	for id, list := range raw {
		w := &Window{}
		for i, v := range list {
			o, err := model.ParseOutcome(v)
			if err != nil {
				return s, &CorruptHistoryError{Path: path, Err: fmt.Errorf("test %q entry %d: %w", id, i, err)}
			}
			w.Push(o)
		}
		windows[model.TestID(id)] = w
	}
	s.windows = windows
	return s, nil
}

// Path returns the file the store saves to.
func (s *Store) Path() string { return s.path }

// Record appends outcome to the window for id, creating it if needed.
func (s *Store) Record(id model.TestID, outcome model.Outcome) {
	w, ok := s.windows[id]
	if !ok {
		w = &Window{}
		s.windows[id] = w
	}
	w.Push(outcome)
}

// RecordAll records pairs in the order given.
func (s *Store) RecordAll(pairs []model.Pair) {
	for _, p := range pairs {
		s.Record(p.ID, p.Outcome)
	}
}

// Window returns the window for id.
func (s *Store) Window(id model.TestID) (*Window, bool) {
	w, ok := s.windows[id]
	return w, ok
}

// Len returns the number of tracked tests.
func (s *Store) Len() int { return len(s.windows) }

// All returns every tracked test, sorted by id.
func (s *Store) All() []Entry {
	out := make([]Entry, 0, len(s.windows))
	for id, w := range s.windows {
		out = append(out, Entry{ID: id, Window: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns the persisted form: id -> outcomes, oldest first.
func (s *Store) Snapshot() map[string][]string {
	out := make(map[string][]string, len(s.windows))
	for id, w := range s.windows {
		outcomes := w.Outcomes()
		list := make([]string, len(outcomes))
		for i, o := range outcomes {
			list[i] = string(o)
		}
		out[string(id)] = list
	}
	return out
}

// Save writes the whole store to its path, replacing the previous file
// atomically. Errors are *PersistenceWriteError.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return &PersistenceWriteError{Path: s.path, Err: err}
	}
	data = append(data, '\n')
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return &PersistenceWriteError{Path: s.path, Err: err}
	}
	return nil
}
