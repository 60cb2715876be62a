package history

import "fmt"

// CorruptHistoryError means the persisted history could not be read as a
// mapping of test ids to outcome lists. Load still returns a usable empty
// store alongside it; whether to continue is the caller's call.
type CorruptHistoryError struct {
	Path string
	Err  error
}

func (e *CorruptHistoryError) Error() string {
	return fmt.Sprintf("corrupt history %s: %v", e.Path, e.Err)
}

func (e *CorruptHistoryError) Unwrap() error { return e.Err }

// PersistenceWriteError means the updated history could not be committed.
// The previously persisted file is left untouched.
type PersistenceWriteError struct {
	Path string
	Err  error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("write history %s: %v", e.Path, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error { return e.Err }
