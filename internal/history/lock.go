package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockRetryDelay is how often a blocked Lock re-attempts acquisition.
var LockRetryDelay = 100 * time.Millisecond

// Lock is an exclusive advisory lock guarding one history file across
// processes. It lives next to the history as "<path>.lock".
type Lock struct {
	f *flock.Flock
}

// AcquireLock blocks until the lock for historyPath is held or ctx is done.
func AcquireLock(ctx context.Context, historyPath string) (*Lock, error) {
	lockPath := historyPath + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	f := flock.New(lockPath)
	locked, err := f.TryLockContext(ctx, LockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock history %s: %w", historyPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock history %s: not acquired", historyPath)
	}
	return &Lock{f: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.f.Path() }

// Unlock releases the lock. Safe to call more than once.
func (l *Lock) Unlock() error {
	if l == nil || !l.f.Locked() {
		return nil
	}
	return l.f.Unlock()
}
