// Package orchestrate drives one detection run: load the history, record the
// current report's outcomes, persist, then score.
//
// A crash between recording and persisting loses only the current run's
// update; the previously saved history is never partially overwritten.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mirror/internal/flaky"
	"mirror/internal/history"
	"mirror/internal/logging"
	"mirror/internal/model"
)

// RunnerConfig holds configuration for a detection run.
type RunnerConfig struct {
	HistoryPath string       // persisted history; defaults to history.DefaultPath
	Lock        bool         // hold an exclusive advisory lock from load to save
	Logger      *slog.Logger // defaults to logging.New("orchestrate")
}

// DefaultRunnerConfig returns a RunnerConfig with sensible defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		HistoryPath: history.DefaultPath,
		Lock:        true,
	}
}

// saveHistory persists the store; swapped in tests.
var saveHistory = (*history.Store).Save

// Result is what a completed run hands to the report emitter.
type Result struct {
	Tracked  int             // tests with any history after this run
	Recorded int             // pairs recorded from this run's report
	Findings []flaky.Finding // flaky tests, highest score first
	Warnings []string        // non-fatal problems, e.g. a reset history
	Cycle    *Cycle
}

// Run executes load -> update -> persist and scores every window. A corrupt
// history is logged, reported in Result.Warnings and replaced by an empty
// store. Save failures are returned as *history.PersistenceWriteError.
func Run(ctx context.Context, cfg RunnerConfig, pairs []model.Pair) (*Result, error) {
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = history.DefaultPath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("orchestrate")
	}

	if cfg.Lock {
		lock, err := history.AcquireLock(ctx, cfg.HistoryPath)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn("release history lock", "path", lock.Path(), "error", err)
			}
		}()
	}

	res := &Result{Cycle: NewCycle()}

	st, err := history.Load(cfg.HistoryPath)
	if err != nil {
		var che *history.CorruptHistoryError
		if !errors.As(err, &che) {
			return nil, err
		}
		logger.Warn("history unreadable, starting from empty", "path", che.Path, "error", che.Err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("history reset: %v", err))
	}
	if err := res.Cycle.Advance(StateLoaded, fmt.Sprintf("%d tests", st.Len())); err != nil {
		return nil, err
	}

	st.RecordAll(pairs)
	res.Recorded = len(pairs)
	if err := res.Cycle.Advance(StateUpdated, fmt.Sprintf("%d outcomes", len(pairs))); err != nil {
		return nil, err
	}

	if err := saveHistory(st); err != nil {
		return nil, err
	}
	if err := res.Cycle.Advance(StatePersisted, st.Path()); err != nil {
		return nil, err
	}
	logger.Debug("history persisted", "path", st.Path(), "tests", st.Len(), "recorded", len(pairs))

	res.Tracked = st.Len()
	res.Findings = flaky.Detect(st.All())
	return res, nil
}
