// Package refresh implements the ticker-driven background task that keeps
// a refreshable materialized view's target table up to date, grounded on
// the teacher's internal/merge.BackgroundMerger (a single context-scoped
// goroutine driven by a time.Ticker). Unlike the merger, which runs once
// for the process lifetime, a refresh task must support being stopped and
// restarted many times (ALTER ... MODIFY QUERY, ALTER ... MODIFY REFRESH),
// so start/stop are idempotent and guarded by an atomic flag instead of a
// bare context cancellation.
package refresh

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Cycle is the refresh logic a Task drives. internal/mv.RefreshCoordinator
// implements it; Task itself knows nothing about SELECT/INSERT/catalogs.
type Cycle interface {
	// Prepare truncates the scratch table (if any) and returns the
	// INSERT ... SELECT text to run against it (or directly against the
	// target when there is no scratch table).
	Prepare(ctx context.Context) (insertSQL string, err error)
	// Execute runs insertSQL through whatever query engine the caller
	// wired in. A failure here must not corrupt state: the next Prepare
	// call truncates again before retrying.
	Execute(ctx context.Context, insertSQL string) error
	// Transfer moves the scratch table's freshly written data into the
	// target (a no-op when the view has no scratch table, i.e. APPEND).
	Transfer(ctx context.Context) error
}

// Task runs Cycle on a fixed interval until stopped.
type Task struct {
	interval time.Duration
	cycle    Cycle
	label    atomic.Value // string

	mu      sync.Mutex
	cancel  context.CancelFunc
	running atomic.Bool
	done    chan struct{}

	lastErr atomic.Value // *errBox
}

type errBox struct{ err error }

// New creates a task. Call Start to begin running it.
func New(label string, interval time.Duration, cycle Cycle) *Task {
	t := &Task{interval: interval, cycle: cycle}
	t.label.Store(label)
	return t
}

// Rename updates the task's log label, called by LifecycleController.RenameTo
// after the owning view's catalog entry has been renamed so a tick logged
// afterward carries the new qualified name (the "rename the refresher" step
// of renameInMemory).
func (t *Task) Rename(label string) {
	t.label.Store(label)
}

// AlterRefreshParams updates the task's ticking interval, called by
// AlterGuard for ALTER TABLE ... MODIFY REFRESH. The caller must Stop the
// task before calling this and Start it again afterward for the new
// interval to take effect, since the ticker is only (re)created in Start.
func (t *Task) AlterRefreshParams(interval time.Duration) {
	t.mu.Lock()
	t.interval = interval
	t.mu.Unlock()
}

// Start launches the background goroutine if it isn't already running.
// Calling Start on an already-running task is a no-op, matching the
// original's startup() being safe to call when a refresh is already live.
func (t *Task) Start(ctx context.Context) {
	if !t.running.CompareAndSwap(false, true) {
		return
	}
	t.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.mu.Unlock()
	go t.run(runCtx)
}

// Stop halts the background goroutine and waits for the in-flight cycle,
// if any, to finish. Calling Stop on an already-stopped task is a no-op.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
	t.running.Store(false)
}

// Running reports whether the task's goroutine is currently active.
func (t *Task) Running() bool {
	return t.running.Load()
}

// LastError returns the most recent cycle's error, or nil.
func (t *Task) LastError() error {
	v := t.lastErr.Load()
	if v == nil {
		return nil
	}
	return v.(*errBox).err
}

func (t *Task) run(ctx context.Context) {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

// runOnce executes a single refresh cycle, logging but never propagating a
// failure: the next tick tries again, exactly as the original's
// refresh_task keeps ticking through a single failed cycle.
func (t *Task) runOnce(ctx context.Context) {
	label, _ := t.label.Load().(string)
	insertSQL, err := t.cycle.Prepare(ctx)
	if err != nil {
		log.Printf("[refresh] %s: prepare failed: %v", label, err)
		t.lastErr.Store(&errBox{err: err})
		return
	}
	if err := t.cycle.Execute(ctx, insertSQL); err != nil {
		log.Printf("[refresh] %s: insert failed: %v", label, err)
		t.lastErr.Store(&errBox{err: err})
		return
	}
	if err := t.cycle.Transfer(ctx); err != nil {
		log.Printf("[refresh] %s: transfer failed: %v", label, err)
		t.lastErr.Store(&errBox{err: err})
		return
	}
	t.lastErr.Store(&errBox{})
}

// RunNow executes a single cycle synchronously, outside the ticker. The
// backfill a CREATE ... POPULATE triggers runs the same sequence through
// internal/mv's adHocRefresher rather than through a Task.
func (t *Task) RunNow(ctx context.Context) error {
	insertSQL, err := t.cycle.Prepare(ctx)
	if err != nil {
		return err
	}
	if err := t.cycle.Execute(ctx, insertSQL); err != nil {
		return err
	}
	return t.cycle.Transfer(ctx)
}
