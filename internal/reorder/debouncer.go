package reorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	models "savesite/internal/domain/models/bookmarks"
)

// DefaultDelay is how long a scope must be idle before its order is committed.
const DefaultDelay = 800 * time.Millisecond

// CommitFunc persists a position batch for one scope.
type CommitFunc func(ctx context.Context, scopeID string, updates []models.PositionUpdate) error

// Debouncer coalesces rapid proposals for one Session into a single commit
// once the scope has been idle for Delay.
type Debouncer struct {
	// Delay defaults to DefaultDelay. Set it before the first Propose.
	Delay time.Duration

	// OnError receives a failed commit and the order the session rolled back to.
	OnError func(err error, restored []string)

	session *Session
	commit  CommitFunc
	logger  *slog.Logger

	mu       sync.Mutex // guards session, timer and stopped
	timer    *time.Timer
	stopped  bool
	commitMu sync.Mutex // one commit in flight at a time
}

// NewDebouncer creates a debouncer that owns session.
func NewDebouncer(session *Session, commit CommitFunc, logger *slog.Logger) *Debouncer {
	return &Debouncer{
		Delay:   DefaultDelay,
		session: session,
		commit:  commit,
		logger:  logger,
	}
}

// Propose records an optimistic order and restarts the idle timer.
func (d *Debouncer) Propose(order []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.session.Propose(order)
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.Delay, func() {
		_ = d.Flush(context.Background())
	})
}

// Current is the order to display right now.
func (d *Debouncer) Current() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.Current()
}

// Flush commits the pending order immediately. Nothing is sent when the
// pending order does not move anything. On failure the session rolls back,
// OnError is called and the error is returned.
func (d *Debouncer) Flush(ctx context.Context) error {
	d.commitMu.Lock()
	defer d.commitMu.Unlock()

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if !d.session.HasPending() {
		d.mu.Unlock()
		return nil
	}
	updates := d.session.Diff()
	snapshot := d.session.Current()
	if len(updates) == 0 {
		d.session.confirmSnapshot(snapshot)
		d.mu.Unlock()
		return nil
	}
	scopeID := d.session.ScopeID
	d.mu.Unlock()

	err := d.commit(ctx, scopeID, updates)

	d.mu.Lock()
	if err != nil {
		restored := d.session.Rollback()
		d.mu.Unlock()

		d.logger.Warn("reorder commit failed",
			"scope_id", scopeID,
			"changed", len(updates),
			"error", err,
		)
		if d.OnError != nil {
			d.OnError(err, restored)
		}
		return err
	}
	d.session.confirmSnapshot(snapshot)
	d.mu.Unlock()

	d.logger.Debug("reorder committed", "scope_id", scopeID, "changed", len(updates))
	return nil
}

// Stop cancels the idle timer. Pending proposals stay in the session and can
// still be committed with Flush.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
