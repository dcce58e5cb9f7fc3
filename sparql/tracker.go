package sparql

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// State is the lifecycle position of a view's query.
type State int

const (
	// StateIdle means no query has been issued, or the last one was abandoned.
	StateIdle State = iota
	// StatePending means a query is in flight.
	StatePending
	// StateSuccess means the latest query resolved with a result set.
	StateSuccess
	// StateError means the latest query resolved with a QueryError.
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Ticket identifies one call started through a Tracker.
type Ticket struct {
	ID  string
	seq uint64
}

// Tracker runs the idle → pending → {success, error} lifecycle of one view.
// Beginning a call supersedes the previous pending call: its context is
// cancelled and its eventual completion is reported as stale.
type Tracker struct {
	mu      sync.Mutex
	seq     uint64
	state   State
	current Ticket
	cancel  context.CancelFunc
	lastErr error
}

// NewTracker creates an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin enters the pending state for a new call and returns the context the
// call must run under.
func (t *Tracker) Begin(ctx context.Context) (context.Context, Ticket) {
	callCtx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.seq++
	t.current = Ticket{ID: uuid.New().String(), seq: t.seq}
	t.cancel = cancel
	t.state = StatePending
	t.lastErr = nil

	return callCtx, t.current
}

// Complete resolves the call identified by tk. It returns false when tk was
// superseded or abandoned, in which case the result must be discarded.
func (t *Tracker) Complete(tk Ticket, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tk.seq != t.seq || t.state != StatePending {
		return false
	}

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if err != nil {
		t.state = StateError
		t.lastErr = err
	} else {
		t.state = StateSuccess
	}
	return true
}

// Abandon cancels a pending call and returns the tracker to idle.
func (t *Tracker) Abandon() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePending {
		return
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.seq++
	t.state = StateIdle
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Current returns the ticket of the latest call.
func (t *Tracker) Current() Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Err returns the error of the latest resolved call, if it failed.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}
