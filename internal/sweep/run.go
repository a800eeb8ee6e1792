package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aatumaykin/sweepbot/internal/chat"
)

// Run is one in-flight cleanup run for a single chat. State and
// counters are snapshot-readable from other goroutines while the
// sweep progresses.
type Run struct {
	id      string
	chatID  int64
	started time.Time
	cancel  context.CancelFunc

	mu       sync.Mutex
	state    chat.RunState
	counters chat.Counters
}

func newRun(chatID int64, cancel context.CancelFunc) *Run {
	return &Run{
		id:      uuid.NewString(),
		chatID:  chatID,
		started: time.Now(),
		cancel:  cancel,
		state:   chat.StateIdle,
	}
}

// ID returns the run's unique identifier.
func (r *Run) ID() string { return r.id }

// ChatID returns the chat this run sweeps.
func (r *Run) ChatID() int64 { return r.chatID }

// Cancel requests the run to stop after the current batch.
func (r *Run) Cancel() {
	r.cancel()
}

// Snapshot returns the run's current state and counters.
func (r *Run) Snapshot() (chat.RunState, chat.Counters) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.counters
}

func (r *Run) setState(s chat.RunState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Run) setCounters(c chat.Counters) {
	r.mu.Lock()
	r.counters = c
	r.mu.Unlock()
}
