package sweep

import (
	"sync"

	"github.com/aatumaykin/sweepbot/internal/chat"
)

// registry enforces the at-most-one-run-per-chat invariant and keeps
// the last finished report per chat for /status.
type registry struct {
	mu     sync.Mutex
	active map[int64]*Run
	last   map[int64]chat.Report
}

func newRegistry() *registry {
	return &registry{
		active: make(map[int64]*Run),
		last:   make(map[int64]chat.Report),
	}
}

// begin claims the chat for run. Returns chat.ErrRunInProgress when
// another run already holds it.
func (r *registry) begin(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.active[run.chatID]; busy {
		return chat.ErrRunInProgress
	}
	r.active[run.chatID] = run
	return nil
}

// end releases the chat and records the run's final report.
func (r *registry) end(chatID int64, report chat.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.active, chatID)
	r.last[chatID] = report
}

// get returns the chat's active run, nil if none.
func (r *registry) get(chatID int64) *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[chatID]
}

// lastReport returns the most recent finished report for the chat.
func (r *registry) lastReport(chatID int64) (chat.Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.last[chatID]
	return report, ok
}
