// Package chat defines the shared domain types for cleanup runs:
// observed messages, resolved admin sets, run counters and the
// per-run state machine. All sweep components exchange these types.
package chat

import "time"

// Message is a single observed chat message. Produced by the history
// pager, immutable once observed. SenderUser and SenderChat are zero
// when the platform did not attribute the message to a user or chat.
type Message struct {
	ID         int       // Message identifier, monotonically increasing within a chat
	ChatID     int64     // Chat the message belongs to
	SenderUser int64     // Sending user, 0 if absent
	SenderChat int64     // Sending chat for anonymous posts, 0 if absent
	Service    bool      // Service/system message (join, pin, title change)
	Text       string    // Message text or caption, may be empty
	Date       time.Time // Platform timestamp
}

// AdminSet is the set of administrator identities for a chat at the
// moment of resolution. One entry per chat in the directory cache.
type AdminSet struct {
	ChatID     int64
	Users      map[int64]struct{}
	ResolvedAt time.Time
}

// Contains reports whether userID is a known administrator.
func (s AdminSet) Contains(userID int64) bool {
	_, ok := s.Users[userID]
	return ok
}

// Counters tracks the per-run message outcomes. Every message observed
// during a run transitions into exactly one of the three buckets.
type Counters struct {
	Kept    int
	Deleted int
	Errored int
}

// Total returns the number of messages accounted for.
func (c Counters) Total() int {
	return c.Kept + c.Deleted + c.Errored
}

// Add folds other into c.
func (c *Counters) Add(other Counters) {
	c.Kept += other.Kept
	c.Deleted += other.Deleted
	c.Errored += other.Errored
}

// RunState is a cleanup run's position in its lifecycle.
type RunState int

const (
	StateIdle RunState = iota
	StateAuthorizing
	StateResolving
	StateSweeping
	StateReporting
	StateDone
	StateFailed
)

// Terminal reports whether the state admits no further transitions.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthorizing:
		return "authorizing"
	case StateResolving:
		return "resolving"
	case StateSweeping:
		return "sweeping"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Report is the immutable summary of one finished run. A failed run
// still reports the counters accumulated up to the failure point.
type Report struct {
	RunID      string
	ChatID     int64
	State      RunState
	Reason     FailReason // empty when State is StateDone
	Counters   Counters
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the run's wall-clock duration.
func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailReason names why a run ended in StateFailed.
type FailReason string

const (
	ReasonInsufficientRights FailReason = "insufficient_rights"
	ReasonDirectory          FailReason = "directory_error"
	ReasonHistory            FailReason = "history_error"
	ReasonCancelled          FailReason = "cancelled"
	ReasonFatal              FailReason = "fatal"
)
