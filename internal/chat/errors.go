package chat

import (
	"errors"
	"fmt"
)

// Sentinel errors for run admission and authorization. The orchestrator
// maps these onto user-visible rejection messages.
var (
	// ErrRunInProgress rejects a cleanup request while another run is
	// active for the same chat.
	ErrRunInProgress = errors.New("cleanup already in progress for this chat")

	// ErrUnauthorized rejects a request from a principal the
	// authorization check does not allow.
	ErrUnauthorized = errors.New("principal is not allowed to trigger cleanup")

	// ErrInsufficientRights rejects a run when the bot itself lacks
	// delete permission in the chat.
	ErrInsufficientRights = errors.New("bot lacks delete permission in this chat")

	// ErrCancelled aborts a run on an explicit stop signal or a
	// caller-supplied deadline.
	ErrCancelled = errors.New("cleanup cancelled")
)

// DirectoryError wraps a failed admin-list resolution.
type DirectoryError struct {
	ChatID int64
	Err    error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("admin directory: chat %d: %v", e.ChatID, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// HistoryError wraps a failed history page fetch. Cursor is the page
// cursor that failed, 0 for the first page.
type HistoryError struct {
	ChatID int64
	Cursor int
	Err    error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history page: chat %d cursor %d: %v", e.ChatID, e.Cursor, e.Err)
}

func (e *HistoryError) Unwrap() error { return e.Err }
