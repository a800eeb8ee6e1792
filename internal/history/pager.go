// Package history streams a chat's message history as a lazy sequence
// of bounded pages, newest-first. Pages are fetched on demand and
// handed to the caller one at a time, so memory stays bounded no matter
// how long the chat's history is.
package history

import (
	"context"
	"fmt"

	"github.com/aatumaykin/sweepbot/internal/chat"
)

// PageClient fetches one page of history. beforeID 0 means "from the
// newest message"; an empty page means the history is exhausted.
type PageClient interface {
	FetchPage(ctx context.Context, chatID int64, beforeID int, limit int) ([]chat.Message, error)
}

// Pager walks history in configured page sizes.
type Pager struct {
	client       PageClient
	pageSize     int
	messageLimit int // 0 = unbounded
}

// NewPager creates a pager. messageLimit caps the total number of
// messages visited per walk, 0 for no cap.
func NewPager(client PageClient, pageSize, messageLimit int) *Pager {
	if pageSize < 1 {
		pageSize = 200
	}
	return &Pager{
		client:       client,
		pageSize:     pageSize,
		messageLimit: messageLimit,
	}
}

// Walk streams the chat's history newest-first, calling fn once per
// page until the history is exhausted, the message limit is reached,
// fn returns an error, or ctx is cancelled. Each call re-walks from the
// top; a walk never resumes a prior partial walk.
//
// A fetch failure is returned as *chat.HistoryError; errors from fn
// pass through unchanged.
func (p *Pager) Walk(ctx context.Context, chatID int64, fn func(page []chat.Message) error) error {
	cursor := 0
	seen := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		size := p.pageSize
		if p.messageLimit > 0 && p.messageLimit-seen < size {
			size = p.messageLimit - seen
			if size <= 0 {
				return nil
			}
		}

		page, err := p.client.FetchPage(ctx, chatID, cursor, size)
		if err != nil {
			return &chat.HistoryError{ChatID: chatID, Cursor: cursor, Err: err}
		}
		if len(page) == 0 {
			return nil
		}

		next := page[len(page)-1].ID
		if cursor != 0 && next >= cursor {
			return &chat.HistoryError{
				ChatID: chatID,
				Cursor: cursor,
				Err:    fmt.Errorf("page cursor did not advance (%d -> %d)", cursor, next),
			}
		}

		if err := fn(page); err != nil {
			return err
		}

		seen += len(page)
		if p.messageLimit > 0 && seen >= p.messageLimit {
			return nil
		}

		cursor = next
	}
}
