// Package directory resolves and caches the administrator set of a
// chat. The cache avoids re-querying the admin list for every message
// classified during a sweep; the orchestrator refreshes it at the start
// of each run so admin changes are respected across runs, never mid-run.
package directory

import (
	"context"
	"sync"
	"time"

	"github.com/aatumaykin/sweepbot/internal/chat"
)

// ListClient is the platform call that lists chat administrators.
type ListClient interface {
	ListAdmins(ctx context.Context, chatID int64) (map[int64]struct{}, error)
}

// Directory caches admin sets keyed by chat identity.
type Directory struct {
	client ListClient
	ttl    time.Duration // 0 = entries live until explicitly invalidated

	mu    sync.RWMutex
	cache map[int64]chat.AdminSet

	now func() time.Time
}

// New creates a directory over client. A zero ttl means entries never
// expire on their own; callers refresh per run.
func New(client ListClient, ttl time.Duration) *Directory {
	return &Directory{
		client: client,
		ttl:    ttl,
		cache:  make(map[int64]chat.AdminSet),
		now:    time.Now,
	}
}

// Resolve returns the admin set for a chat, from cache when fresh.
func (d *Directory) Resolve(ctx context.Context, chatID int64) (chat.AdminSet, error) {
	d.mu.RLock()
	set, ok := d.cache[chatID]
	d.mu.RUnlock()

	if ok && !d.expired(set) {
		return set, nil
	}

	return d.Refresh(ctx, chatID)
}

// Refresh forces re-resolution, replacing any cached entry.
func (d *Directory) Refresh(ctx context.Context, chatID int64) (chat.AdminSet, error) {
	users, err := d.client.ListAdmins(ctx, chatID)
	if err != nil {
		return chat.AdminSet{}, &chat.DirectoryError{ChatID: chatID, Err: err}
	}

	set := chat.AdminSet{
		ChatID:     chatID,
		Users:      users,
		ResolvedAt: d.now(),
	}

	d.mu.Lock()
	d.cache[chatID] = set
	d.mu.Unlock()

	return set, nil
}

// Invalidate drops a chat's cached entry; the next Resolve re-queries.
func (d *Directory) Invalidate(chatID int64) {
	d.mu.Lock()
	delete(d.cache, chatID)
	d.mu.Unlock()
}

func (d *Directory) expired(set chat.AdminSet) bool {
	if d.ttl <= 0 {
		return false
	}
	return d.now().Sub(set.ResolvedAt) > d.ttl
}
