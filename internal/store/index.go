// Package store maintains the per-chat message index. The Telegram Bot
// API cannot page an arbitrary chat's history, so the connector records
// every message it observes into one JSONL file per chat; the history
// pager walks that index newest-first during a sweep.
package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aatumaykin/sweepbot/internal/chat"
)

// Index manages message index files, one JSONL file per chat.
type Index struct {
	baseDir string
	mu      sync.Mutex
	locks   map[int64]*sync.Mutex // per-chat file locks
}

// entry is the serialized form of one observed message.
type entry struct {
	ID         int    `json:"id"`
	SenderUser int64  `json:"from,omitempty"`
	SenderChat int64  `json:"sender_chat,omitempty"`
	Service    bool   `json:"service,omitempty"`
	Text       string `json:"text,omitempty"`
	Date       int64  `json:"date"`
}

// NewIndex creates an index rooted at baseDir.
func NewIndex(baseDir string) (*Index, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory cannot be empty")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	return &Index{
		baseDir: baseDir,
		locks:   make(map[int64]*sync.Mutex),
	}, nil
}

// lockFor returns the mutex guarding a single chat's file. Locks are
// partitioned by chat so sweeps in distinct chats never contend.
func (i *Index) lockFor(chatID int64) *sync.Mutex {
	i.mu.Lock()
	defer i.mu.Unlock()

	l, ok := i.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		i.locks[chatID] = l
	}
	return l
}

func (i *Index) filePath(chatID int64) string {
	return filepath.Join(i.baseDir, fmt.Sprintf("%d.jsonl", chatID))
}

// Record appends one observed message to its chat's index file.
func (i *Index) Record(msg chat.Message) error {
	l := i.lockFor(msg.ChatID)
	l.Lock()
	defer l.Unlock()

	e := entry{
		ID:         msg.ID,
		SenderUser: msg.SenderUser,
		SenderChat: msg.SenderChat,
		Service:    msg.Service,
		Text:       msg.Text,
		Date:       msg.Date.Unix(),
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal index entry: %w", err)
	}

	file, err := os.OpenFile(i.filePath(msg.ChatID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append index entry: %w", err)
	}

	return nil
}

// FetchPage returns up to limit messages with ID below beforeID,
// newest-first. beforeID 0 starts from the newest recorded message.
// An empty result means the history is exhausted.
//
// The file is streamed; memory stays bounded by limit regardless of
// index size. Index files are append-ordered, which for Telegram means
// ascending message IDs, so the last matching entries are the newest.
func (i *Index) FetchPage(ctx context.Context, chatID int64, beforeID int, limit int) ([]chat.Message, error) {
	if limit < 1 {
		return nil, fmt.Errorf("page limit must be >= 1")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := i.lockFor(chatID)
	l.Lock()
	defer l.Unlock()

	file, err := os.Open(i.filePath(chatID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer file.Close()

	// Ring of the newest matching entries seen so far.
	ring := make([]chat.Message, 0, limit)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			// Corrupt line, skip it rather than abort the sweep.
			continue
		}

		if beforeID != 0 && e.ID >= beforeID {
			continue
		}

		msg := chat.Message{
			ID:         e.ID,
			ChatID:     chatID,
			SenderUser: e.SenderUser,
			SenderChat: e.SenderChat,
			Service:    e.Service,
			Text:       e.Text,
			Date:       time.Unix(e.Date, 0),
		}

		// Redelivered update for an already-recorded message.
		if n := len(ring); n > 0 && ring[n-1].ID == msg.ID {
			ring[n-1] = msg
			continue
		}

		if len(ring) == limit {
			copy(ring, ring[1:])
			ring = ring[:limit-1]
		}
		ring = append(ring, msg)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	// Newest-first.
	for a, b := 0, len(ring)-1; a < b; a, b = a+1, b-1 {
		ring[a], ring[b] = ring[b], ring[a]
	}

	return ring, nil
}

// Forget rewrites a chat's index without the given message ids. Called
// after a sweep so re-running on an unchanged chat deletes nothing.
func (i *Index) Forget(chatID int64, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	drop := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	l := i.lockFor(chatID)
	l.Lock()
	defer l.Unlock()

	path := i.filePath(chatID)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer file.Close()

	tmpPath := path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	defer tmp.Close()

	writer := bufio.NewWriter(tmp)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if _, gone := drop[e.ID]; gone {
			continue
		}

		if _, err := writer.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write temp index file: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read index file: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush temp index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp index file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace index file: %w", err)
	}

	return nil
}

// Purge removes a chat's index file entirely.
func (i *Index) Purge(chatID int64) error {
	l := i.lockFor(chatID)
	l.Lock()
	defer l.Unlock()

	if err := os.Remove(i.filePath(chatID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
