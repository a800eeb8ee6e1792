package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/sweepbot/internal/chat"
)

const testChatID int64 = -100123456

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(t.TempDir())
	require.NoError(t, err)
	return idx
}

func record(t *testing.T, idx *Index, id int, from int64) {
	t.Helper()
	require.NoError(t, idx.Record(chat.Message{
		ID:         id,
		ChatID:     testChatID,
		SenderUser: from,
		Text:       "msg",
		Date:       time.Now(),
	}))
}

func TestIndex_EmptyChat(t *testing.T) {
	idx := newTestIndex(t)

	page, err := idx.FetchPage(context.Background(), testChatID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestIndex_PagesNewestFirst(t *testing.T) {
	idx := newTestIndex(t)
	for id := 1; id <= 5; id++ {
		record(t, idx, id, 42)
	}

	page, err := idx.FetchPage(context.Background(), testChatID, 0, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []int{5, 4, 3}, []int{page[0].ID, page[1].ID, page[2].ID})

	// Next page continues below the last cursor.
	page, err = idx.FetchPage(context.Background(), testChatID, page[2].ID, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, []int{2, 1}, []int{page[0].ID, page[1].ID})

	// Exhausted.
	page, err = idx.FetchPage(context.Background(), testChatID, page[1].ID, 3)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestIndex_RedeliveredMessageNotDuplicated(t *testing.T) {
	idx := newTestIndex(t)
	record(t, idx, 1, 42)
	record(t, idx, 1, 42)
	record(t, idx, 2, 43)

	page, err := idx.FetchPage(context.Background(), testChatID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 2, page[0].ID)
	assert.Equal(t, 1, page[1].ID)
}

func TestIndex_PreservesSenderFields(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Record(chat.Message{
		ID:         7,
		ChatID:     testChatID,
		SenderChat: testChatID, // anonymous admin post
		Service:    false,
		Text:       "announcement",
		Date:       time.Unix(1700000000, 0),
	}))

	page, err := idx.FetchPage(context.Background(), testChatID, 0, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, testChatID, page[0].SenderChat)
	assert.Equal(t, int64(0), page[0].SenderUser)
	assert.Equal(t, "announcement", page[0].Text)
	assert.Equal(t, int64(1700000000), page[0].Date.Unix())
}

func TestIndex_Forget(t *testing.T) {
	idx := newTestIndex(t)
	for id := 1; id <= 5; id++ {
		record(t, idx, id, 42)
	}

	require.NoError(t, idx.Forget(testChatID, []int{2, 4}))

	page, err := idx.FetchPage(context.Background(), testChatID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []int{5, 3, 1}, []int{page[0].ID, page[1].ID, page[2].ID})

	// Forgetting nothing is a no-op, as is forgetting in an empty chat.
	require.NoError(t, idx.Forget(testChatID, nil))
	require.NoError(t, idx.Forget(int64(999), []int{1}))
}

func TestIndex_Purge(t *testing.T) {
	idx := newTestIndex(t)
	record(t, idx, 1, 42)

	require.NoError(t, idx.Purge(testChatID))

	page, err := idx.FetchPage(context.Background(), testChatID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	// Purging twice is fine.
	require.NoError(t, idx.Purge(testChatID))
}

func TestIndex_ChatsAreIndependent(t *testing.T) {
	idx := newTestIndex(t)
	record(t, idx, 1, 42)
	require.NoError(t, idx.Record(chat.Message{ID: 9, ChatID: -200, SenderUser: 7, Date: time.Now()}))

	page, err := idx.FetchPage(context.Background(), testChatID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 1, page[0].ID)

	other, err := idx.FetchPage(context.Background(), -200, 0, 10)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, 9, other[0].ID)
}

func TestNewIndex_EmptyDir(t *testing.T) {
	_, err := NewIndex("")
	assert.Error(t, err)
}
