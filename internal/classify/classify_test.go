package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/sweepbot/internal/chat"
)

const groupID int64 = -100777

func admins(ids ...int64) chat.AdminSet {
	users := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		users[id] = struct{}{}
	}
	return chat.AdminSet{ChatID: groupID, Users: users}
}

func TestIsProtected(t *testing.T) {
	policy, err := NewPolicy(true, nil)
	require.NoError(t, err)

	adminSet := admins(1, 2)

	tests := []struct {
		name string
		msg  chat.Message
		want bool
	}{
		{
			name: "admin sender",
			msg:  chat.Message{ID: 10, ChatID: groupID, SenderUser: 1},
			want: true,
		},
		{
			name: "non-admin sender",
			msg:  chat.Message{ID: 11, ChatID: groupID, SenderUser: 99},
			want: false,
		},
		{
			name: "anonymous post as chat",
			msg:  chat.Message{ID: 12, ChatID: groupID, SenderChat: groupID},
			want: true,
		},
		{
			name: "forwarded from another channel",
			msg:  chat.Message{ID: 13, ChatID: groupID, SenderUser: 99, SenderChat: -100999},
			want: false,
		},
		{
			name: "service message under protect policy",
			msg:  chat.Message{ID: 14, ChatID: groupID, Service: true},
			want: true,
		},
		{
			name: "no sender at all",
			msg:  chat.Message{ID: 15, ChatID: groupID},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.IsProtected(tt.msg, adminSet))
		})
	}
}

func TestIsProtected_ServiceDeletePolicy(t *testing.T) {
	policy, err := NewPolicy(false, nil)
	require.NoError(t, err)

	msg := chat.Message{ID: 1, ChatID: groupID, Service: true}
	assert.False(t, policy.IsProtected(msg, admins()))

	// An admin-attributed service message stays protected.
	msg = chat.Message{ID: 2, ChatID: groupID, Service: true, SenderUser: 1}
	assert.True(t, policy.IsProtected(msg, admins(1)))
}

func TestIsProtected_KeepPatterns(t *testing.T) {
	policy, err := NewPolicy(true, []string{`(?i)#pinned`, `^RULES:`})
	require.NoError(t, err)

	adminSet := admins(1)

	assert.True(t, policy.IsProtected(chat.Message{ID: 1, ChatID: groupID, SenderUser: 9, Text: "see #Pinned post"}, adminSet))
	assert.True(t, policy.IsProtected(chat.Message{ID: 2, ChatID: groupID, SenderUser: 9, Text: "RULES: be kind"}, adminSet))
	assert.False(t, policy.IsProtected(chat.Message{ID: 3, ChatID: groupID, SenderUser: 9, Text: "hello"}, adminSet))
}

func TestIsProtected_NormalizesTextBeforeMatching(t *testing.T) {
	policy, err := NewPolicy(true, []string{`№42`})
	require.NoError(t, err)

	// U+2116 in fullwidth-compatible text normalizes under NFKC.
	assert.True(t, policy.IsProtected(chat.Message{ID: 1, ChatID: groupID, SenderUser: 9, Text: "order №42 stays"}, admins()))
}

func TestNewPolicy_InvalidPattern(t *testing.T) {
	_, err := NewPolicy(true, []string{`[unterminated`})
	assert.Error(t, err)
}

func TestIsProtected_Deterministic(t *testing.T) {
	policy, err := NewPolicy(true, nil)
	require.NoError(t, err)

	msg := chat.Message{ID: 1, ChatID: groupID, SenderUser: 5}
	set := admins(5)
	for i := 0; i < 3; i++ {
		assert.True(t, policy.IsProtected(msg, set))
	}
}
