package telegram

import (
	"context"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/mock"
)

// MockBot is a mock implementation of BotInterface for testing.
// It uses testify/mock to record and verify method calls.
type MockBot struct {
	mock.Mock
}

// GetMe returns basic information about the bot.
func (m *MockBot) GetMe(ctx context.Context) (*telego.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telego.User), args.Error(1)
}

// SendMessage sends a text message to a chat.
func (m *MockBot) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telego.Message), args.Error(1)
}

// SetMyCommands sets the bot's command list in the bot menu.
func (m *MockBot) SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

// UpdatesViaLongPolling starts long polling for Telegram updates.
// Returns a channel that will receive updates as they arrive.
func (m *MockBot) UpdatesViaLongPolling(ctx context.Context, params *telego.GetUpdatesParams, opts ...telego.LongPollingOption) (<-chan telego.Update, error) {
	args := m.Called(ctx, params, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Convert chan to <-chan for the return type
	return args.Get(0).(chan telego.Update), args.Error(1)
}

// EditMessageText edits text of a message sent via the bot.
func (m *MockBot) EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telego.Message), args.Error(1)
}

// DeleteMessage deletes a single message.
func (m *MockBot) DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

// DeleteMessages deletes up to 100 messages in one call.
func (m *MockBot) DeleteMessages(ctx context.Context, params *telego.DeleteMessagesParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

// GetChatAdministrators returns the chat's administrator list.
func (m *MockBot) GetChatAdministrators(ctx context.Context, params *telego.GetChatAdministratorsParams) ([]telego.ChatMember, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]telego.ChatMember), args.Error(1)
}

// GetChatMember returns information about one chat member.
func (m *MockBot) GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(telego.ChatMember), args.Error(1)
}

// NewMockBotSuccess creates a MockBot that returns success for all operations.
// This is a helper function for tests that don't need to verify specific behavior.
// All expectations are optional (.Maybe()), so only called methods are checked.
func NewMockBotSuccess() *MockBot {
	mockBot := new(MockBot)

	mockBot.On("GetMe", mock.Anything).Return(&telego.User{
		ID:        123456789,
		FirstName: "Sweep",
		Username:  "sweep_test_bot",
	}, nil).Maybe()

	mockBot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{
		MessageID: 1,
		Text:      "test message",
	}, nil).Maybe()

	mockBot.On("SetMyCommands", mock.Anything, mock.Anything).Return(nil).Maybe()

	mockBot.On("EditMessageText", mock.Anything, mock.Anything).Return(&telego.Message{
		MessageID: 1,
		Text:      "edited message",
	}, nil).Maybe()

	mockBot.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil).Maybe()
	mockBot.On("DeleteMessages", mock.Anything, mock.Anything).Return(nil).Maybe()

	mockBot.On("GetChatAdministrators", mock.Anything, mock.Anything).Return(
		[]telego.ChatMember{}, nil).Maybe()

	mockBot.On("GetChatMember", mock.Anything, mock.Anything).Return(
		telego.ChatMember(&telego.ChatMemberAdministrator{
			User:              telego.User{ID: 123456789},
			CanDeleteMessages: true,
		}), nil).Maybe()

	return mockBot
}

// NewMockBotWithUpdates creates a MockBot that returns a channel with the
// specified updates and success for everything else. This is a helper
// function for testing the update loop.
func NewMockBotWithUpdates(updates ...telego.Update) (*MockBot, <-chan telego.Update) {
	mockBot := NewMockBotSuccess()

	updateCh := make(chan telego.Update, len(updates))
	for _, update := range updates {
		updateCh <- update
	}
	close(updateCh)

	mockBot.On("UpdatesViaLongPolling", mock.Anything, mock.Anything, mock.Anything).Return(updateCh, nil)

	return mockBot, updateCh
}
