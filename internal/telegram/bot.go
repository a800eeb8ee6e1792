package telegram

import (
	"context"

	"github.com/mymmrac/telego"
)

// BotInterface defines the Telegram bot API methods used by the connector.
// This interface allows creating mock implementations for testing without
// depending on the concrete telego.Bot implementation.
type BotInterface interface {
	// GetMe returns basic information about the bot.
	GetMe(ctx context.Context) (*telego.User, error)

	// SendMessage sends a text message to a chat.
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)

	// SetMyCommands sets the bot's command list in the bot menu.
	SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error

	// UpdatesViaLongPolling starts long polling for Telegram updates.
	// Returns a channel that will receive updates as they arrive.
	UpdatesViaLongPolling(ctx context.Context, params *telego.GetUpdatesParams, opts ...telego.LongPollingOption) (<-chan telego.Update, error)

	// EditMessageText edits text of a message sent via the bot.
	EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error)

	// DeleteMessage deletes a single message.
	DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error

	// DeleteMessages deletes up to 100 messages in one call.
	DeleteMessages(ctx context.Context, params *telego.DeleteMessagesParams) error

	// GetChatAdministrators returns the chat's administrator list.
	GetChatAdministrators(ctx context.Context, params *telego.GetChatAdministratorsParams) ([]telego.ChatMember, error)

	// GetChatMember returns information about one chat member.
	GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error)
}

// telegoAdapter wraps telego.Bot to implement BotInterface.
// This is a simple adapter that delegates all calls to the underlying bot.
type telegoAdapter struct {
	bot *telego.Bot
}

// NewBotAdapter creates a new BotInterface from a telego.Bot instance.
// This allows using telego.Bot where BotInterface is required,
// enabling both real bot usage and mock implementations in tests.
func NewBotAdapter(bot *telego.Bot) BotInterface {
	return &telegoAdapter{bot: bot}
}

// GetMe returns basic information about the bot.
func (a *telegoAdapter) GetMe(ctx context.Context) (*telego.User, error) {
	return a.bot.GetMe(ctx)
}

// SendMessage sends a text message to a chat.
func (a *telegoAdapter) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	return a.bot.SendMessage(ctx, params)
}

// SetMyCommands sets the bot's command list in the bot menu.
func (a *telegoAdapter) SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error {
	return a.bot.SetMyCommands(ctx, params)
}

// UpdatesViaLongPolling starts long polling for Telegram updates.
// Returns a channel that will receive updates as they arrive.
func (a *telegoAdapter) UpdatesViaLongPolling(ctx context.Context, params *telego.GetUpdatesParams, opts ...telego.LongPollingOption) (<-chan telego.Update, error) {
	return a.bot.UpdatesViaLongPolling(ctx, params, opts...)
}

// EditMessageText edits text of a message sent via the bot.
func (a *telegoAdapter) EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error) {
	return a.bot.EditMessageText(ctx, params)
}

// DeleteMessage deletes a single message.
func (a *telegoAdapter) DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error {
	return a.bot.DeleteMessage(ctx, params)
}

// DeleteMessages deletes up to 100 messages in one call.
func (a *telegoAdapter) DeleteMessages(ctx context.Context, params *telego.DeleteMessagesParams) error {
	return a.bot.DeleteMessages(ctx, params)
}

// GetChatAdministrators returns the chat's administrator list.
func (a *telegoAdapter) GetChatAdministrators(ctx context.Context, params *telego.GetChatAdministratorsParams) ([]telego.ChatMember, error) {
	return a.bot.GetChatAdministrators(ctx, params)
}

// GetChatMember returns information about one chat member.
func (a *telegoAdapter) GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error) {
	return a.bot.GetChatMember(ctx, params)
}
