package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	telegoapi "github.com/mymmrac/telego/telegoapi"

	"github.com/aatumaykin/sweepbot/internal/chat"
	"github.com/aatumaykin/sweepbot/internal/deleter"
	"github.com/aatumaykin/sweepbot/internal/logger"
)

// Clients adapts the Telegram Bot API to the sweep pipeline's client
// interfaces: admin listing, delete-rights checking and batch deletion.
type Clients struct {
	bot    BotInterface
	botID  int64
	logger *logger.Logger
}

// NewClients creates the API adapters. botID is the bot's own user id,
// needed for the delete-rights check.
func NewClients(bot BotInterface, botID int64, log *logger.Logger) *Clients {
	return &Clients{bot: bot, botID: botID, logger: log}
}

// ListAdmins returns the chat's administrator user ids. Anonymous
// admins are covered separately by the sender-chat check, so only user
// identities are collected here.
func (c *Clients) ListAdmins(ctx context.Context, chatID int64) (map[int64]struct{}, error) {
	admins, err := c.bot.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{
		ChatID: telego.ChatID{ID: chatID},
	})
	if err != nil {
		return nil, fmt.Errorf("get chat administrators: %w", err)
	}

	users := make(map[int64]struct{}, len(admins))
	for _, admin := range admins {
		users[admin.MemberUser().ID] = struct{}{}
	}
	return users, nil
}

// CheckDeleteRights verifies the bot is an administrator with the
// delete-messages right in the chat.
func (c *Clients) CheckDeleteRights(ctx context.Context, chatID int64) error {
	member, err := c.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: c.botID,
	})
	if err != nil {
		return fmt.Errorf("get own chat member: %w", err)
	}

	if admin, ok := member.(*telego.ChatMemberAdministrator); ok && admin.CanDeleteMessages {
		return nil
	}
	return fmt.Errorf("bot status %q in chat %d: %w", member.MemberStatus(), chatID, chat.ErrInsufficientRights)
}

// DeleteBatch deletes up to 100 messages in one API call and maps the
// API outcome to a typed batch result. A rate-limit response carries
// the platform-suggested wait; a 400 falls back to per-message deletes
// so partially deletable batches report exactly which ids failed.
func (c *Clients) DeleteBatch(ctx context.Context, chatID int64, ids []int) (deleter.BatchResult, error) {
	err := c.bot.DeleteMessages(ctx, &telego.DeleteMessagesParams{
		ChatID:     telego.ChatID{ID: chatID},
		MessageIDs: ids,
	})
	if err == nil {
		return deleter.BatchResult{Kind: deleter.OK}, nil
	}

	var telErr *telegoapi.Error
	if !errors.As(err, &telErr) {
		return deleter.BatchResult{Kind: deleter.Fatal, Reason: err}, nil
	}

	switch telErr.ErrorCode {
	case 429:
		return deleter.BatchResult{
			Kind:       deleter.RateLimited,
			RetryAfter: retryAfterOf(telErr),
			Reason:     err,
		}, nil
	case 400:
		// The batch call rejects outright when any id is undeletable.
		// Per-id deletes salvage the rest of the batch.
		return c.deleteOneByOne(ctx, chatID, ids)
	default:
		return deleter.BatchResult{Kind: deleter.Fatal, Reason: err}, nil
	}
}

func (c *Clients) deleteOneByOne(ctx context.Context, chatID int64, ids []int) (deleter.BatchResult, error) {
	var failed []int

	for _, id := range ids {
		err := c.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
			ChatID:    telego.ChatID{ID: chatID},
			MessageID: id,
		})
		if err == nil || isAlreadyDeleted(err) {
			continue
		}

		var telErr *telegoapi.Error
		if errors.As(err, &telErr) && telErr.ErrorCode == 429 {
			// Rate limited mid-fallback: the ids not yet attempted were
			// not applied, so the whole batch is retried later.
			return deleter.BatchResult{
				Kind:       deleter.RateLimited,
				RetryAfter: retryAfterOf(telErr),
				Reason:     err,
			}, nil
		}

		failed = append(failed, id)
		c.logger.WarnCtx(ctx, "message not deletable",
			logger.Field{Key: "chat_id", Value: chatID},
			logger.Field{Key: "message_id", Value: id},
			logger.Field{Key: "error", Value: err.Error()})
	}

	if len(failed) == 0 {
		return deleter.BatchResult{Kind: deleter.OK}, nil
	}
	return deleter.BatchResult{Kind: deleter.Partial, FailedIDs: failed}, nil
}

// isAlreadyDeleted reports whether err means the message is gone
// already. Deleting an absent message is a success, not a failure.
func isAlreadyDeleted(err error) bool {
	var telErr *telegoapi.Error
	if !errors.As(err, &telErr) || telErr.ErrorCode != 400 {
		return false
	}
	return strings.Contains(telErr.Description, "message to delete not found")
}

func retryAfterOf(telErr *telegoapi.Error) time.Duration {
	if telErr.Parameters == nil {
		return 0
	}
	return time.Duration(telErr.Parameters.RetryAfter) * time.Second
}
