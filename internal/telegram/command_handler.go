package telegram

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mymmrac/telego"

	"github.com/aatumaykin/sweepbot/internal/chat"
	"github.com/aatumaykin/sweepbot/internal/config"
	"github.com/aatumaykin/sweepbot/internal/constants"
	"github.com/aatumaykin/sweepbot/internal/logger"
	"github.com/aatumaykin/sweepbot/internal/messages"
	"github.com/aatumaykin/sweepbot/internal/sweep"
)

// AdminChecker answers whether a user is currently an administrator of
// a chat. Satisfied by directory.Directory through a thin closure.
type AdminChecker interface {
	Resolve(ctx context.Context, chatID int64) (chat.AdminSet, error)
}

// CommandHandler handles sweepbot commands: /clean, /cancel, /status
// in groups and /start in private chats.
type CommandHandler struct {
	cfg    config.TelegramConfig
	logger *logger.Logger
	bot    BotInterface
	svc    *sweep.Service
	admins AdminChecker

	// runCtx outlives the update that triggered a sweep; a run is
	// bounded by the connector's lifetime, not the update's.
	runCtx context.Context
}

// NewCommandHandler creates a command handler.
func NewCommandHandler(cfg config.TelegramConfig, bot BotInterface, svc *sweep.Service, admins AdminChecker, runCtx context.Context, log *logger.Logger) *CommandHandler {
	return &CommandHandler{
		cfg:    cfg,
		logger: log,
		bot:    bot,
		svc:    svc,
		admins: admins,
		runCtx: runCtx,
	}
}

// HandleCommand dispatches one bot command from a group chat.
func (h *CommandHandler) HandleCommand(ctx context.Context, msg *telego.Message, command string) error {
	userID := senderID(msg)

	switch command {
	case constants.CommandClean:
		return h.handleClean(ctx, msg, userID)
	case constants.CommandCancel:
		return h.handleCancel(ctx, msg, userID)
	case constants.CommandStatus:
		return h.handleStatus(ctx, msg, userID)
	case constants.CommandStart:
		// /start in a group is just noise, ignore it.
		return nil
	default:
		return nil
	}
}

// HandlePrivate answers commands sent in a private chat.
func (h *CommandHandler) HandlePrivate(ctx context.Context, msg *telego.Message, command string) error {
	switch command {
	case constants.CommandStart:
		return h.reply(ctx, msg.Chat.ID, constants.MsgStartHelp)
	case constants.CommandClean, constants.CommandCancel, constants.CommandStatus:
		return h.reply(ctx, msg.Chat.ID, constants.MsgGroupOnly)
	default:
		return nil
	}
}

func (h *CommandHandler) handleClean(ctx context.Context, msg *telego.Message, userID int64) error {
	chatID := msg.Chat.ID

	if !h.isAllowed(ctx, chatID, userID) {
		h.logger.ErrorCtx(ctx, "clean command blocked", chat.ErrUnauthorized,
			logger.Field{Key: "chat_id", Value: chatID},
			logger.Field{Key: "user_id", Value: userID})
		return h.reply(ctx, chatID, constants.MsgNotAllowed)
	}

	if _, _, active := h.svc.Status(chatID); active {
		return h.reply(ctx, chatID, constants.MsgRunInProgress)
	}

	// The status message is posted first and later edited into the
	// final report.
	sendCtx, cancel := h.sendCtx(ctx)
	status, err := h.bot.SendMessage(sendCtx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   constants.MsgCleanupStarted,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("send status message: %w", err)
	}

	go h.runSweep(chatID, status.MessageID)
	return nil
}

// runSweep executes the sweep and edits the status message into the
// report. Runs in its own goroutine; errors are logged, not returned.
func (h *CommandHandler) runSweep(chatID int64, statusMessageID int) {
	report, err := h.svc.Run(h.runCtx, chatID)
	if err != nil {
		// Lost the race against a concurrent /clean.
		if errors.Is(err, chat.ErrRunInProgress) {
			h.editStatus(chatID, statusMessageID, constants.MsgRunInProgress)
			return
		}
		h.logger.Error("cleanup run did not start", err,
			logger.Field{Key: "chat_id", Value: chatID})
		h.editStatus(chatID, statusMessageID, messages.FormatError(err))
		return
	}

	text := messages.FormatReport(report)
	if report.State == chat.StateFailed && report.Reason == chat.ReasonInsufficientRights {
		text = constants.MsgNoDeleteRights
	}
	h.editStatus(chatID, statusMessageID, text)
}

func (h *CommandHandler) editStatus(chatID int64, messageID int, text string) {
	ctx, cancel := h.sendCtx(h.runCtx)
	defer cancel()

	_, err := h.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		h.logger.Error("failed to edit status message", err,
			logger.Field{Key: "chat_id", Value: chatID},
			logger.Field{Key: "message_id", Value: messageID})
	}
}

func (h *CommandHandler) handleCancel(ctx context.Context, msg *telego.Message, userID int64) error {
	chatID := msg.Chat.ID

	if !h.isAllowed(ctx, chatID, userID) {
		return h.reply(ctx, chatID, constants.MsgNotAllowed)
	}

	if !h.svc.Cancel(chatID) {
		return h.reply(ctx, chatID, constants.MsgNothingRunning)
	}
	return h.reply(ctx, chatID, constants.MsgCancelRequested)
}

func (h *CommandHandler) handleStatus(ctx context.Context, msg *telego.Message, userID int64) error {
	chatID := msg.Chat.ID

	if !h.isAllowed(ctx, chatID, userID) {
		return h.reply(ctx, chatID, constants.MsgNotAllowed)
	}

	if state, counters, active := h.svc.Status(chatID); active {
		return h.reply(ctx, chatID, messages.FormatProgress(state, counters))
	}
	if report, ok := h.svc.LastReport(chatID); ok {
		return h.reply(ctx, chatID, messages.FormatReport(report))
	}
	return h.reply(ctx, chatID, constants.MsgNothingRunning)
}

// isAllowed authorizes a command: the user is either on the explicit
// allow-list or, when admin_only is enabled, a current administrator
// of the chat.
func (h *CommandHandler) isAllowed(ctx context.Context, chatID, userID int64) bool {
	if userID == 0 {
		return false
	}
	if slices.Contains(h.cfg.AllowedUsers, userID) {
		return true
	}
	if h.cfg.AdminOnly {
		set, err := h.admins.Resolve(ctx, chatID)
		if err != nil {
			h.logger.ErrorCtx(ctx, "admin check failed, denying command", err,
				logger.Field{Key: "chat_id", Value: chatID},
				logger.Field{Key: "user_id", Value: userID})
			return false
		}
		return set.Contains(userID)
	}
	return false
}

func (h *CommandHandler) reply(ctx context.Context, chatID int64, text string) error {
	ctx, cancel := h.sendCtx(ctx)
	defer cancel()

	_, err := h.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// sendCtx bounds one outgoing Bot API call by the configured send
// timeout. A non-positive timeout leaves the parent deadline as is.
func (h *CommandHandler) sendCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.SendTimeoutSeconds <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, time.Duration(h.cfg.SendTimeoutSeconds)*time.Second)
}

func senderID(msg *telego.Message) int64 {
	if msg.From == nil {
		return 0
	}
	return msg.From.ID
}
