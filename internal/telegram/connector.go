// Package telegram integrates sweepbot with the Telegram Bot API via
// the Telego library. The connector records observed group messages
// into the message index, dispatches bot commands, and adapts the Bot
// API to the sweep pipeline's client interfaces.
//
// Features:
//   - Long polling for receiving updates
//   - Per-chat and per-user authorization
//   - Message index capture for history sweeps
//   - Graceful shutdown handling
package telegram

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mymmrac/telego"

	"github.com/aatumaykin/sweepbot/internal/chat"
	"github.com/aatumaykin/sweepbot/internal/classify"
	"github.com/aatumaykin/sweepbot/internal/config"
	"github.com/aatumaykin/sweepbot/internal/constants"
	"github.com/aatumaykin/sweepbot/internal/deleter"
	"github.com/aatumaykin/sweepbot/internal/directory"
	"github.com/aatumaykin/sweepbot/internal/history"
	"github.com/aatumaykin/sweepbot/internal/logger"
	"github.com/aatumaykin/sweepbot/internal/metrics"
	"github.com/aatumaykin/sweepbot/internal/store"
	"github.com/aatumaykin/sweepbot/internal/sweep"
)

// Connector owns the Telegram side of sweepbot: the bot session, the
// update loop, and the sweep pipeline built around the Bot API clients.
type Connector struct {
	cfg     config.Config
	logger  *logger.Logger
	metrics *metrics.SweepMetrics
	index   *store.Index

	bot            BotInterface
	botUsername    string
	ctx            context.Context
	cancel         context.CancelFunc
	svc            *sweep.Service
	commandHandler *CommandHandler
}

// New creates a Telegram connector. metrics may be nil.
func New(cfg config.Config, index *store.Index, m *metrics.SweepMetrics, log *logger.Logger) *Connector {
	return &Connector{
		cfg:     cfg,
		logger:  log,
		metrics: m,
		index:   index,
	}
}

// SetBot injects a bot implementation before Start. Used by tests;
// when unset, Start builds a real telego.Bot from the config token.
func (c *Connector) SetBot(bot BotInterface) {
	c.bot = bot
}

// Service returns the sweep service. Valid after Start.
func (c *Connector) Service() *sweep.Service {
	return c.svc
}

// Start initializes the bot session, builds the sweep pipeline and
// begins long polling for updates.
func (c *Connector) Start(ctx context.Context) error {
	c.logger.Info("starting telegram connector")

	if c.bot == nil {
		bot, err := telego.NewBot(c.cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram bot: %w", err)
		}
		c.bot = NewBotAdapter(bot)
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	botUser, err := c.bot.GetMe(c.ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	c.botUsername = botUser.Username

	c.logger.Info("telegram bot initialized",
		logger.Field{Key: "bot_id", Value: botUser.ID},
		logger.Field{Key: "username", Value: botUser.Username})

	if err := c.buildPipeline(botUser.ID); err != nil {
		return err
	}

	if err := c.registerCommands(); err != nil {
		c.logger.ErrorCtx(c.ctx, "failed to register bot commands", err)
	}

	updates, err := c.bot.UpdatesViaLongPolling(c.ctx, &telego.GetUpdatesParams{
		Timeout: 30,
	})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}
	go c.pollLoop(updates)

	return nil
}

// Stop gracefully stops the connector. In-flight sweeps observe the
// cancellation between batches.
func (c *Connector) Stop() error {
	c.logger.Info("stopping telegram connector")

	if c.cancel != nil {
		c.cancel()
	}

	c.logger.Info("telegram connector stopped gracefully")
	return nil
}

// buildPipeline assembles the sweep service from the Bot API clients
// and configured policies.
func (c *Connector) buildPipeline(botID int64) error {
	clients := NewClients(c.bot, botID, c.logger)

	policy, err := classify.NewPolicy(
		c.cfg.Classify.ServiceMessages != "delete",
		c.cfg.Classify.KeepPatterns,
	)
	if err != nil {
		return fmt.Errorf("invalid classify policy: %w", err)
	}

	adminTTL := time.Duration(c.cfg.Sweep.AdminCacheTTLSeconds) * time.Second
	dir := directory.New(clients, adminTTL)

	// A typed nil would slip past the deleter's interface nil check.
	var rec deleter.Recorder
	if c.metrics != nil {
		rec = c.metrics
	}

	sweepCfg := c.cfg.Sweep
	c.svc = sweep.New(sweep.Deps{
		Rights: clients,
		Admins: dir,
		Pager:  history.NewPager(c.index, sweepCfg.PageSize, sweepCfg.MessageLimit),
		Policy: policy,
		NewDeleter: func(chatID int64) sweep.BatchDeleter {
			return deleter.New(clients, deleter.Config{
				BatchSize:           sweepCfg.BatchSize,
				InterBatchDelay:     time.Duration(sweepCfg.InterBatchDelaySeconds) * time.Second,
				MaxRateLimitRetries: sweepCfg.MaxRateLimitRetries,
			}, chatID, c.logger, rec)
		},
		Index:   c.index,
		Metrics: c.metrics,
		Logger:  c.logger,
	})

	c.commandHandler = NewCommandHandler(c.cfg.Telegram, c.bot, c.svc, dir, c.ctx, c.logger)
	return nil
}

// registerCommands registers bot commands with Telegram.
func (c *Connector) registerCommands() error {
	commands := &telego.SetMyCommandsParams{
		Commands: []telego.BotCommand{
			{Command: constants.CommandClean, Description: "Delete all non-admin messages in this group"},
			{Command: constants.CommandCancel, Description: "Cancel the running cleanup"},
			{Command: constants.CommandStatus, Description: "Show cleanup progress or the last report"},
		},
	}

	if err := c.bot.SetMyCommands(c.ctx, commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	c.logger.Info("bot commands registered successfully")
	return nil
}

func (c *Connector) pollLoop(updates <-chan telego.Update) {
	c.logger.Info("long polling for telegram updates started")

	for {
		select {
		case <-c.ctx.Done():
			c.logger.Info("long polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				c.logger.Info("updates channel closed")
				return
			}
			if err := c.handleUpdate(update); err != nil {
				c.logger.ErrorCtx(c.ctx, "failed to handle update", err)
			}
		}
	}
}

// handleUpdate records group messages into the index and dispatches
// bot commands.
func (c *Connector) handleUpdate(update telego.Update) error {
	if update.Message == nil {
		return nil
	}
	msg := update.Message

	if msg.Chat.Type == telego.ChatTypePrivate {
		if command, ok := c.parseCommand(msg.Text); ok {
			return c.commandHandler.HandlePrivate(c.ctx, msg, command)
		}
		return nil
	}

	if msg.Chat.Type != telego.ChatTypeGroup && msg.Chat.Type != telego.ChatTypeSupergroup {
		return nil
	}

	if !c.isAllowedChat(msg.Chat.ID) {
		c.logger.DebugCtx(c.ctx, "update from chat outside allow-list ignored",
			logger.Field{Key: "chat_id", Value: msg.Chat.ID})
		return nil
	}

	// Every group message, commands included, enters the index; the
	// classifier decides its fate during the next sweep.
	if err := c.index.Record(observedMessage(msg)); err != nil {
		c.logger.ErrorCtx(c.ctx, "failed to record message", err,
			logger.Field{Key: "chat_id", Value: msg.Chat.ID},
			logger.Field{Key: "message_id", Value: msg.MessageID})
	}

	if command, ok := c.parseCommand(msg.Text); ok {
		return c.commandHandler.HandleCommand(c.ctx, msg, command)
	}
	return nil
}

// isAllowedChat reports whether the chat may be swept. An empty
// allow-list admits every group.
func (c *Connector) isAllowedChat(chatID int64) bool {
	if len(c.cfg.Telegram.AllowedChats) == 0 {
		return true
	}
	return slices.Contains(c.cfg.Telegram.AllowedChats, chatID)
}

// parseCommand extracts a bot command from message text, stripping an
// optional @botname suffix. Commands addressed to another bot are not
// matched.
func (c *Connector) parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	command := strings.Fields(text)[0][1:]
	if name, found := strings.CutSuffix(command, "@"+c.botUsername); found && c.botUsername != "" {
		command = name
	} else if strings.Contains(command, "@") {
		return "", false
	}
	return command, command != ""
}

// observedMessage converts a Telego message into the domain form kept
// in the index.
func observedMessage(msg *telego.Message) chat.Message {
	observed := chat.Message{
		ID:      msg.MessageID,
		ChatID:  msg.Chat.ID,
		Service: isServiceMessage(msg),
		Text:    msg.Text,
		Date:    time.Unix(msg.Date, 0),
	}
	if observed.Text == "" {
		observed.Text = msg.Caption
	}
	if msg.From != nil {
		observed.SenderUser = msg.From.ID
	}
	if msg.SenderChat != nil {
		observed.SenderChat = msg.SenderChat.ID
	}
	return observed
}

// isServiceMessage reports whether msg is a service/system message
// (member changes, pins, chat property changes, video chat events).
func isServiceMessage(msg *telego.Message) bool {
	return len(msg.NewChatMembers) > 0 ||
		msg.LeftChatMember != nil ||
		msg.NewChatTitle != "" ||
		len(msg.NewChatPhoto) > 0 ||
		msg.DeleteChatPhoto ||
		msg.GroupChatCreated ||
		msg.SupergroupChatCreated ||
		msg.PinnedMessage != nil ||
		msg.MessageAutoDeleteTimerChanged != nil ||
		msg.VideoChatScheduled != nil ||
		msg.VideoChatStarted != nil ||
		msg.VideoChatEnded != nil ||
		msg.VideoChatParticipantsInvited != nil
}
