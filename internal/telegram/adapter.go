package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/slotbot/internal/gateway"
	"github.com/user/slotbot/internal/types"
)

const maxTelegramMessage = 4096

// Adapter bridges Telegram to the gateway.
type Adapter struct {
	bot      *tgbotapi.BotAPI
	gateway  *gateway.Gateway
	turns    types.TurnStore
	sessions types.SessionStore
	retry    *gateway.RetryPolicy
}

// New creates a Telegram adapter.
func New(token string, gw *gateway.Gateway, turns types.TurnStore, sessions types.SessionStore) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Adapter{
		bot:      bot,
		gateway:  gw,
		turns:    turns,
		sessions: sessions,
		retry:    gateway.DefaultRetryPolicy(),
	}, nil
}

// Start begins long-polling for Telegram updates.
func (a *Adapter) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			a.handleMessage(ctx, update.Message)
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		a.handleCommand(ctx, msg)
		return
	}

	chatID := msg.Chat.ID
	inbound := &types.InboundMessage{
		Source:     "telegram",
		SessionKey: buildSessionKey(msg.From.ID, msg.Chat.ID),
		UserID:     strconv.FormatInt(msg.From.ID, 10),
		Text:       msg.Text,
	}

	err := a.gateway.HandleInbound(ctx, inbound, gateway.WithOnComplete(func(response string) {
		a.sendResponse(chatID, response)
	}))
	if err != nil {
		slog.Error("handle inbound failed", "error", err)
		a.sendResponse(chatID, "Sorry, I encountered an error processing your message.")
	}
}

func (a *Adapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		a.sendResponse(chatID, "Hello! I can help you book appointments. Try \"Book a meeting tomorrow\" or \"Show me free slots this Friday\".")

	case "new":
		key := buildSessionKey(msg.From.ID, msg.Chat.ID)
		if err := a.archiveSession(ctx, key); err != nil {
			slog.Warn("archive session failed", "error", err)
		}
		a.sendResponse(chatID, "Starting a new session. Previous conversation has been archived.")

	case "status":
		key := buildSessionKey(msg.From.ID, msg.Chat.ID)
		sid, err := a.sessions.ResolveOrCreate(ctx, key)
		if err != nil {
			a.sendResponse(chatID, "Error fetching status.")
			return
		}
		count, err := a.turns.Count(ctx, sid)
		if err != nil {
			a.sendResponse(chatID, "Error fetching status.")
			return
		}
		a.sendResponse(chatID, fmt.Sprintf("Session: %s\nMessages: %d", sid, count))

	default:
		a.sendResponse(chatID, "Unknown command. Available: /start, /new, /status")
	}
}

func (a *Adapter) archiveSession(ctx context.Context, key types.SessionKey) error {
	sid, err := a.sessions.ResolveOrCreate(ctx, key)
	if err != nil {
		return err
	}
	sess, err := a.sessions.Get(ctx, sid)
	if err != nil {
		return err
	}
	sess.Status = "archived"
	return a.sessions.Update(ctx, sess)
}

// SendTo pushes a message to a chat identified by a telegram session key.
// Used by the scheduler to deliver digest replies.
func (a *Adapter) SendTo(sessionKey, text string) error {
	chatID, err := chatIDFromSessionKey(sessionKey)
	if err != nil {
		return err
	}
	a.sendResponse(chatID, text)
	return nil
}

func (a *Adapter) sendResponse(chatID int64, text string) {
	parts := splitMessage(text)
	for _, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = "Markdown"
		err := a.retry.Execute(func() error {
			_, err := a.bot.Send(msg)
			return err
		})
		if err != nil {
			// Retry once without markdown before giving up.
			msg.ParseMode = ""
			if _, err := a.bot.Send(msg); err != nil {
				slog.Error("send message failed", "error", err)
			}
		}
	}
}

func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		end := maxTelegramMessage
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, text[:end])
		text = text[end:]
	}
	return parts
}

func buildSessionKey(userID, chatID int64) types.SessionKey {
	return types.NewSessionKey("telegram",
		strconv.FormatInt(userID, 10),
		strconv.FormatInt(chatID, 10),
	)
}

func chatIDFromSessionKey(key string) (int64, error) {
	parts := types.SplitSessionKey(types.SessionKey(key))
	if len(parts) != 3 || parts[0] != "telegram" {
		return 0, fmt.Errorf("not a telegram session key: %s", key)
	}
	return strconv.ParseInt(parts[2], 10, 64)
}
