package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/magnus/internal/delivery"
	"github.com/user/magnus/internal/gateway"
	"github.com/user/magnus/internal/types"
)

const maxTelegramMessage = 4096

// Adapter bridges Telegram to the gateway.
type Adapter struct {
	bot      *tgbotapi.BotAPI
	gateway  *gateway.Gateway
	sessions types.SessionStore

	// pinned holds a one-shot tool pin per chat, set via /tool and
	// consumed by the next message.
	pinned map[int64]types.Tool
}

// New creates a Telegram adapter.
func New(token string, gw *gateway.Gateway, sessions types.SessionStore) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Adapter{
		bot:      bot,
		gateway:  gw,
		sessions: sessions,
		pinned:   make(map[int64]types.Tool),
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

// Deliver sends a reply to the chat encoded in the session key. It satisfies
// delivery.Handler for keys of the form "telegram:<userID>:<chatID>".
func (a *Adapter) Deliver(sessionKey types.SessionKey, msg *types.Message) error {
	parts := strings.Split(string(sessionKey), ":")
	if len(parts) < 3 {
		return fmt.Errorf("malformed telegram session key: %s", sessionKey)
	}
	chatID, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id from session key %s: %w", sessionKey, err)
	}
	a.sendResponse(chatID, delivery.Render(msg))
	return nil
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Handle commands
	if msg.IsCommand() {
		a.handleCommand(ctx, msg)
		return
	}

	chatID := msg.Chat.ID
	tool := a.pinned[chatID]
	delete(a.pinned, chatID)

	event := &types.InboundEvent{
		Source:     "telegram",
		SessionKey: buildSessionKey(msg.From.ID, msg.Chat.ID),
		UserID:     strconv.FormatInt(msg.From.ID, 10),
		Text:       msg.Text,
		PinnedTool: tool,
	}

	err := a.gateway.HandleInbound(ctx, event, gateway.WithOnComplete(func(reply *types.Message) {
		a.sendResponse(chatID, delivery.Render(reply))
	}))
	if err != nil {
		log.Printf("handle inbound error: %v", err)
		a.sendResponse(chatID, "Sorry, I encountered an error processing your message.")
	}
}

func (a *Adapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		a.sendResponse(chatID, "Hello! I'm Magnus, your AI assistant. Send me a message to get started.")

	case "new":
		key := buildSessionKey(msg.From.ID, msg.Chat.ID)
		session, err := a.sessions.ResolveOrCreate(ctx, key)
		if err == nil {
			err = a.sessions.Delete(ctx, session.ID)
		}
		if err != nil {
			a.sendResponse(chatID, "Error starting a new session.")
			return
		}
		a.sendResponse(chatID, "Starting a new session. Previous conversation has been archived.")

	case "tool":
		name := strings.TrimSpace(msg.CommandArguments())
		if name == "" {
			a.pinned[chatID] = types.ToolNone
			a.sendResponse(chatID, "Tool pin cleared.")
			return
		}
		tool := types.ParseTool(name)
		if tool == types.ToolNone {
			a.sendResponse(chatID, fmt.Sprintf("Unknown tool %q. Try e.g. \"Web search\" or \"Team of Experts\".", name))
			return
		}
		a.pinned[chatID] = tool
		a.sendResponse(chatID, fmt.Sprintf("Pinned %q for your next message.", string(tool)))

	case "status":
		key := buildSessionKey(msg.From.ID, msg.Chat.ID)
		session, err := a.sessions.ResolveOrCreate(ctx, key)
		if err != nil {
			a.sendResponse(chatID, "Error fetching status.")
			return
		}
		a.sendResponse(chatID, fmt.Sprintf("Session: %s\nTitle: %s\nMessages: %d", session.ID, session.Title, len(session.History)))

	default:
		a.sendResponse(chatID, "Unknown command. Available: /start, /new, /tool, /status")
	}
}

func (a *Adapter) sendResponse(chatID int64, text string) {
	parts := splitMessage(text)
	for _, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = "Markdown"
		if _, err := a.bot.Send(msg); err != nil {
			// Retry without markdown if it fails
			msg.ParseMode = ""
			if _, err := a.bot.Send(msg); err != nil {
				log.Printf("send message error: %v", err)
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
