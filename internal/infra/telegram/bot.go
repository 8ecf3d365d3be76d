package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/enums"
)

const roleCacheTTL = 5 * time.Minute

type Bot struct {
	api   *tgbotapi.BotAPI
	roles *roleCache
}

// MessageUpdate is one group-chat text message with the sender's role
// already resolved.
type MessageUpdate struct {
	ConversationID int64
	MessageID      int
	UserID         int64
	Username       string
	Text           string
	Role           enums.Role
	Timestamp      time.Time
}

type CommandUpdate struct {
	ConversationID int64
	MessageID      int
	UserID         int64
	Username       string
	Role           enums.Role
	Command        string
	Args           string
}

type CallbackUpdate struct {
	CallbackID     string
	ConversationID int64
	UserID         int64
	Username       string
	Data           string
}

type Handlers struct {
	OnMessage  func(context.Context, MessageUpdate) error
	OnCommand  func(context.Context, CommandUpdate) error
	OnCallback func(context.Context, CallbackUpdate) error
}

func NewBot(token string) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}

	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Bot{
		api:   api,
		roles: newRoleCache(roleCacheTTL),
	}, nil
}

// Listen long-polls and feeds group messages to the handlers. Private
// chats are ignored; the assistant only lives in groups.
func (b *Bot) Listen(ctx context.Context, handlers Handlers) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-updates:
			if update.Message != nil && update.Message.From != nil {
				chat := update.Message.Chat
				if chat == nil || !(chat.IsGroup() || chat.IsSuperGroup()) {
					continue
				}

				role := b.senderRole(ctx, chat.ID, update.Message.From.ID)

				if update.Message.IsCommand() && handlers.OnCommand != nil {
					err := handlers.OnCommand(ctx, CommandUpdate{
						ConversationID: chat.ID,
						MessageID:      update.Message.MessageID,
						UserID:         update.Message.From.ID,
						Username:       update.Message.From.UserName,
						Role:           role,
						Command:        update.Message.Command(),
						Args:           strings.TrimSpace(update.Message.CommandArguments()),
					})
					if err != nil {
						return err
					}
					continue
				}

				text := strings.TrimSpace(update.Message.Text)
				if text != "" && handlers.OnMessage != nil {
					err := handlers.OnMessage(ctx, MessageUpdate{
						ConversationID: chat.ID,
						MessageID:      update.Message.MessageID,
						UserID:         update.Message.From.ID,
						Username:       update.Message.From.UserName,
						Text:           text,
						Role:           role,
						Timestamp:      update.Message.Time(),
					})
					if err != nil {
						return err
					}
				}
			}

			if update.CallbackQuery != nil && update.CallbackQuery.From != nil && handlers.OnCallback != nil {
				chatID := int64(0)
				if update.CallbackQuery.Message != nil {
					chatID = update.CallbackQuery.Message.Chat.ID
				}
				err := handlers.OnCallback(ctx, CallbackUpdate{
					CallbackID:     update.CallbackQuery.ID,
					ConversationID: chatID,
					UserID:         update.CallbackQuery.From.ID,
					Username:       update.CallbackQuery.From.UserName,
					Data:           update.CallbackQuery.Data,
				})
				if err != nil {
					return err
				}
			}
		}
	}
}

func (b *Bot) SendReply(ctx context.Context, conversationID int64, replyTo int, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if conversationID == 0 || text == "" {
		return fmt.Errorf("conversation id and text are required")
	}

	msg := tgbotapi.NewMessage(conversationID, text)
	if replyTo != 0 {
		msg.ReplyToMessageID = replyTo
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram reply: %w", err)
	}

	_ = ctx
	return nil
}

func (b *Bot) DeleteMessage(ctx context.Context, conversationID int64, messageID int) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	cfg := tgbotapi.NewDeleteMessage(conversationID, messageID)
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("delete telegram message: %w", err)
	}

	_ = ctx
	return nil
}

// RemoveActor kicks without a permanent ban: ban then immediately unban,
// so the user can be re-added later.
func (b *Bot) RemoveActor(ctx context.Context, conversationID, actorID int64) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	member := tgbotapi.ChatMemberConfig{ChatID: conversationID, UserID: actorID}
	if _, err := b.api.Request(tgbotapi.BanChatMemberConfig{ChatMemberConfig: member}); err != nil {
		return fmt.Errorf("ban chat member: %w", err)
	}
	if _, err := b.api.Request(tgbotapi.UnbanChatMemberConfig{ChatMemberConfig: member, OnlyIfBanned: true}); err != nil {
		return fmt.Errorf("unban chat member: %w", err)
	}

	_ = ctx
	return nil
}

func (b *Bot) SendTyping(ctx context.Context, conversationID int64) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	cfg := tgbotapi.NewChatAction(conversationID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("send typing action: %w", err)
	}

	_ = ctx
	return nil
}

// SendLanguageKeyboard posts the language picker. Callback data uses the
// "lang:<code>" convention consumed by the app's callback handler.
func (b *Bot) SendLanguageKeyboard(ctx context.Context, conversationID int64, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	msg := tgbotapi.NewMessage(conversationID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("বাংলা", "lang:bangla"),
			tgbotapi.NewInlineKeyboardButtonData("हिन्दी", "lang:hindi"),
			tgbotapi.NewInlineKeyboardButtonData("English", "lang:english"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send language keyboard: %w", err)
	}

	_ = ctx
	return nil
}

func (b *Bot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(callbackID) == "" {
		return nil
	}

	cfg := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	_ = ctx
	return nil
}

// senderRole resolves the member's role, falling back to plain member
// when the lookup fails. Results are cached briefly; admin churn is rare.
func (b *Bot) senderRole(ctx context.Context, conversationID, userID int64) enums.Role {
	if role, ok := b.roles.get(conversationID, userID); ok {
		return role
	}

	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: conversationID,
			UserID: userID,
		},
	})
	role := enums.RoleMember
	if err == nil {
		switch member.Status {
		case "creator":
			role = enums.RoleOwner
		case "administrator":
			role = enums.RoleAdmin
		}
	}

	b.roles.put(conversationID, userID, role)
	_ = ctx
	return role
}

type roleCacheKey struct {
	conversationID int64
	userID         int64
}

type roleCacheEntry struct {
	role      enums.Role
	expiresAt time.Time
}

type roleCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[roleCacheKey]roleCacheEntry
	now     func() time.Time
}

func newRoleCache(ttl time.Duration) *roleCache {
	return &roleCache{
		ttl:     ttl,
		entries: make(map[roleCacheKey]roleCacheEntry),
		now:     time.Now,
	}
}

func (c *roleCache) get(conversationID, userID int64) (enums.Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[roleCacheKey{conversationID, userID}]
	if !ok || c.now().After(entry.expiresAt) {
		return enums.RoleMember, false
	}
	return entry.role, true
}

func (c *roleCache) put(conversationID, userID int64, role enums.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[roleCacheKey{conversationID, userID}] = roleCacheEntry{
		role:      role,
		expiresAt: c.now().Add(c.ttl),
	}
}
