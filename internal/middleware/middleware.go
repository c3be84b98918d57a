package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/malinawb/malina-bot/internal/billing"
	"github.com/malinawb/malina-bot/internal/contextkeys"
	"github.com/malinawb/malina-bot/internal/messages"
)

type Middlewares struct {
	billing *billing.Service
}

func NewMiddlewares(billingService *billing.Service) *Middlewares {
	return &Middlewares{billing: billingService}
}

// ResolveUserMiddleware extracts the user and chat ids from the update
// and drops updates that carry neither.
func (m *Middlewares) ResolveUserMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		var userID, chatID int64

		switch {
		case update.Message != nil && update.Message.From != nil:
			userID = update.Message.From.ID
			chatID = update.Message.Chat.ID
		case update.CallbackQuery != nil:
			userID = update.CallbackQuery.From.ID
			chatID = getChatIDFromMaybeInaccessibleMessage(update.CallbackQuery.Message)
		}
		if userID == 0 || chatID == 0 {
			return
		}

		ctx = contextkeys.WithUserID(ctx, userID)
		ctx = contextkeys.WithChatID(ctx, chatID)
		next(ctx, b, update)
	}
}

func getChatIDFromMaybeInaccessibleMessage(m models.MaybeInaccessibleMessage) int64 {
	if m.Message != nil {
		return m.Message.Chat.ID
	}
	if m.InaccessibleMessage != nil {
		return m.InaccessibleMessage.Chat.ID
	}
	return 0
}

// AnalyzeMessageMiddleware classifies the update (command, button click
// or plain text) so the main handler can route on one switch.
func (m *Middlewares) AnalyzeMessageMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		switch {
		case update.CallbackQuery != nil && update.CallbackQuery.Data != "":
			ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeClickButton)
			ctx = contextkeys.WithCallbackData(ctx, update.CallbackQuery.Data)
		case update.Message != nil && strings.HasPrefix(update.Message.Text, "/"):
			ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeCommand)
		case update.Message != nil && update.Message.Text != "":
			ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeText)
		default:
			ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeUnknown)
		}
		next(ctx, b, update)
	}
}

// EntitlementMiddleware is the pay-on-access hook: every inbound
// interaction settles the user's record first, then carries the
// resulting snapshot in the context for handlers to branch on.
func (m *Middlewares) EntitlementMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		userID, ok := contextkeys.GetUserID(ctx)
		if !ok {
			return
		}
		ent, err := m.billing.IsEntitled(ctx, userID)
		if err != nil {
			log.Printf("Entitlement check failed for user %d: %v", userID, err)
			if chatID, ok := contextkeys.GetChatID(ctx); ok {
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID:    chatID,
					Text:      messages.ErrorDefault(),
					ParseMode: messages.ParseModeHTML,
				})
			}
			return
		}
		next(contextkeys.WithEntitlement(ctx, ent), b, update)
	}
}
