package handlers

import (
	"context"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/malinawb/malina-bot/internal/billing"
	"github.com/malinawb/malina-bot/internal/contextkeys"
	"github.com/malinawb/malina-bot/internal/messages"
	"github.com/malinawb/malina-bot/types"
)

// MarketplaceClient is the slice of the Wildberries client the bot
// surface needs: credential verification and the warehouse list.
type MarketplaceClient interface {
	types.IdentityVerifier
	FetchWarehouses(ctx context.Context, apiKey string) ([]types.Warehouse, error)
}

type Handlers struct {
	billing     *billing.Service
	states      types.StateStore
	marketplace MarketplaceClient
	warehouses  types.WarehouseCache
}

func NewHandlers(billingService *billing.Service, states types.StateStore, marketplace MarketplaceClient, warehouses types.WarehouseCache) *Handlers {
	return &Handlers{
		billing:     billingService,
		states:      states,
		marketplace: marketplace,
		warehouses:  warehouses,
	}
}

func (h *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	messageType, _ := contextkeys.GetMessageType(ctx)

	switch messageType {
	case contextkeys.MessageTypeCommand:
		h.HandleCommand(ctx, b, update)
	case contextkeys.MessageTypeClickButton:
		h.HandleCallback(ctx, b, update)
	case contextkeys.MessageTypeText:
		h.HandleText(ctx, b, update)
	default:
		// anything else (stickers, files) is ignored by this bot
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	cmd := strings.TrimSpace(update.Message.Text)
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/start":
		h.HandleStart(ctx, b, update)
	case "/menu":
		h.ShowMainMenu(ctx, b)
	case "/admin":
		h.HandleAdminMenu(ctx, b, update)
	default:
		h.send(ctx, b, messages.ErrorDefault())
	}
}

func (h *Handlers) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	data, _ := contextkeys.GetCallbackData(ctx)
	data = strings.TrimSpace(data)

	defer h.answerCallback(ctx, b, update)

	if strings.HasPrefix(data, "admin_") {
		h.HandleAdminCallback(ctx, b, update, data)
		return
	}

	switch data {
	case "guest_continue":
		h.HandleContinue(ctx, b)
	case "trial":
		h.HandleTrial(ctx, b)
	case "restore_account":
		h.HandleRestoreRequest(ctx, b)
	case "buy":
		h.alertCallback(ctx, b, update, messages.BuyNotImplemented())
	case "api_change":
		h.HandleAPIKeyRequest(ctx, b)
	case "back_to_main_menu":
		h.ShowMainMenu(ctx, b)
	case "main_profile":
		h.ShowProfile(ctx, b)
	case "profile_delete":
		h.HandleDeleteRequest(ctx, b)
	case "profile_delete_confirm":
		h.HandleDeleteConfirm(ctx, b)
	default:
		// stale button from an old message; the answerCallback above
		// already dismisses the spinner
	}
}

func (h *Handlers) send(ctx context.Context, b *bot.Bot, text string) {
	h.sendWithKeyboard(ctx, b, text, nil)
}

func (h *Handlers) sendWithKeyboard(ctx context.Context, b *bot.Bot, text string, kb models.ReplyMarkup) {
	chatID, ok := contextkeys.GetChatID(ctx)
	if !ok {
		return
	}
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: kb,
	})
	if err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (h *Handlers) answerCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	})
}

func (h *Handlers) alertCallback(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	if update.CallbackQuery == nil {
		return
	}
	_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
		ShowAlert:       true,
	})
}
