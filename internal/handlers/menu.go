package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"

	"github.com/malinawb/malina-bot/internal/contextkeys"
	"github.com/malinawb/malina-bot/internal/messages"
	"github.com/malinawb/malina-bot/types"
)

func (h *Handlers) ShowMainMenu(ctx context.Context, b *bot.Bot) {
	userID, _ := contextkeys.GetUserID(ctx)
	ent, ok := contextkeys.GetEntitlement(ctx)
	if !ok || !ent.Entitled {
		h.send(ctx, b, messages.AccessInactive())
		return
	}
	rec, err := h.billing.Get(ctx, userID)
	if err != nil {
		h.send(ctx, b, messages.ErrorDefault())
		return
	}
	h.sendWithKeyboard(ctx, b,
		messages.MainMenu(ent, rec.SellerName, h.billing.DailyCost(), rec.CreatedAt),
		mainMenuKeyboard())
}

func (h *Handlers) ShowProfile(ctx context.Context, b *bot.Bot) {
	ent, ok := contextkeys.GetEntitlement(ctx)
	if !ok || !ent.Entitled {
		h.send(ctx, b, messages.AccessInactive())
		return
	}
	userID, _ := contextkeys.GetUserID(ctx)
	rec, err := h.billing.Get(ctx, userID)
	if err != nil {
		h.send(ctx, b, messages.ErrorDefault())
		return
	}
	h.sendWithKeyboard(ctx, b,
		messages.MainMenu(ent, rec.SellerName, h.billing.DailyCost(), rec.CreatedAt),
		profileKeyboard())
}

func (h *Handlers) HandleDeleteRequest(ctx context.Context, b *bot.Bot) {
	h.sendWithKeyboard(ctx, b,
		"Удалить аккаунт? Баланс и история будут сохранены для восстановления по магазину.",
		deleteConfirmKeyboard())
}

func (h *Handlers) HandleDeleteConfirm(ctx context.Context, b *bot.Bot) {
	userID, _ := contextkeys.GetUserID(ctx)
	_ = h.states.ClearState(userID)

	if _, err := h.billing.Archive(ctx, userID); err != nil && !errors.Is(err, types.ErrArchived) {
		h.send(ctx, b, messages.ErrorDefault())
		return
	}
	h.send(ctx, b, messages.AccountArchived())
}
