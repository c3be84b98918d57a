package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/malinawb/malina-bot/internal/contextkeys"
	"github.com/malinawb/malina-bot/internal/messages"
	"github.com/malinawb/malina-bot/types"
)

// HandleText dispatches free text by the user's chat state: API-key
// entry, restore-key entry or an admin amount prompt. Text outside any
// flow just re-opens the menu.
func (h *Handlers) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	userID, _ := contextkeys.GetUserID(ctx)
	text := strings.TrimSpace(update.Message.Text)

	state, data, err := h.states.GetState(userID)
	if err != nil {
		log.Printf("Chat state lookup failed for user %d: %v", userID, err)
		state = types.StateIdle
	}

	switch state {
	case types.StateAwaitAPIKey:
		h.handleAPIKeyEntry(ctx, b, userID, text)
	case types.StateAwaitRestoreKey:
		h.handleRestoreKeyEntry(ctx, b, userID, text)
	case types.StateAwaitAdminAmount:
		h.handleAdminAmountEntry(ctx, b, userID, text, data)
	default:
		h.HandleContinue(ctx, b)
	}
}

func (h *Handlers) handleAPIKeyEntry(ctx context.Context, b *bot.Bot, userID int64, apiKey string) {
	identity, err := h.marketplace.VerifySeller(ctx, apiKey)
	if err != nil {
		if errors.Is(err, types.ErrVerificationFailed) {
			h.send(ctx, b, messages.APIKeyInvalid())
			return
		}
		log.Printf("Seller verification failed for user %d: %v", userID, err)
		h.send(ctx, b, messages.ErrorDefault())
		return
	}

	if _, err := h.billing.BindSeller(ctx, userID, apiKey, *identity); err != nil {
		if errors.Is(err, types.ErrConflict) {
			h.send(ctx, b, messages.RestoreConflict())
			return
		}
		log.Printf("Seller bind failed for user %d: %v", userID, err)
		h.send(ctx, b, messages.ErrorDefault())
		return
	}

	_ = h.states.ClearState(userID)
	h.send(ctx, b, messages.APIKeySaved(identity.SellerName))
	h.ShowMainMenu(ctx, b)
}

// handleRestoreKeyEntry verifies the supplied key against the
// marketplace and, on success, re-binds the archived record with the
// same seller identity to this user. Verification happens outside the
// billing core and is required before Restore is even attempted.
func (h *Handlers) handleRestoreKeyEntry(ctx context.Context, b *bot.Bot, userID int64, apiKey string) {
	identity, err := h.marketplace.VerifySeller(ctx, apiKey)
	if err != nil {
		if errors.Is(err, types.ErrVerificationFailed) {
			h.send(ctx, b, messages.APIKeyInvalid())
			return
		}
		log.Printf("Seller verification failed for user %d: %v", userID, err)
		h.send(ctx, b, messages.ErrorDefault())
		return
	}

	rec, err := h.billing.Restore(ctx, identity.SellerName, userID)
	switch {
	case errors.Is(err, types.ErrNotFound):
		h.send(ctx, b, messages.RestoreNotFound())
		return
	case errors.Is(err, types.ErrConflict):
		h.send(ctx, b, messages.RestoreConflict())
		return
	case err != nil:
		log.Printf("Restore failed for user %d: %v", userID, err)
		h.send(ctx, b, messages.ErrorDefault())
		return
	}

	// store the fresh key on the restored record
	if _, err := h.billing.BindSeller(ctx, userID, apiKey, *identity); err != nil {
		log.Printf("Post-restore key bind failed for user %d: %v", userID, err)
	}

	_ = h.states.ClearState(userID)
	h.send(ctx, b, messages.RestoreDone(identity.SellerName, rec.Balance))
}

func (h *Handlers) handleAdminAmountEntry(ctx context.Context, b *bot.Bot, actor int64, text string, data map[string]string) {
	targetID, err := strconv.ParseInt(data["target_user_id"], 10, 64)
	if err != nil {
		_ = h.states.ClearState(actor)
		h.send(ctx, b, messages.ErrorDefault())
		return
	}

	amount, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimPrefix(text, "+"), " ", ""), 10, 64)
	if err != nil {
		h.send(ctx, b, messages.AdminAmountInvalid())
		return
	}

	rec, err := h.billing.AdjustBalance(ctx, targetID, amount, actor)
	switch {
	case errors.Is(err, types.ErrNotAdmin):
		_ = h.states.ClearState(actor)
		h.send(ctx, b, messages.AdminDenied())
		return
	case errors.Is(err, types.ErrNotFound):
		_ = h.states.ClearState(actor)
		h.send(ctx, b, messages.AdminUserNotFound())
		return
	case err != nil:
		log.Printf("Balance adjust failed (target %d): %v", targetID, err)
		h.send(ctx, b, messages.ErrorDefault())
		return
	}

	_ = h.states.ClearState(actor)
	h.send(ctx, b, messages.AdminBalanceChanged(targetID, amount, rec.Balance))
}
