package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/malinawb/malina-bot/internal/contextkeys"
	"github.com/malinawb/malina-bot/internal/messages"
	"github.com/malinawb/malina-bot/types"
)

// monthlyPrice is only used for the offer text; the ledger itself works
// in daily charges.
func (h *Handlers) monthlyPrice() int64 {
	return h.billing.DailyCost() * 30
}

func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	userID, _ := contextkeys.GetUserID(ctx)
	_ = h.states.ClearState(userID)

	// The entitlement middleware already settled the record; /start only
	// greets and triggers the opportunistic warehouse refresh.
	go h.refreshWarehouses(userID)

	h.sendWithKeyboard(ctx, b, messages.Welcome(), guestKeyboard())
}

// HandleContinue routes the user by their settled entitlement state:
// straight to the main menu when entitled, otherwise to the matching
// access menu (new / restore / trial expired / blocked / pay only).
func (h *Handlers) HandleContinue(ctx context.Context, b *bot.Bot) {
	userID, _ := contextkeys.GetUserID(ctx)
	ent, ok := contextkeys.GetEntitlement(ctx)
	if !ok {
		h.send(ctx, b, messages.ErrorDefault())
		return
	}

	if ent.Entitled {
		h.ShowMainMenu(ctx, b)
		return
	}

	trialDays := int(h.billing.TrialPeriod() / (24 * time.Hour))
	if trialDays < 1 {
		trialDays = 1
	}

	switch {
	case ent.IsArchived && ent.Balance > 0:
		h.sendWithKeyboard(ctx, b, messages.AccessRestore(), accessKeyboard(false, true))
	case ent.IsArchived:
		h.sendWithKeyboard(ctx, b, messages.AccessOnlyPay(), accessKeyboard(false, false))
	default:
		rec, err := h.billing.Get(ctx, userID)
		if err != nil {
			h.send(ctx, b, messages.ErrorDefault())
			return
		}
		switch {
		case rec.TrialActivated && !ent.TrialActive:
			h.sendWithKeyboard(ctx, b, messages.AccessTrialExpired(), accessKeyboard(false, false))
		case rec.SellerName != "":
			// was a paying user, trial gone, balance exhausted
			h.sendWithKeyboard(ctx, b, messages.AccessBlocked(), blockedKeyboard())
		default:
			h.sendWithKeyboard(ctx, b, messages.AccessNew(trialDays, h.monthlyPrice()), accessKeyboard(true, false))
		}
	}
}

func (h *Handlers) HandleTrial(ctx context.Context, b *bot.Bot) {
	userID, _ := contextkeys.GetUserID(ctx)

	rec, err := h.billing.GrantTrial(ctx, userID, 0)
	switch {
	case errors.Is(err, types.ErrTrialUsed):
		h.send(ctx, b, messages.TrialAlreadyUsed())
		return
	case err != nil:
		log.Printf("Trial grant failed for user %d: %v", userID, err)
		h.send(ctx, b, messages.ErrorDefault())
		return
	}

	_ = h.states.SetState(userID, types.StateAwaitAPIKey, nil)
	h.send(ctx, b, messages.TrialActivated(*rec.TrialUntil))
}

func (h *Handlers) HandleRestoreRequest(ctx context.Context, b *bot.Bot) {
	userID, _ := contextkeys.GetUserID(ctx)
	_ = h.states.SetState(userID, types.StateAwaitRestoreKey, nil)
	h.send(ctx, b, messages.AskRestoreKey())
}

func (h *Handlers) HandleAPIKeyRequest(ctx context.Context, b *bot.Bot) {
	userID, _ := contextkeys.GetUserID(ctx)
	_ = h.states.SetState(userID, types.StateAwaitAPIKey, nil)
	h.send(ctx, b, messages.AskAPIKey())
}

// refreshWarehouses refetches the shared warehouse list when the cache
// is stale and this user has an API key. Failures only log: the cache
// serves stale data either way.
func (h *Handlers) refreshWarehouses(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stale, err := h.warehouses.NeedsRefresh()
	if err != nil || !stale {
		return
	}
	rec, err := h.billing.Get(ctx, userID)
	if err != nil || rec.APIKey == "" {
		return
	}
	warehouses, err := h.marketplace.FetchWarehouses(ctx, rec.APIKey)
	if err != nil || len(warehouses) == 0 {
		log.Printf("Warehouse refresh skipped (user %d): %v", userID, err)
		return
	}
	if err := h.warehouses.CacheWarehouses(warehouses, userID); err != nil {
		log.Printf("Warehouse cache write failed: %v", err)
		return
	}
	log.Printf("Warehouse list refreshed by user %d (%d warehouses)", userID, len(warehouses))
}
