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

const adminUserListLimit = 20

func (h *Handlers) HandleAdminMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	userID, _ := contextkeys.GetUserID(ctx)
	if !h.billing.IsAdmin(userID) {
		h.send(ctx, b, messages.AdminDenied())
		return
	}
	h.sendWithKeyboard(ctx, b, messages.AdminMenu(), adminMenuKeyboard())
}

func (h *Handlers) HandleAdminCallback(ctx context.Context, b *bot.Bot, update *models.Update, data string) {
	actor, _ := contextkeys.GetUserID(ctx)
	if !h.billing.IsAdmin(actor) {
		h.alertCallback(ctx, b, update, messages.AdminDenied())
		return
	}

	switch {
	case data == "admin_back":
		h.sendWithKeyboard(ctx, b, messages.AdminMenu(), adminMenuKeyboard())
	case data == "admin_users":
		h.showAdminUsers(ctx, b)
	case data == "admin_common":
		h.sendWithKeyboard(ctx, b, "Общие админ-функции:", adminCommonKeyboard())
	case data == "admin_update_warehouses":
		h.adminUpdateWarehouses(ctx, b, actor)
	case data == "admin_warehouses_info":
		h.adminWarehousesInfo(ctx, b)
	case strings.HasPrefix(data, "admin_user_"):
		h.adminUserActions(ctx, b, data)
	case strings.HasPrefix(data, "admin_addmoney_"):
		h.adminAskAmount(ctx, b, actor, data)
	case strings.HasPrefix(data, "admin_ban_"):
		h.adminMutateUser(ctx, b, actor, data, "admin_ban_")
	case strings.HasPrefix(data, "admin_unban_"):
		h.adminMutateUser(ctx, b, actor, data, "admin_unban_")
	case strings.HasPrefix(data, "admin_canceltrial_"):
		h.adminMutateUser(ctx, b, actor, data, "admin_canceltrial_")
	case strings.HasPrefix(data, "admin_archive_"):
		h.adminMutateUser(ctx, b, actor, data, "admin_archive_")
	case strings.HasPrefix(data, "admin_info_"):
		h.adminUserInfo(ctx, b, data)
	}
}

func parseTargetID(data, prefix string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return id, err == nil
}

func (h *Handlers) showAdminUsers(ctx context.Context, b *bot.Bot) {
	ids, err := h.billing.ListUserIDs(ctx)
	if err != nil {
		log.Printf("Admin user list failed: %v", err)
		h.send(ctx, b, messages.ErrorDefault())
		return
	}
	if len(ids) == 0 {
		h.sendWithKeyboard(ctx, b, messages.AdminNoUsers(), backKeyboard("admin_back"))
		return
	}
	if len(ids) > adminUserListLimit {
		ids = ids[:adminUserListLimit]
	}
	h.sendWithKeyboard(ctx, b, messages.AdminChooseUser(), adminUsersKeyboard(ids))
}

func (h *Handlers) adminUserActions(ctx context.Context, b *bot.Bot, data string) {
	targetID, ok := parseTargetID(data, "admin_user_")
	if !ok {
		return
	}
	h.sendWithKeyboard(ctx, b, messages.AdminUserActions(targetID), adminUserActionsKeyboard(targetID))
}

func (h *Handlers) adminAskAmount(ctx context.Context, b *bot.Bot, actor int64, data string) {
	targetID, ok := parseTargetID(data, "admin_addmoney_")
	if !ok {
		return
	}
	_ = h.states.SetState(actor, types.StateAwaitAdminAmount, map[string]string{
		"target_user_id": strconv.FormatInt(targetID, 10),
	})
	h.sendWithKeyboard(ctx, b, messages.AdminAskAmount(targetID), backKeyboard("admin_user_"+strconv.FormatInt(targetID, 10)))
}

func (h *Handlers) adminMutateUser(ctx context.Context, b *bot.Bot, actor int64, data, prefix string) {
	targetID, ok := parseTargetID(data, prefix)
	if !ok {
		return
	}

	var (
		err  error
		text string
	)
	switch prefix {
	case "admin_ban_":
		_, err = h.billing.Suspend(ctx, targetID, actor)
		text = messages.AdminSuspended(targetID)
	case "admin_unban_":
		_, err = h.billing.Reinstate(ctx, targetID, actor)
		text = messages.AdminReinstated(targetID)
	case "admin_canceltrial_":
		_, err = h.billing.CancelTrial(ctx, targetID, actor)
		text = messages.AdminTrialCancelled(targetID)
	case "admin_archive_":
		_, err = h.billing.Archive(ctx, targetID)
		text = messages.AdminArchivedUser(targetID)
	}

	switch {
	case errors.Is(err, types.ErrNotFound):
		h.sendWithKeyboard(ctx, b, messages.AdminUserNotFound(), backKeyboard("admin_users"))
	case errors.Is(err, types.ErrArchived):
		h.sendWithKeyboard(ctx, b, "Аккаунт уже в архиве.", backKeyboard("admin_users"))
	case err != nil:
		log.Printf("Admin action %s on %d failed: %v", prefix, targetID, err)
		h.send(ctx, b, messages.ErrorDefault())
	default:
		h.sendWithKeyboard(ctx, b, text, backKeyboard("admin_user_"+strconv.FormatInt(targetID, 10)))
	}
}

func (h *Handlers) adminUserInfo(ctx context.Context, b *bot.Bot, data string) {
	targetID, ok := parseTargetID(data, "admin_info_")
	if !ok {
		return
	}
	rec, err := h.billing.Get(ctx, targetID)
	if err != nil {
		h.sendWithKeyboard(ctx, b, messages.AdminUserNotFound(), backKeyboard("admin_users"))
		return
	}
	h.sendWithKeyboard(ctx, b, messages.AdminUserInfo(rec), backKeyboard("admin_user_"+strconv.FormatInt(targetID, 10)))
}

// adminUpdateWarehouses forces a warehouse-list refresh using the
// acting admin's own API key.
func (h *Handlers) adminUpdateWarehouses(ctx context.Context, b *bot.Bot, actor int64) {
	rec, err := h.billing.Get(ctx, actor)
	if err != nil || rec.APIKey == "" {
		h.sendWithKeyboard(ctx, b, messages.AdminNoAPIKey(), backKeyboard("admin_common"))
		return
	}

	warehouses, err := h.marketplace.FetchWarehouses(ctx, rec.APIKey)
	if err != nil || len(warehouses) == 0 {
		log.Printf("Forced warehouse refresh failed: %v", err)
		h.sendWithKeyboard(ctx, b, messages.AdminWarehousesFailed(), backKeyboard("admin_common"))
		return
	}
	if err := h.warehouses.CacheWarehouses(warehouses, actor); err != nil {
		log.Printf("Warehouse cache write failed: %v", err)
		h.sendWithKeyboard(ctx, b, messages.AdminWarehousesFailed(), backKeyboard("admin_common"))
		return
	}

	info, _ := h.warehouses.UpdateInfo()
	h.sendWithKeyboard(ctx, b, messages.AdminWarehousesUpdated(info), backKeyboard("admin_common"))
}

func (h *Handlers) adminWarehousesInfo(ctx context.Context, b *bot.Bot) {
	info, err := h.warehouses.UpdateInfo()
	if err != nil {
		h.sendWithKeyboard(ctx, b, "Информация о кешировании складов отсутствует.", backKeyboard("admin_common"))
		return
	}
	h.sendWithKeyboard(ctx, b, messages.AdminWarehousesUpdated(info), backKeyboard("admin_common"))
}
