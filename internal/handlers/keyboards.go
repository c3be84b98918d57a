package handlers

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

func guestKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "▶️ Продолжить", CallbackData: "guest_continue"}},
		},
	}
}

func accessKeyboard(showTrial, canRestore bool) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	if showTrial {
		rows = append(rows, []models.InlineKeyboardButton{{Text: "🆓 Пробный доступ", CallbackData: "trial"}})
	}
	if canRestore {
		rows = append(rows, []models.InlineKeyboardButton{{Text: "♻️ Восстановить доступ", CallbackData: "restore_account"}})
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "💳 Пополнить баланс", CallbackData: "buy"}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func blockedKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "💳 Пополнить баланс", CallbackData: "buy"}},
		},
	}
}

func mainMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "👤 Профиль", CallbackData: "main_profile"}},
			{{Text: "💳 Пополнить баланс", CallbackData: "buy"}},
		},
	}
}

func profileKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🔑 Сменить API-ключ", CallbackData: "api_change"}},
			{{Text: "🗑 Удалить аккаунт", CallbackData: "profile_delete"}},
			{{Text: "⬅️ В меню", CallbackData: "back_to_main_menu"}},
		},
	}
}

func deleteConfirmKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🗑 Да, удалить", CallbackData: "profile_delete_confirm"}},
			{{Text: "⬅️ Назад", CallbackData: "main_profile"}},
		},
	}
}

func backKeyboard(target string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "⬅️ Назад", CallbackData: target}},
		},
	}
}

func adminMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "👤 Пользователи", CallbackData: "admin_users"}},
			{{Text: "⚙️ Общее", CallbackData: "admin_common"}},
		},
	}
}

func adminUsersKeyboard(userIDs []int64) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for _, id := range userIDs {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: fmt.Sprintf("👤 %d", id), CallbackData: fmt.Sprintf("admin_user_%d", id)},
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "⬅️ Назад", CallbackData: "admin_back"}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func adminUserActionsKeyboard(userID int64) *models.InlineKeyboardMarkup {
	row := func(text, action string) []models.InlineKeyboardButton {
		return []models.InlineKeyboardButton{{Text: text, CallbackData: fmt.Sprintf("admin_%s_%d", action, userID)}}
	}
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			row("➕ Изменить баланс", "addmoney"),
			row("🚫 Заблокировать", "ban"),
			row("✅ Разблокировать", "unban"),
			row("❌ Аннулировать триал", "canceltrial"),
			row("🗑 В архив", "archive"),
			row("ℹ️ Инфо", "info"),
			{{Text: "⬅️ Назад", CallbackData: "admin_users"}},
		},
	}
}

func adminCommonKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🔄 Обновить склады", CallbackData: "admin_update_warehouses"}},
			{{Text: "📋 Инфо кеша складов", CallbackData: "admin_warehouses_info"}},
			{{Text: "⬅️ Назад", CallbackData: "admin_back"}},
		},
	}
}
