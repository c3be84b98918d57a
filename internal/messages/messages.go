package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/malinawb/malina-bot/types"
)

const ParseModeHTML = "HTML"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func formatTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

var ruMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

func formatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), ruMonths[t.Month()-1], t.Year())
}

func ErrorDefault() string {
	return "🚫 <b>Ошибка сервиса</b>\nПопробуйте ещё раз."
}

func Welcome() string {
	return "🤖 <b>MalinaWB — ваш личный ассистент на Wildberries!</b>\n\n" +
		"🔹 <b>Автоматизация отчётов</b>\n" +
		"🔹 <b>Аналитика и уведомления</b>\n" +
		"🔹 <b>Упрощение рутины</b>\n\n" +
		"Нажмите <b>Продолжить</b>, чтобы зарегистрироваться и открыть доступ к возможностям бота 👇"
}

func AccessNew(trialDays int, monthlyPrice int64) string {
	return fmt.Sprintf("🔒 Для работы с ботом нужен доступ:\n"+
		"— Пробный %d дн. (один раз)\n"+
		"— Или пополните баланс: месяц — %d₽\n", trialDays, monthlyPrice)
}

func AccessRestore() string {
	return "🔒 У вас есть архивный аккаунт с положительным балансом — восстановите доступ или пополните баланс."
}

func AccessOnlyPay() string {
	return "🔒 Для работы с ботом нужен доступ. Пробный период недоступен, пополните баланс."
}

func AccessTrialExpired() string {
	return "🕒 <b>Пробный доступ завершён.</b>\n\nДля продолжения работы пополните баланс."
}

func AccessBlocked() string {
	return "⛔ <b>Ваш доступ временно приостановлен.</b>\n\nБаланс исчерпан. Для продолжения работы пополните баланс."
}

func AccessInactive() string {
	return "⛔️ Ваш доступ неактивен или истёк.\nПожалуйста, начните с команды /start."
}

func TrialActivated(until time.Time) string {
	return fmt.Sprintf("🆓 <b>Пробный доступ активирован до %s.</b>\n\n"+
		"Теперь отправьте свой API-ключ Wildberries, чтобы привязать магазин.", formatTime(until))
}

func TrialAlreadyUsed() string {
	return "Пробный доступ уже был использован."
}

func BuyNotImplemented() string {
	return "💳 Оплата пока не реализована.\nПопросите администратора пополнить баланс вручную."
}

func MainMenu(ent *types.Entitlement, sellerName string, dailyCost int64, createdAt time.Time) string {
	var b strings.Builder
	b.WriteString("👤 <b>Основное меню</b>\n")
	if sellerName == "" {
		sellerName = "—"
	}
	fmt.Fprintf(&b, "🛍️ <b>Магазин:</b> %s\n", Escape(sellerName))

	if ent.TrialActive && ent.TrialUntil != nil {
		b.WriteString("💰 <b>Баланс:</b> <code>—</code>\n")
		b.WriteString("⏳ <b>Осталось дней:</b> <code>—</code>\n")
		fmt.Fprintf(&b, "\n🆓 <b>Пробный доступ активен</b>\n⏳ <b>Действует до:</b> <code>%s</code>\n", formatTime(*ent.TrialUntil))
	} else {
		daysLeft := int64(0)
		if ent.Balance > 0 && dailyCost > 0 {
			daysLeft = ent.Balance / dailyCost
		}
		fmt.Fprintf(&b, "💰 <b>Баланс:</b> <code>%d₽</code>\n", ent.Balance)
		fmt.Fprintf(&b, "⏳ <b>Осталось дней:</b> <code>%d</code>\n", daysLeft)
	}
	if !createdAt.IsZero() {
		fmt.Fprintf(&b, "🗓️ <b>Зарегистрирован:</b> <code>%s</code>\n", formatDate(createdAt))
	}
	b.WriteString("\n<b>Выберите раздел:</b>")
	return b.String()
}

func AskAPIKey() string {
	return "🔑 Отправьте свой API-ключ Wildberries одним сообщением."
}

func AskRestoreKey() string {
	return "🔑 Для восстановления доступа отправьте API-ключ Wildberries того же магазина."
}

func APIKeySaved(sellerName string) string {
	return fmt.Sprintf("✅ Ключ проверен, магазин <b>%s</b> привязан.", Escape(sellerName))
}

func APIKeyInvalid() string {
	return "❌ Ключ не прошёл проверку. Убедитесь, что отправили действующий API-ключ Wildberries."
}

func RestoreDone(sellerName string, balance int64) string {
	return fmt.Sprintf("✅ Доступ магазина <b>%s</b> восстановлен.\n💰 Баланс: <b>%d₽</b>", Escape(sellerName), balance)
}

func RestoreNotFound() string {
	return "❌ Архивный аккаунт для этого магазина не найден."
}

func RestoreConflict() string {
	return "❌ Восстановление невозможно: на этом аккаунте уже есть данные. Обратитесь к администратору."
}

func AccountArchived() string {
	return "🗑 Аккаунт удалён. Баланс и история сохранены — вы сможете восстановить их, привязав тот же магазин."
}

// --- admin ---

func AdminDenied() string {
	return "⛔ Нет доступа."
}

func AdminMenu() string {
	return "🛠️ Админка. Выберите раздел:"
}

func AdminNoUsers() string {
	return "В базе нет пользователей."
}

func AdminChooseUser() string {
	return "Выберите пользователя:"
}

func AdminUserActions(userID int64) string {
	return fmt.Sprintf("Действия для пользователя <b>%d</b>:", userID)
}

func AdminAskAmount(userID int64) string {
	return fmt.Sprintf("На какую сумму изменить баланс пользователя <b>%d</b>?\n\n"+
		"Введите положительное число для пополнения или отрицательное для списания (например, <code>+399</code> или <code>-13</code>):", userID)
}

func AdminAmountInvalid() string {
	return "Введите целое число (например, <code>+399</code> или <code>-13</code>):"
}

func AdminBalanceChanged(userID, delta, balance int64) string {
	return fmt.Sprintf("✅ Баланс пользователя <b>%d</b> изменён на %+d₽.\n💰 Новый баланс: <b>%d₽</b>", userID, delta, balance)
}

func AdminTrialCancelled(userID int64) string {
	return fmt.Sprintf("❌ Пробный доступ пользователя <b>%d</b> аннулирован.", userID)
}

func AdminSuspended(userID int64) string {
	return fmt.Sprintf("🚫 Пользователь %d заблокирован (доступ обнулён).", userID)
}

func AdminReinstated(userID int64) string {
	return fmt.Sprintf("✅ Пользователь %d разблокирован (может снова активировать пробный доступ).", userID)
}

func AdminArchivedUser(userID int64) string {
	return fmt.Sprintf("🗑 Аккаунт пользователя %d отправлен в архив.", userID)
}

func AdminUserInfo(rec *types.AccessRecord) string {
	apiKey := "-"
	if rec.APIKey != "" {
		apiKey = rec.APIKey
	}
	trialUntil := "-"
	if rec.TrialUntil != nil {
		trialUntil = formatTime(*rec.TrialUntil)
	}
	lastBilling := "-"
	if rec.LastBilling != nil {
		lastBilling = formatTime(*rec.LastBilling)
	}
	seller := rec.SellerName
	if seller == "" {
		seller = "-"
	}
	return fmt.Sprintf("<b>Пользователь %d</b>\n"+
		"💰 Баланс: <code>%d₽</code>\n"+
		"Списано по: <code>%s</code>\n"+
		"Пробный до: <code>%s</code>\n"+
		"Пробный активирован: <code>%t</code>\n"+
		"В архиве: <code>%t</code>\n"+
		"Магазин: <code>%s</code>\n"+
		"API ключ: <code>%s</code>",
		rec.UserID, rec.Balance, lastBilling, trialUntil, rec.TrialActivated, rec.IsArchived, Escape(seller), Escape(apiKey))
}

func AdminUserNotFound() string {
	return "Пользователь не найден."
}

func AdminWarehousesUpdated(info *types.WarehouseCacheInfo) string {
	if info == nil {
		return "✅ Склады обновлены."
	}
	return fmt.Sprintf("✅ Склады обновлены!\n\nПоследнее обновление: %s\nОбновил пользователь: %d",
		info.UpdatedAt.Format("02.01.2006 15:04:05"), info.UpdatedBy)
}

func AdminWarehousesFailed() string {
	return "❌ Не удалось обновить список складов Wildberries."
}

func AdminNoAPIKey() string {
	return "❌ Не найден валидный API-ключ для запроса к Wildberries."
}
