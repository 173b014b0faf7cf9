package bot

import (
	"fmt"
	"strings"

	"nailbot/internal/models"
)

const (
	msgGreeting      = "%s — запись через бота.\nВыберите действие кнопками ниже."
	msgMenuPrompt    = "Выберите действие кнопками ниже."
	msgMyID          = "Ваш chat_id: %d"
	msgAddress       = "Адрес: %s"
	msgForbidden     = "Недостаточно прав."
	msgRateLimited   = "⚠️ Вы отправляете сообщения слишком часто. Пожалуйста, подождите немного."
	msgInternalError = "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже."
	msgStatsFailed   = "Не удалось получить статистику."
	msgExportFailed  = "Не удалось сформировать выгрузку."
	msgUserUsage     = "Использование: /user <user_id>"
	msgNoActions     = "Действий не найдено."
)

func priceText(catalog []models.Service) string {
	lines := make([]string, 0, len(catalog)+1)
	lines = append(lines, "Прайс:")
	for _, s := range catalog {
		lines = append(lines, "• "+s.Label())
	}
	return strings.Join(lines, "\n")
}

var statusTitles = []struct {
	status string
	title  string
}{
	{models.StatusPending, "ожидают"},
	{models.StatusConfirmed, "подтверждены"},
	{models.StatusCancelled, "отменены"},
}

func bookingCountsText(counts map[string]int) string {
	var sb strings.Builder
	sb.WriteString("\n<b>Заявки за все время:</b>\n")
	for _, st := range statusTitles {
		fmt.Fprintf(&sb, "• %s: %d\n", st.title, counts[st.status])
	}
	return sb.String()
}

func userActionsText(userID int64, actions []*models.ActivityEvent) string {
	if len(actions) == 0 {
		return msgNoActions
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Последние действия пользователя %d:\n", userID)
	for _, a := range actions {
		fmt.Fprintf(&sb, "• %s %s", a.Timestamp.Format("02.01 15:04"), a.Action)
		if a.Details != "" {
			sb.WriteString(": " + a.Details)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
