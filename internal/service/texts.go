package service

import (
	"fmt"
	"strings"

	"nailbot/internal/models"
)

const (
	msgChooseService  = "Выберите услугу:"
	msgUnknownService = "Такой услуги нет. Выберите услугу из списка:"
	msgEnterDate      = "Введите дату в формате ДД.ММ.ГГГГ (например 05.01.2026):"
	msgBadDate        = "Не получилось разобрать дату. " + msgEnterDate
	msgEnterTime      = "Введите время в формате ЧЧ:ММ (например 16:00):"
	msgBadTime        = "Не получилось разобрать время. " + msgEnterTime
	msgShareContact   = "Нажмите кнопку, чтобы отправить номер телефона:"
	msgUseContactBtn  = "Пожалуйста, отправьте номер через кнопку «Поделиться контактом»."
	msgEnterName      = "Как вас записать? (имя)"
	msgEnterComment   = "Комментарий (необязательно). Если нет — напишите «-»."
	msgDiscarded      = "Ок, отменено."
	msgCancelled      = "Отменено."
	msgAdminMissing   = "Админ ещё не настроен (ADMIN_ID=0). Пропишите ADMIN_ID в .env."
	msgSubmitted      = "Заявка отправлена администратору. Ожидайте подтверждения."
	msgSaveFailed     = "Не удалось сохранить заявку. Попробуйте нажать «Отправить» ещё раз."
	msgAskQuestion    = "Напишите вопрос одним сообщением — он уйдёт администратору."
	msgQuestionSent   = "Отправлено администратору."
	msgQuestionEmpty  = "Вопрос пустой. Напишите его одним сообщением."
	msgQuestionFailed = "Не удалось отправить вопрос. Попробуйте позже."
	msgForbidden      = "Недостаточно прав."
	msgNotFound       = "Заявка не найдена."
	msgClientRejected = "Запись отменена администратором. Если нужно — создайте новую заявку."
	msgMainMenuPrompt = "Выберите действие кнопками ниже."
	btnShareContact   = "Поделиться контактом"
	btnCancel         = "Отмена"
	btnSend           = "Отправить"
	btnConfirm        = "Подтвердить"
	btnReject         = "Отменить"
	btnBook           = "Записаться"
	btnPrice          = "Прайс"
	btnAddress        = "Адрес"
	btnQuestion       = "Вопрос администратору"
)

// Подписи кнопок главного меню, по ним бот распознает нажатия.
const (
	ButtonBook     = btnBook
	ButtonPrice    = btnPrice
	ButtonAddress  = btnAddress
	ButtonQuestion = btnQuestion
	ButtonCancel   = btnCancel
)

// MainMenu раскладка главного меню.
func MainMenu() [][]models.Option {
	return [][]models.Option{
		{{Label: btnBook}},
		{{Label: btnPrice}, {Label: btnAddress}},
		{{Label: btnQuestion}},
	}
}

func serviceOptions(catalog []models.Service) [][]models.Option {
	opts := make([]models.Option, 0, len(catalog))
	for i, s := range catalog {
		opts = append(opts, models.Option{Label: s.Label(), Data: models.ServiceCallback(i)})
	}
	return models.Column(opts...)
}

func contactOptions() [][]models.Option {
	return models.Column(
		models.Option{Label: btnShareContact, RequestContact: true},
		models.Option{Label: btnCancel},
	)
}

func confirmOptions() [][]models.Option {
	return [][]models.Option{{
		{Label: btnSend, Data: models.CallbackSendYes},
		{Label: btnCancel, Data: models.CallbackSendNo},
	}}
}

func decisionOptions(bookingID int64) [][]models.Option {
	return [][]models.Option{{
		{Label: btnConfirm, Data: models.DecisionCallback(bookingID, true)},
		{Label: btnReject, Data: models.DecisionCallback(bookingID, false)},
	}}
}

func serviceSelectedText(s models.Service) string {
	return fmt.Sprintf("Услуга: %s (%s), ~%d мин.\n\n%s", s.Name, s.Price, s.DurationMin, msgEnterDate)
}

func summaryText(d models.Draft) string {
	return fmt.Sprintf("Проверьте заявку:\nУслуга: %s — %s\nДата/время: %s %s\nИмя: %s\nТелефон: %s\nКомментарий: %s\n\nОтправить администратору?",
		d.Service, d.Price, d.DateText, d.TimeText, d.Name, d.Phone, d.Comment)
}

func adminCardText(b *models.Booking) string {
	client := b.Name
	if b.Username != "" {
		client = fmt.Sprintf("%s (@%s)", b.Name, strings.TrimPrefix(b.Username, "@"))
	}
	return fmt.Sprintf("Новая заявка #%d\nУслуга: %s — %s (~%d мин)\nДата/время: %s %s\nКлиент: %s\nТелефон: %s\nКомментарий: %s",
		b.ID, b.Service, b.Price, b.DurationMin, b.DateText, b.TimeText, client, b.Phone, b.Comment)
}

func questionText(r models.Requester, text string) string {
	var sb strings.Builder
	sb.WriteString("Вопрос от клиента:\n")
	if r.FullName != "" {
		sb.WriteString("Имя: " + r.FullName + "\n")
	}
	if m := r.Mention(); m != "" {
		sb.WriteString(m + "\n")
	}
	fmt.Fprintf(&sb, "user_id: %d\n\n%s", r.UserID, text)
	return sb.String()
}

func clientConfirmedText(b *models.Booking, address string) string {
	return fmt.Sprintf("Запись подтверждена: %s, %s %s.\nАдрес: %s", b.Service, b.DateText, b.TimeText, address)
}

func adminConfirmedText(id int64) string {
	return fmt.Sprintf("Подтверждено #%d. Напоминания поставлены.", id)
}

func adminConfirmedNoRemindersText(id int64, err error) string {
	return fmt.Sprintf("Подтверждено #%d, но напоминания не поставлены: %v", id, err)
}

func adminRejectedText(id int64) string {
	return fmt.Sprintf("Отменено #%d.", id)
}
