package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nailbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramMirror шлет события и отчеты в чат мониторинга через отдельного бота.
type TelegramMirror struct {
	bot    MessageSender
	chatID int64
	loc    *time.Location
}

func NewTelegramMirror(bot MessageSender, chatID int64, loc *time.Location) *TelegramMirror {
	if loc == nil {
		loc = time.UTC
	}
	return &TelegramMirror{bot: bot, chatID: chatID, loc: loc}
}

func (m *TelegramMirror) Mirror(ctx context.Context, ev models.ActivityEvent) error {
	return m.SendHTML(ctx, FormatEvent(ev, m.loc))
}

func (m *TelegramMirror) SendHTML(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(m.chatID, text)
	msg.ParseMode = models.ParseModeHTML
	if _, err := m.bot.Send(msg); err != nil {
		return fmt.Errorf("monitoring chat %d: %w", m.chatID, err)
	}
	return nil
}

// FormatEvent HTML-карточка события для чата мониторинга.
func FormatEvent(ev models.ActivityEvent, loc *time.Location) string {
	user := ev.Username
	if user == "" {
		user = fmt.Sprintf("ID%d", ev.UserID)
	}
	details := ev.Details
	if details == "" {
		details = "нет"
	}

	var sb strings.Builder
	sb.WriteString("📊 <b>Активность пользователя</b>\n")
	fmt.Fprintf(&sb, "👤 User: @%s\n", escapeHTML(strings.TrimPrefix(user, "@")))
	fmt.Fprintf(&sb, "🎯 Действие: <b>%s</b>\n", escapeHTML(ev.Action))
	fmt.Fprintf(&sb, "📝 Детали: %s\n", escapeHTML(details))
	fmt.Fprintf(&sb, "🕐 Время: %s", ev.Timestamp.In(loc).Format("15:04:05"))
	return sb.String()
}

func escapeHTML(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}
