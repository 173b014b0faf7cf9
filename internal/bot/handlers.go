package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nailbot/internal/models"
	"nailbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, l *zerolog.Logger, msg *tgbotapi.Message, r models.Requester) {
	text := strings.TrimSpace(msg.Text)

	// Кнопки главного меню работают с любого шага
	switch text {
	case service.ButtonPrice:
		b.record(ctx, r, models.ActionPrice, "")
		b.sendMenu(ctx, r.ChatID, priceText(b.catalog))
		return
	case service.ButtonAddress:
		b.record(ctx, r, models.ActionAddress, "")
		b.sendMenu(ctx, r.ChatID, fmt.Sprintf(msgAddress, b.config.Salon.Address))
		return
	case service.ButtonBook:
		b.record(ctx, r, models.ActionBookingStart, "")
		b.handleError(ctx, l, r.ChatID, "start booking", b.conversation.StartBooking(ctx, r))
		return
	case service.ButtonQuestion:
		b.record(ctx, r, models.ActionQuestionStart, "")
		b.handleError(ctx, l, r.ChatID, "start question", b.conversation.StartQuestion(ctx, r))
		return
	case service.ButtonCancel:
		b.cancel(ctx, l, r)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, l, msg, r)
		return
	}

	if msg.Contact != nil {
		err := b.conversation.ShareContact(ctx, r, msg.Contact.PhoneNumber)
		b.handleError(ctx, l, r.ChatID, "share contact", err)
		return
	}

	if msg.Text == "" {
		l.Debug().Msg("Сообщение без текста пропущено")
		return
	}

	b.handleText(ctx, l, r, text)
}

func (b *Bot) handleText(ctx context.Context, l *zerolog.Logger, r models.Requester, text string) {
	var step models.Step
	if session, err := b.stateService.GetSession(ctx, r.UserID); err != nil {
		l.Warn().Err(err).Msg("Не удалось прочитать сессию")
	} else if session != nil {
		step = session.Step
	}

	err := b.conversation.TextInput(ctx, r, text)
	switch {
	case err == nil:
		if step == models.StepAskQuestion {
			b.record(ctx, r, models.ActionQuestionSent, truncate(text, 100))
		}
	case errors.Is(err, service.ErrUnexpectedInput):
		l.Debug().Err(err).Msg("Текст вне ожидаемого шага")
		if step == "" {
			b.sendMenu(ctx, r.ChatID, msgMenuPrompt)
		}
	default:
		b.handleError(ctx, l, r.ChatID, "text input", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, l *zerolog.Logger, msg *tgbotapi.Message, r models.Requester) {
	command := msg.Command()

	switch command {
	case "start":
		b.record(ctx, r, models.ActionStart, "")
		b.sendMenu(ctx, r.ChatID, fmt.Sprintf(msgGreeting, b.config.Salon.Name))
		return
	case "myid":
		b.record(ctx, r, models.ActionMyID, "")
		b.sendMessage(ctx, r.ChatID, fmt.Sprintf(msgMyID, r.ChatID))
		return
	case "cancel":
		b.cancel(ctx, l, r)
		return
	case "stats", "export", "user":
	default:
		l.Debug().Str("command", command).Msg("Неизвестная команда")
		return
	}

	if !b.isAdmin(r.ChatID) {
		l.Warn().Str("command", command).Msg("Команда администратора от другого чата")
		b.sendMessage(ctx, r.ChatID, msgForbidden)
		return
	}

	switch command {
	case "stats":
		b.handleStats(ctx, l, r.ChatID)
	case "export":
		b.handleExport(ctx, l, r.ChatID)
	case "user":
		b.handleUserActions(ctx, l, r.ChatID, msg.CommandArguments())
	}
}

func (b *Bot) cancel(ctx context.Context, l *zerolog.Logger, r models.Requester) {
	b.record(ctx, r, models.ActionCancel, "")
	b.handleError(ctx, l, r.ChatID, "cancel", b.conversation.Cancel(ctx, r))
}

func (b *Bot) handleCallback(ctx context.Context, l *zerolog.Logger, cq *tgbotapi.CallbackQuery, r models.Requester) {
	// Отвечаем на callback сразу, чтобы убрать "часики"
	b.answerCallback(l, cq.ID, "")

	cb, err := models.ParseCallback(cq.Data)
	if err != nil {
		l.Warn().Err(err).Str("data", cq.Data).Msg("Неизвестный callback")
		return
	}

	switch cb.Kind {
	case models.CallbackKindService:
		err := b.conversation.SelectService(ctx, r, cb.Index)
		if err == nil {
			if cb.Index >= 0 && cb.Index < len(b.catalog) {
				b.record(ctx, r, models.ActionServiceSelected, b.catalog[cb.Index].Name)
			}
			b.removeButtons(l, cq)
		}
		b.handleError(ctx, l, r.ChatID, "select service", err)

	case models.CallbackKindConfirm:
		_, err := b.conversation.ConfirmDecision(ctx, r, cb.Accept)
		if err == nil || errors.Is(err, service.ErrAdminNotConfigured) {
			if err == nil && !cb.Accept {
				b.record(ctx, r, models.ActionBookingCancelled, "")
			}
			b.removeButtons(l, cq)
		}
		b.handleError(ctx, l, r.ChatID, "confirm", err)

	case models.CallbackKindDecision:
		_, err := b.approval.Decide(ctx, models.Decision{
			OriginChatID: r.ChatID,
			ActorID:      r.UserID,
			BookingID:    cb.BookingID,
			Accept:       cb.Accept,
		})
		if errors.Is(err, service.ErrScheduling) && b.metrics != nil {
			b.metrics.SchedulingErrors.Inc()
		}
		// карточка закрыта: решение принято или заявка уже не ждет решения
		if err == nil || errors.Is(err, service.ErrScheduling) || errors.Is(err, service.ErrNotFound) {
			b.removeButtons(l, cq)
		}
		b.handleError(ctx, l, r.ChatID, "decide", err)
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
