package bot

import (
	"context"

	"nailbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	if err := b.tgService.SendText(ctx, chatID, text); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// sendMenu отправляет текст вместе с клавиатурой главного меню.
func (b *Bot) sendMenu(ctx context.Context, chatID int64, text string) {
	if err := b.tgService.SendChoice(ctx, chatID, text, service.MainMenu()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send menu")
	}
}

func (b *Bot) sendHTML(ctx context.Context, chatID int64, text string) {
	if _, err := b.tgService.SendHTML(chatID, text); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send HTML message")
	}
}

func (b *Bot) answerCallback(l *zerolog.Logger, callbackID, text string) {
	if err := b.tgService.AnswerCallback(callbackID, text); err != nil {
		l.Debug().Err(err).Msg("Failed to answer callback")
	}
}

// removeButtons убирает inline-клавиатуру с сообщения, на котором нажали кнопку.
func (b *Bot) removeButtons(l *zerolog.Logger, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	if _, err := b.tgService.EditMessage(cq.Message.Chat.ID, cq.Message.MessageID, cq.Message.Text, nil); err != nil {
		l.Debug().Err(err).Int("message_id", cq.Message.MessageID).Msg("Failed to remove buttons")
	}
}
