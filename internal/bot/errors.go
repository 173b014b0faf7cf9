package bot

import (
	"context"
	"errors"

	"nailbot/internal/service"

	"github.com/rs/zerolog"
)

// getErrorMessage возвращает текст для пользователя. Пустая строка значит,
// что сервис уже ответил пользователю сам.
func getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUnexpectedInput),
		errors.Is(err, service.ErrAdminNotConfigured),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrScheduling),
		errors.Is(err, service.ErrDelivery):
		return ""
	}

	// Default error message
	return msgInternalError
}

func errorLevel(err error) zerolog.Level {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUnexpectedInput):
		return zerolog.DebugLevel
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrAdminNotConfigured):
		return zerolog.InfoLevel
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrDelivery):
		return zerolog.WarnLevel
	}
	return zerolog.ErrorLevel
}

func (b *Bot) handleError(ctx context.Context, l *zerolog.Logger, chatID int64, op string, err error) {
	if err == nil {
		return
	}

	l.WithLevel(errorLevel(err)).Err(err).Str("op", op).Msg("Ошибка обработки")

	if text := getErrorMessage(err); text != "" {
		b.sendMessage(ctx, chatID, text)
	}
}
