package bot

import (
	"context"
	"runtime/debug"

	"nailbot/internal/models"

	"github.com/rs/zerolog"
)

func (b *Bot) withRecovery(l *zerolog.Logger, handler func()) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			l.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

func (b *Bot) isBlacklisted(userID int64) bool {
	for _, id := range b.config.Blacklist {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) isAdmin(chatID int64) bool {
	return b.config.IsAdmin(chatID)
}

// record отправляет действие в журнал активности, не блокируя обработку.
func (b *Bot) record(ctx context.Context, r models.Requester, action, details string) {
	if b.activity == nil {
		return
	}
	b.activity.Record(ctx, models.ActivityEvent{
		UserID:   r.UserID,
		Username: r.Username,
		Action:   action,
		Details:  details,
		ChatID:   r.ChatID,
	})
}
