package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nailbot/internal/activity"
	"nailbot/internal/models"

	"github.com/rs/zerolog"
)

// handleStats отчет за сегодня: активность и счетчики заявок.
func (b *Bot) handleStats(ctx context.Context, l *zerolog.Logger, chatID int64) {
	stats, err := b.reporter.DailyReport(ctx, time.Now())
	if err != nil {
		l.Error().Err(err).Msg("Failed to build daily stats")
		b.sendMessage(ctx, chatID, msgStatsFailed)
		return
	}

	text := activity.FormatReport(stats)

	counts, err := b.bookings.CountBookingsByStatus(ctx)
	if err != nil {
		l.Warn().Err(err).Msg("Failed to count bookings")
	} else {
		text += bookingCountsText(counts)
	}

	b.sendHTML(ctx, chatID, text)
}

func (b *Bot) handleUserActions(ctx context.Context, l *zerolog.Logger, chatID int64, args string) {
	userID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || userID == 0 {
		b.sendMessage(ctx, chatID, msgUserUsage)
		return
	}

	actions, err := b.reporter.UserActions(ctx, userID, models.DefaultUserActionsLimit)
	if err != nil {
		l.Error().Err(err).Int64("target_user_id", userID).Msg("Failed to load user actions")
		b.sendMessage(ctx, chatID, msgStatsFailed)
		return
	}

	b.sendMessage(ctx, chatID, userActionsText(userID, actions))
}

// handleExport выгружает заявки за последние Exports.Days дней в xlsx.
func (b *Bot) handleExport(ctx context.Context, l *zerolog.Logger, chatID int64) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -b.config.Exports.Days)

	filePath, err := b.exportToExcel(ctx, startDate, endDate)
	if err != nil {
		l.Error().Err(err).Msg("Failed to export bookings")
		b.sendMessage(ctx, chatID, msgExportFailed)
		return
	}

	caption := fmt.Sprintf("Заявки с %s по %s", startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))
	if _, err := b.tgService.SendDocument(chatID, filePath, caption); err != nil {
		l.Error().Err(err).Str("file_path", filePath).Msg("Failed to send export file")
		b.sendMessage(ctx, chatID, msgExportFailed)
	}
}
