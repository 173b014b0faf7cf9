package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nailbot/internal/config"
	"nailbot/internal/models"
)

const dayLayout = "2006-01-02"

// ReportSink получатель ежедневного отчета.
type ReportSink interface {
	SendHTML(ctx context.Context, text string) error
}

// DailyReport статистика за календарный день салона, в который попадает day.
func (n *Notifier) DailyReport(ctx context.Context, day time.Time) (*models.DailyStats, error) {
	stats, err := n.repo.GetDailyStats(ctx, day.In(n.loc).Format(dayLayout), models.TopActionsLimit)
	if err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}
	return stats, nil
}

// UserActions последние действия пользователя.
func (n *Notifier) UserActions(ctx context.Context, userID int64, limit int) ([]*models.ActivityEvent, error) {
	if limit <= 0 {
		limit = models.DefaultUserActionsLimit
	}
	return n.repo.GetUserActions(ctx, userID, limit)
}

func FormatReport(stats *models.DailyStats) string {
	var sb strings.Builder
	sb.WriteString("📈 <b>Дневной отчет активности</b>\n")
	fmt.Fprintf(&sb, "📅 Дата: %s\n", stats.Day)
	fmt.Fprintf(&sb, "👥 Уникальных пользователей: <b>%d</b>\n", stats.UniqueUsers)
	fmt.Fprintf(&sb, "🔄 Всего действий: <b>%d</b>\n\n", stats.TotalActions)

	if len(stats.TopActions) > 0 {
		sb.WriteString("<b>Топ действий:</b>\n")
		for _, a := range stats.TopActions {
			fmt.Fprintf(&sb, "• %s: %d\n", escapeHTML(a.Action), a.Count)
		}
	}
	return sb.String()
}

// StartDailyReport раз в сутки в reportTime (ЧЧ:ММ по времени салона) отправляет отчет в sink.
func (n *Notifier) StartDailyReport(ctx context.Context, reportTime string, sink ReportSink) error {
	hour, minute, err := config.ParseClock(reportTime)
	if err != nil {
		return fmt.Errorf("daily report time: %w", err)
	}

	go func() {
		timer := time.NewTimer(timeUntilNext(n.now().In(n.loc), hour, minute))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				n.sendDailyReport(ctx, sink)
				timer.Reset(timeUntilNext(n.now().In(n.loc), hour, minute))
			}
		}
	}()
	return nil
}

func (n *Notifier) sendDailyReport(ctx context.Context, sink ReportSink) {
	stats, err := n.DailyReport(ctx, n.now())
	if err != nil {
		n.logger.Error().Err(err).Msg("Ошибка построения дневного отчета")
		return
	}
	if err := sink.SendHTML(ctx, FormatReport(stats)); err != nil {
		n.logger.Error().Err(err).Msg("Ошибка отправки отчета")
		return
	}
	n.logger.Info().Str("day", stats.Day).Int("total_actions", stats.TotalActions).Msg("Дневной отчет отправлен")
}

// timeUntilNext время до ближайшего hour:minute в поясе now.
func timeUntilNext(now time.Time, hour, minute int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
