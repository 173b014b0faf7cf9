// Package activity журналирует действия пользователей и дублирует их в чат мониторинга.
package activity

import (
	"context"
	"sync/atomic"
	"time"

	"nailbot/internal/domain"
	"nailbot/internal/models"

	"github.com/rs/zerolog"
)

const (
	persistTimeout = 5 * time.Second
	drainTimeout   = 10 * time.Second
)

// Mirror пересылает событие во внешний канал.
type Mirror interface {
	Mirror(ctx context.Context, ev models.ActivityEvent) error
}

// Notifier принимает события без блокировки вызывающего и пишет их в фоне.
type Notifier struct {
	repo    domain.ActivityRepository
	mirror  Mirror
	loc     *time.Location
	queue   chan models.ActivityEvent
	now     func() time.Time
	dropped atomic.Int64
	done    chan struct{}
	logger  *zerolog.Logger
}

// NewNotifier mirror может быть nil, тогда события только сохраняются.
func NewNotifier(repo domain.ActivityRepository, mirror Mirror, loc *time.Location, queueSize int, logger *zerolog.Logger) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	if queueSize <= 0 {
		queueSize = models.ActivityQueueSize
	}
	return &Notifier{
		repo:   repo,
		mirror: mirror,
		loc:    loc,
		queue:  make(chan models.ActivityEvent, queueSize),
		now:    time.Now,
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Record ставит событие в очередь. При переполнении событие теряется.
func (n *Notifier) Record(_ context.Context, ev models.ActivityEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = n.now()
	}
	ev.Timestamp = ev.Timestamp.In(n.loc)

	select {
	case n.queue <- ev:
	default:
		total := n.dropped.Add(1)
		n.logger.Warn().
			Int64("user_id", ev.UserID).
			Str("action", ev.Action).
			Int64("dropped_total", total).
			Msg("Очередь активности переполнена, событие пропущено")
	}
}

func (n *Notifier) Dropped() int64 {
	return n.dropped.Load()
}

// Start запускает воркер. После отмены ctx воркер дописывает очередь и завершается.
func (n *Notifier) Start(ctx context.Context) {
	go func() {
		defer close(n.done)
		for {
			select {
			case <-ctx.Done():
				n.drain()
				return
			case ev := <-n.queue:
				n.process(ev)
			}
		}
	}()
}

// Done закрывается, когда воркер остановлен.
func (n *Notifier) Done() <-chan struct{} {
	return n.done
}

func (n *Notifier) drain() {
	deadline := time.Now().Add(drainTimeout)
	for time.Now().Before(deadline) {
		select {
		case ev := <-n.queue:
			n.process(ev)
		default:
			return
		}
	}
}

// process пишет со своим таймаутом, отмена ctx воркера его не прерывает.
func (n *Notifier) process(ev models.ActivityEvent) {
	pctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := n.repo.InsertActivity(pctx, &ev); err != nil {
		n.logger.Error().Err(err).Int64("user_id", ev.UserID).Str("action", ev.Action).Msg("Не удалось записать активность")
	}

	if n.mirror == nil {
		return
	}
	if err := n.mirror.Mirror(pctx, ev); err != nil {
		n.logger.Warn().Err(err).Str("action", ev.Action).Msg("Ошибка отправки уведомления")
	}
}
