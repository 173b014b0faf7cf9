package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"nailbot/internal/domain"
	"nailbot/internal/models"

	"github.com/rs/zerolog"
)

const defaultRecheckInterval = time.Minute

// FailoverStateRepository работает с primary (Redis), а при ошибке переключается на fallback
// и раз в recheck пробует вернуться. Сессии, созданные во время сбоя, остаются в fallback.
// Сессии, сброшенные без primary, запоминаются и удаляются из primary до первого чтения после восстановления.
type FailoverStateRepository struct {
	primary   domain.StateRepository
	fallback  domain.StateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	recheck   time.Duration
	now       func() time.Time

	mu      sync.Mutex
	cleared map[int64]struct{}
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		recheck:  defaultRecheckInterval,
		now:      time.Now,
		cleared:  make(map[int64]struct{}),
	}
}

func (r *FailoverStateRepository) usePrimary(ctx context.Context) bool {
	if r.isDown.Load() {
		now := r.now()
		last := r.lastCheck.Load()
		if now.Sub(time.Unix(0, last)) < r.recheck {
			return false
		}
		// одна попытка на интервал
		if !r.lastCheck.CompareAndSwap(last, now.UnixNano()) {
			return false
		}
	}

	if err := r.flushCleared(ctx); err != nil {
		r.markDown("flush_cleared", err)
		return false
	}
	return true
}

// rememberCleared откладывает удаление сессии из primary до его восстановления.
func (r *FailoverStateRepository) rememberCleared(userID int64) {
	r.mu.Lock()
	r.cleared[userID] = struct{}{}
	r.mu.Unlock()
}

func (r *FailoverStateRepository) flushCleared(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID := range r.cleared {
		if err := r.primary.ClearState(ctx, userID); err != nil {
			return err
		}
		delete(r.cleared, userID)
	}
	return nil
}

func (r *FailoverStateRepository) pendingClears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cleared)
}

func (r *FailoverStateRepository) markDown(op string, err error) {
	r.lastCheck.Store(r.now().UnixNano())
	if r.isDown.CompareAndSwap(false, true) {
		r.logger.Error().Err(err).Str("op", op).Msg("Primary state repository failed, falling back to memory")
	}
}

func (r *FailoverStateRepository) markUp() {
	if r.isDown.CompareAndSwap(true, false) {
		r.logger.Info().Msg("Primary state repository recovered")
	}
}

func (r *FailoverStateRepository) IsDegraded() bool {
	return r.isDown.Load()
}

func (r *FailoverStateRepository) GetState(ctx context.Context, userID int64) (*models.Session, error) {
	if r.usePrimary(ctx) {
		session, err := r.primary.GetState(ctx, userID)
		if err == nil {
			r.markUp()
			return session, nil
		}
		r.markDown("get", err)
	}

	return r.fallback.GetState(ctx, userID)
}

func (r *FailoverStateRepository) SetState(ctx context.Context, session *models.Session) error {
	if r.usePrimary(ctx) {
		err := r.primary.SetState(ctx, session)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown("set", err)
	}

	return r.fallback.SetState(ctx, session)
}

func (r *FailoverStateRepository) ClearState(ctx context.Context, userID int64) error {
	// fallback чистим всегда, там могла остаться сессия со времени сбоя
	fallbackErr := r.fallback.ClearState(ctx, userID)

	if r.usePrimary(ctx) {
		err := r.primary.ClearState(ctx, userID)
		if err == nil {
			r.markUp()
			return fallbackErr
		}
		r.rememberCleared(userID)
		r.markDown("clear", err)
		return fallbackErr
	}

	r.rememberCleared(userID)
	return fallbackErr
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.usePrimary(ctx) {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown("rate_limit", err)
	}

	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}
