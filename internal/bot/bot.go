package bot

import (
	"context"
	"os"
	"strings"
	"time"

	"nailbot/internal/config"
	"nailbot/internal/domain"
	"nailbot/internal/logging"
	"nailbot/internal/models"
	"nailbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// updateTimeout ограничивает обработку одного обновления.
const updateTimeout = 30 * time.Second

type Bot struct {
	tgService    domain.TelegramService
	config       *config.Config
	stateService domain.StateManager
	conversation domain.ConversationService
	approval     domain.ApprovalService
	activity     domain.ActivityRecorder
	reporter     domain.ActivityReporter
	bookings     domain.Repository
	catalog      []models.Service
	pool         *worker.Pool
	metrics      *Metrics
	logger       *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	config *config.Config,
	stateService domain.StateManager,
	conversation domain.ConversationService,
	approval domain.ApprovalService,
	activity domain.ActivityRecorder,
	reporter domain.ActivityReporter,
	bookings domain.Repository,
	catalog []models.Service,
	metrics *Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	if catalog == nil {
		catalog = models.DefaultServices
	}

	return &Bot{
		tgService:    tgService,
		config:       config,
		stateService: stateService,
		conversation: conversation,
		approval:     approval,
		activity:     activity,
		reporter:     reporter,
		bookings:     bookings,
		catalog:      catalog,
		pool:         worker.NewPool(config.Bot.Workers, models.WorkerQueueSize, logging.Component(logger, "pool")),
		metrics:      metrics,
		logger:       logger,
	}, nil
}

// Start читает обновления и раздает их воркерам. Обновления одного
// пользователя обрабатываются строго по порядку.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.Bot.UpdateTimeout

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().
		Str("username", b.tgService.GetSelf().UserName).
		Int("workers", b.pool.Size()).
		Msg("Authorized on account")

	// уже принятые обновления дорабатываются после отмены ctx
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	b.pool.Start(workCtx)
	defer func() {
		b.pool.Stop()
		cancelWork()
	}()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	r, ok := requesterFrom(update)
	if !ok {
		return
	}

	err := b.pool.Submit(ctx, r.UserID, func(jobCtx context.Context) {
		b.processUpdate(jobCtx, update)
	})
	if err != nil {
		b.logger.Warn().Err(err).Int("update_id", update.UpdateID).Int64("user_id", r.UserID).Msg("Обновление не принято в обработку")
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	r, ok := requesterFrom(update)
	if !ok {
		return
	}

	// Создаем контекст для обработки каждого обновления
	updateCtx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	updateCtx, l := logging.WithRequest(updateCtx, b.logger, map[string]interface{}{
		"user_id":   r.UserID,
		"update_id": update.UpdateID,
	})

	b.withRecovery(l, func() {
		if b.isBlacklisted(r.UserID) {
			l.Debug().Msg("Пользователь в черном списке")
			return
		}

		if !b.isAdmin(r.ChatID) && !b.allow(updateCtx, l, update, r) {
			return
		}

		switch {
		case update.CallbackQuery != nil:
			b.countUpdate("callback")
			b.handleCallback(updateCtx, l, update.CallbackQuery, r)
		case update.Message != nil:
			b.countUpdate("message")
			b.handleMessage(updateCtx, l, update.Message, r)
		}
	})
}

func (b *Bot) allow(ctx context.Context, l *zerolog.Logger, update tgbotapi.Update, r models.Requester) bool {
	allowed, err := b.stateService.CheckRateLimit(ctx, r.UserID, b.config.Bot.RateLimitMessages, time.Duration(b.config.Bot.RateLimitWindow)*time.Second)
	if err != nil {
		l.Error().Err(err).Msg("Rate limit check failed")
		return true
	}
	if allowed {
		return true
	}

	l.Warn().Msg("Rate limit exceeded")
	if b.metrics != nil {
		b.metrics.RateLimited.Inc()
	}
	if update.CallbackQuery != nil {
		b.answerCallback(l, update.CallbackQuery.ID, "")
		return false
	}
	b.sendMessage(ctx, r.ChatID, msgRateLimited)
	return false
}

// requesterFrom достает автора обновления. Обновления без пользователя игнорируются.
func requesterFrom(update tgbotapi.Update) (models.Requester, bool) {
	var (
		from   *tgbotapi.User
		chatID int64
	)

	switch {
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
		if update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
	case update.Message != nil:
		from = update.Message.From
		if update.Message.Chat != nil {
			chatID = update.Message.Chat.ID
		}
	}

	if from == nil || from.ID == 0 {
		return models.Requester{}, false
	}
	if chatID == 0 {
		chatID = from.ID
	}

	return models.Requester{
		UserID:   from.ID,
		ChatID:   chatID,
		Username: from.UserName,
		FullName: strings.TrimSpace(from.FirstName + " " + from.LastName),
	}, true
}
