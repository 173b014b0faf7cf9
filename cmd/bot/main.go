package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"nailbot/internal/activity"
	"nailbot/internal/api"
	"nailbot/internal/bot"
	"nailbot/internal/config"
	"nailbot/internal/database"
	"nailbot/internal/domain"
	"nailbot/internal/events"
	"nailbot/internal/logging"
	"nailbot/internal/metrics"
	"nailbot/internal/models"
	"nailbot/internal/reminder"
	"nailbot/internal/repository"
	"nailbot/internal/service"
	"nailbot/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, catalog, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	loc, err := cfg.Salon.Location()
	if err != nil {
		logger.Error().Err(err).Str("timezone", cfg.Salon.Timezone).Msg("Неизвестный часовой пояс салона")
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, logging.Component(&logger, "database"))
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateService := initStateService(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	botWrapper, err := bot.Connect(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	tgService := service.NewTelegramService(botWrapper)

	eventBus := events.NewEventBus()
	eventBus.OnError(func(ev *events.Event, err error) {
		logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: handler failed")
	})

	scheduler, shutdownReminders, err := initReminders(ctx, cfg, tgService, &logger)
	if err != nil {
		return err
	}
	defer shutdownReminders()

	planner := reminder.NewPlanner(scheduler, loc, cfg.Salon.Address, logging.Component(&logger, "reminders"))

	approval := service.NewApprovalService(
		db, tgService, planner, eventBus,
		cfg.Admin.ChatID, cfg.Salon.Address,
		logging.Component(&logger, "approval"),
	)
	conversation := service.NewConversationService(
		stateService, db, tgService, approval, eventBus,
		catalog, cfg.Admin.ChatID,
		logging.Component(&logger, "conversation"),
	)

	notifier, err := initActivity(ctx, cfg, db, loc, &logger)
	if err != nil {
		return err
	}

	if cfg.Admin.ChatID == 0 {
		logger.Warn().Msg("admin.chat_id не задан: заявки и вопросы не будут доставлены, узнайте chat_id командой /myid")
	}

	if cfg.API.Enabled {
		checks := map[string]api.HealthCheck{"database": db.PingContext}
		if redisClient != nil {
			checks["redis"] = func(ctx context.Context) error { return repository.Ping(ctx, redisClient) }
		}
		apiServer := api.NewHTTPServer(cfg.API, db, notifier, checks, logging.Component(&logger, "api"))
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = apiServer.Shutdown(shutdownCtx)
		}()
	} else if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, logging.Component(&logger, "backup"))
		go backupService.Start(ctx)
	}

	telegramBot, err := bot.NewBot(
		tgService, cfg, stateService, conversation, approval,
		notifier, notifier, db, catalog,
		bot.NewMetrics(prometheus.DefaultRegisterer), &logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}
	telegramBot.RegisterEventHandlers(eventBus)

	logger.Info().Str("salon", cfg.Salon.Name).Int("services", len(catalog)).Msg("Бот запущен...")
	telegramBot.Start(ctx)
	telegramBot.Stop()
	stop()

	// журнал активности дописывает очередь после остановки бота
	select {
	case <-notifier.Done():
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("Журнал активности не успел сохранить очередь")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, []models.Service, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	catalogPath := os.Getenv("SERVICES_PATH")
	if catalogPath == "" {
		catalogPath = cfg.Salon.CatalogPath
	}
	catalog, err := config.LoadCatalog(catalogPath)
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", catalogPath).Msg("Ошибка загрузки прайса")
		return nil, nil, zerolog.Logger{}, closer, err
	}

	return cfg, catalog, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	stateLogger := logging.Component(logger, "state")
	fallbackRepo := repository.NewMemoryStateRepository(models.DefaultRedisTTL)

	if cfg.Redis.Address == "" {
		logger.Warn().Msg("Redis не настроен, сессии хранятся в памяти")
		return nil, service.NewStateService(fallbackRepo, stateLogger)
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if errPing := repository.Ping(ctx, redisClient); errPing != nil {
		logger.Warn().Err(errPing).Msg("Redis unavailable")
	}

	primaryRepo := repository.NewRedisStateRepository(redisClient, models.DefaultRedisTTL)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, stateLogger)
	return redisClient, service.NewStateService(stateRepo, stateLogger)
}

// initReminders выбирает хранилище напоминаний. Возвращаемая функция
// останавливает фоновые части при выходе.
func initReminders(
	ctx context.Context,
	cfg *config.Config,
	sender reminder.Sender,
	logger *zerolog.Logger,
) (reminder.Scheduler, func(), error) {
	remLogger := logging.Component(logger, "reminders")

	switch cfg.Reminders.Backend {
	case config.ReminderBackendAsynq:
		opt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		client := asynq.NewClient(opt)

		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		handler := reminder.NewReminderHandler(sender, remLogger)
		w := reminder.NewWorker(opt, cfg.Reminders.Queue, cfg.Reminders.Concurrency, handler, retryPolicy, remLogger)
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				remLogger.Error().Err(err).Msg("Воркер напоминаний не запущен")
			}
		}()

		remLogger.Info().Str("queue", cfg.Reminders.Queue).Msg("Напоминания хранятся в Redis (asynq)")
		return reminder.NewAsynqScheduler(client, cfg.Reminders.Queue, remLogger), func() {
			w.Shutdown()
			_ = client.Close()
		}, nil

	case config.ReminderBackendMemory, "":
		remLogger.Warn().Msg("Напоминания хранятся в памяти и теряются при перезапуске")
		scheduler := reminder.NewMemoryScheduler(sender, remLogger)
		return scheduler, func() {
			if dropped := scheduler.Stop(); dropped > 0 {
				remLogger.Warn().Int("dropped", dropped).Msg("Неотправленные напоминания потеряны")
			}
		}, nil
	}

	return nil, nil, fmt.Errorf("unknown reminders backend %q", cfg.Reminders.Backend)
}

// initActivity запускает журнал активности и, если задан бот мониторинга,
// зеркалирование событий и дневной отчет.
func initActivity(
	ctx context.Context,
	cfg *config.Config,
	repo domain.ActivityRepository,
	loc *time.Location,
	logger *zerolog.Logger,
) (*activity.Notifier, error) {
	actLogger := logging.Component(logger, "activity")

	// интерфейсы остаются nil, если мониторинг выключен
	var (
		mirror activity.Mirror
		sink   activity.ReportSink
	)
	if cfg.Monitoring.MirrorEnabled() {
		monitorBot, err := bot.Connect(cfg.Monitoring.BotToken, false)
		if err != nil {
			actLogger.Error().Err(err).Msg("Бот мониторинга недоступен")
			return nil, err
		}
		tm := activity.NewTelegramMirror(monitorBot, cfg.Monitoring.ChatID, loc)
		mirror, sink = tm, tm
	} else {
		actLogger.Info().Msg("Мониторинг в Telegram отключен")
	}

	notifier := activity.NewNotifier(repo, mirror, loc, models.ActivityQueueSize, actLogger)
	notifier.Start(ctx)

	if sink != nil && cfg.Monitoring.DailyReportTime != "" {
		if err := notifier.StartDailyReport(ctx, cfg.Monitoring.DailyReportTime, sink); err != nil {
			actLogger.Error().Err(err).Msg("Дневной отчет не запущен")
		}
	}

	return notifier, nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	if port == 0 {
		port = 9090
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
