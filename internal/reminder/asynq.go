package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"nailbot/internal/models"
	"nailbot/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	TypeReminderSend = "reminder:send"
	defaultQueue     = "default"
)

// NewReminderTask одноразовая задача на момент FireAt без повторов.
// TaskID строится из заявки и вида напоминания, повторная постановка отклоняется asynq.
func NewReminderTask(r models.Reminder, queue string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, nil, err
	}
	if queue == "" {
		queue = defaultQueue
	}

	task := asynq.NewTask(TypeReminderSend, b)
	opts := []asynq.Option{
		asynq.ProcessAt(r.FireAt),
		asynq.MaxRetry(0),
		asynq.Queue(queue),
		asynq.TaskID(fmt.Sprintf("reminder:%d:%s", r.BookingID, r.Kind)),
	}
	return task, opts, nil
}

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqScheduler ставит напоминания в отложенную очередь Redis.
type AsynqScheduler struct {
	client Enqueuer
	queue  string
	logger *zerolog.Logger
}

func NewAsynqScheduler(client Enqueuer, queue string, logger *zerolog.Logger) *AsynqScheduler {
	return &AsynqScheduler{client: client, queue: queue, logger: logger}
}

func (s *AsynqScheduler) ScheduleOnce(ctx context.Context, r models.Reminder) error {
	if err := validate(r); err != nil {
		return err
	}

	task, opts, err := NewReminderTask(r, s.queue)
	if err != nil {
		return fmt.Errorf("build reminder task: %w", err)
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		s.logger.Debug().Int64("booking_id", r.BookingID).Str("kind", r.Kind).Msg("reminder already queued")
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}

	s.logger.Debug().Str("task_id", info.ID).Str("queue", info.Queue).Msg("reminder enqueued")
	return nil
}

// ReminderHandler обрабатывает reminder:send на стороне воркера.
type ReminderHandler struct {
	sender Sender
	logger *zerolog.Logger
}

func NewReminderHandler(sender Sender, logger *zerolog.Logger) *ReminderHandler {
	return &ReminderHandler{sender: sender, logger: logger}
}

func (h *ReminderHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var r models.Reminder
	if err := json.Unmarshal(t.Payload(), &r); err != nil {
		h.logger.Error().Err(err).Msg("invalid reminder payload")
		return fmt.Errorf("decode reminder: %v: %w", err, asynq.SkipRetry)
	}

	if err := deliver(ctx, h.sender, r, h.logger); err != nil {
		return fmt.Errorf("deliver reminder: %v: %w", err, asynq.SkipRetry)
	}
	return nil
}

// Worker asynq-сервер, обслуживающий очередь напоминаний.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	retry  worker.RetryPolicy
	logger *zerolog.Logger
}

func NewWorker(opt asynq.RedisConnOpt, queue string, concurrency int, handler *ReminderHandler, retry worker.RetryPolicy, logger *zerolog.Logger) *Worker {
	if queue == "" {
		queue = defaultQueue
	}
	if concurrency < 1 {
		concurrency = 1
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      NewAsynqLogger(logger),
		LogLevel:    asynq.WarnLevel,
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeReminderSend, handler)

	return &Worker{srv: srv, mux: mux, retry: retry, logger: logger}
}

// Start запускает сервер, повторяя попытки по RetryPolicy, пока Redis недоступен.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().Msg("Запуск воркера напоминаний")
	err := w.retry.Do(ctx, func(context.Context) error {
		return w.srv.Ping()
	}, func(attempt int, err error) {
		w.logger.Warn().Err(err).Int("attempt", attempt).Msg("Redis недоступен для воркера напоминаний, повтор")
	})
	if err != nil {
		return fmt.Errorf("reminder worker: %w", err)
	}
	return w.srv.Start(w.mux)
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}

// asynqLogger пробрасывает логи asynq в zerolog.
type asynqLogger struct {
	l *zerolog.Logger
}

func NewAsynqLogger(l *zerolog.Logger) asynq.Logger {
	child := l.With().Str("component", "asynq").Logger()
	return asynqLogger{l: &child}
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
