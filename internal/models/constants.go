package models

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

const (
	// DateLayout формат даты, который вводит клиент
	DateLayout = "02.01.2006"

	// ClockLayout формат времени, который вводит клиент
	ClockLayout = "15:04"

	// CommentNone ответ клиента, когда комментария нет
	CommentNone = "-"
)

const (
	// DefaultRedisTTL время жизни сессии пользователя в Redis
	DefaultRedisTTL = 24 * time.Hour

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах

	// DefaultWorkers количество воркеров, обрабатывающих апдейты
	DefaultWorkers = 8

	// WorkerQueueSize размер очереди одного воркера
	WorkerQueueSize = 100

	// ActivityQueueSize размер очереди событий активности
	ActivityQueueSize = 1000

	// DefaultExportDays глубина выгрузки заявок в днях
	DefaultExportDays = 30

	// TopActionsLimit количество действий в дневном отчете
	TopActionsLimit = 5

	// DefaultUserActionsLimit количество последних действий пользователя
	DefaultUserActionsLimit = 10
)

const (
	// ReminderDayBefore первое напоминание, за сутки
	ReminderDayBefore = 24 * time.Hour

	// ReminderSoon второе напоминание, за два часа
	ReminderSoon = 2 * time.Hour
)
