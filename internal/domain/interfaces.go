package domain

import (
	"context"
	"time"

	"nailbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Repository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	ListBookings(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	CountBookingsByStatus(ctx context.Context) (map[string]int, error)
}

type ActivityRepository interface {
	InsertActivity(ctx context.Context, ev *models.ActivityEvent) error
	GetDailyStats(ctx context.Context, day string, topLimit int) (*models.DailyStats, error)
	GetUserActions(ctx context.Context, userID int64, limit int) ([]*models.ActivityEvent, error)
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.Session, error)
	SetState(ctx context.Context, session *models.Session) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetSession(ctx context.Context, userID int64) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// Messenger исходящие сообщения без привязки к Telegram.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendChoice(ctx context.Context, chatID int64, text string, rows [][]models.Option) error
}

type TelegramService interface {
	Messenger
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendHTML(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendDocument(chatID int64, path, caption string) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type ApprovalGate interface {
	RequestDecision(ctx context.Context, booking *models.Booking) error
}

type ReminderPlanner interface {
	Schedule(ctx context.Context, booking *models.Booking) ([]models.Reminder, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, ev models.ActivityEvent)
}

type ActivityReporter interface {
	DailyReport(ctx context.Context, day time.Time) (*models.DailyStats, error)
	UserActions(ctx context.Context, userID int64, limit int) ([]*models.ActivityEvent, error)
}

type ConversationService interface {
	StartBooking(ctx context.Context, r models.Requester) error
	SelectService(ctx context.Context, r models.Requester, index int) error
	TextInput(ctx context.Context, r models.Requester, text string) error
	ShareContact(ctx context.Context, r models.Requester, phone string) error
	ConfirmDecision(ctx context.Context, r models.Requester, send bool) (*models.Booking, error)
	Cancel(ctx context.Context, r models.Requester) error
	StartQuestion(ctx context.Context, r models.Requester) error
	HasSession(ctx context.Context, userID int64) (bool, error)
}

type ApprovalService interface {
	ApprovalGate
	Decide(ctx context.Context, d models.Decision) (*models.Booking, error)
}
