package service

import (
	"context"
	"errors"
	"fmt"

	"nailbot/internal/database"
	"nailbot/internal/domain"
	"nailbot/internal/events"
	"nailbot/internal/models"

	"github.com/rs/zerolog"
)

// ApprovalService отправляет заявки администратору и применяет его решения.
type ApprovalService struct {
	repo        domain.Repository
	messenger   domain.Messenger
	reminders   domain.ReminderPlanner
	eventBus    domain.EventPublisher
	adminChatID int64
	address     string
	logger      *zerolog.Logger
}

func NewApprovalService(
	repo domain.Repository,
	messenger domain.Messenger,
	reminders domain.ReminderPlanner,
	eventBus domain.EventPublisher,
	adminChatID int64,
	address string,
	logger *zerolog.Logger,
) *ApprovalService {
	return &ApprovalService{
		repo:        repo,
		messenger:   messenger,
		reminders:   reminders,
		eventBus:    eventBus,
		adminChatID: adminChatID,
		address:     address,
		logger:      logger,
	}
}

// RequestDecision отправляет карточку заявки с кнопками администратору.
func (s *ApprovalService) RequestDecision(ctx context.Context, booking *models.Booking) error {
	if s.adminChatID == 0 {
		return ErrAdminNotConfigured
	}
	if err := s.messenger.SendChoice(ctx, s.adminChatID, adminCardText(booking), decisionOptions(booking.ID)); err != nil {
		return fmt.Errorf("%w: admin card for booking %d: %v", ErrDelivery, booking.ID, err)
	}
	return nil
}

// Decide применяет решение. Решение принимается только из чата администратора
// и только по заявке в статусе pending.
func (s *ApprovalService) Decide(ctx context.Context, d models.Decision) (*models.Booking, error) {
	if s.adminChatID == 0 || d.OriginChatID != s.adminChatID {
		s.reply(ctx, d.OriginChatID, msgForbidden)
		return nil, fmt.Errorf("%w: chat %d is not admin", ErrForbidden, d.OriginChatID)
	}

	booking, err := s.repo.GetBooking(ctx, d.BookingID)
	if errors.Is(err, database.ErrBookingNotFound) {
		s.reply(ctx, d.OriginChatID, msgNotFound)
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, d.BookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if !booking.IsPending() {
		s.reply(ctx, d.OriginChatID, msgNotFound)
		return nil, fmt.Errorf("%w: booking %d is %s", ErrNotFound, d.BookingID, booking.Status)
	}

	status := models.StatusCancelled
	if d.Accept {
		status = models.StatusConfirmed
	}

	err = s.repo.UpdateBookingStatus(ctx, booking.ID, status)
	if errors.Is(err, database.ErrStatusTransition) || errors.Is(err, database.ErrBookingNotFound) {
		// кто-то успел решить раньше
		s.reply(ctx, d.OriginChatID, msgNotFound)
		return nil, fmt.Errorf("%w: booking %d: %v", ErrNotFound, d.BookingID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	booking.Status = status

	logger := s.logger.With().Int64("booking_id", booking.ID).Int64("actor_id", d.ActorID).Str("status", status).Logger()
	logger.Info().Msg("Решение по заявке принято")

	if !d.Accept {
		s.reply(ctx, booking.ChatID, msgClientRejected)
		s.reply(ctx, d.OriginChatID, adminRejectedText(booking.ID))
		s.publish(events.EventBookingCancelled, booking, d.ActorID)
		return booking, nil
	}

	s.reply(ctx, booking.ChatID, clientConfirmedText(booking, s.address))
	s.publish(events.EventBookingConfirmed, booking, d.ActorID)

	if _, err := s.reminders.Schedule(ctx, booking); err != nil {
		logger.Error().Err(err).Msg("Не удалось поставить напоминания")
		s.reply(ctx, d.OriginChatID, adminConfirmedNoRemindersText(booking.ID, err))
		return booking, fmt.Errorf("%w: %v", ErrScheduling, err)
	}

	s.reply(ctx, d.OriginChatID, adminConfirmedText(booking.ID))
	return booking, nil
}

func (s *ApprovalService) reply(ctx context.Context, chatID int64, text string) {
	if err := s.messenger.SendText(ctx, chatID, text); err != nil {
		s.logger.Warn().Err(errors.Join(ErrDelivery, err)).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (s *ApprovalService) publish(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, events.NewBookingPayload(booking, actorID)); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
