package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nailbot/internal/domain"
	"nailbot/internal/events"
	"nailbot/internal/models"

	"github.com/rs/zerolog"
)

// ConversationService ведет клиента по шагам записи:
// услуга, дата, время, телефон, имя, комментарий, подтверждение.
// Все события одного пользователя обрабатываются под его мьютексом,
// шаг перечитывается под блокировкой.
type ConversationService struct {
	state       domain.StateManager
	repo        domain.Repository
	messenger   domain.Messenger
	approval    domain.ApprovalGate
	eventBus    domain.EventPublisher
	catalog     []models.Service
	adminChatID int64
	locks       *userLocks
	logger      *zerolog.Logger
}

func NewConversationService(
	state domain.StateManager,
	repo domain.Repository,
	messenger domain.Messenger,
	approval domain.ApprovalGate,
	eventBus domain.EventPublisher,
	catalog []models.Service,
	adminChatID int64,
	logger *zerolog.Logger,
) *ConversationService {
	return &ConversationService{
		state:       state,
		repo:        repo,
		messenger:   messenger,
		approval:    approval,
		eventBus:    eventBus,
		catalog:     catalog,
		adminChatID: adminChatID,
		locks:       newUserLocks(),
		logger:      logger,
	}
}

func (s *ConversationService) Catalog() []models.Service {
	return s.catalog
}

// StartBooking начинает запись заново, прежний черновик теряется.
func (s *ConversationService) StartBooking(ctx context.Context, r models.Requester) error {
	unlock := s.locks.Lock(r.UserID)
	defer unlock()

	if err := s.state.SaveSession(ctx, models.NewSession(r.UserID, models.StepSelectService)); err != nil {
		return fmt.Errorf("start booking: %w", err)
	}
	s.send(ctx, r.ChatID, msgChooseService, serviceOptions(s.catalog))
	return nil
}

func (s *ConversationService) SelectService(ctx context.Context, r models.Requester, index int) error {
	unlock := s.locks.Lock(r.UserID)
	defer unlock()

	session, err := s.loadStep(ctx, r.UserID, models.StepSelectService)
	if err != nil {
		return err
	}

	if index < 0 || index >= len(s.catalog) {
		s.send(ctx, r.ChatID, msgUnknownService, serviceOptions(s.catalog))
		return fmt.Errorf("%w: service index %d", ErrValidation, index)
	}

	svc := s.catalog[index]
	session.Draft = models.Draft{
		ServiceIndex: index,
		Service:      svc.Name,
		Price:        svc.Price.String(),
		DurationMin:  svc.DurationMin,
	}
	session.Advance(models.StepEnterDate)
	if err := s.state.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("select service: %w", err)
	}

	s.send(ctx, r.ChatID, serviceSelectedText(svc), nil)
	return nil
}

// TextInput обрабатывает текст на текущем шаге.
func (s *ConversationService) TextInput(ctx context.Context, r models.Requester, text string) error {
	unlock := s.locks.Lock(r.UserID)
	defer unlock()

	session, err := s.loadStep(ctx, r.UserID)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)

	switch session.Step {
	case models.StepEnterDate:
		if _, err := models.ParseDate(text); err != nil {
			s.send(ctx, r.ChatID, msgBadDate, nil)
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		session.Draft.DateText = text
		return s.advance(ctx, r, session, models.StepEnterTime, msgEnterTime, nil)

	case models.StepEnterTime:
		if _, err := models.ParseClock(text); err != nil {
			s.send(ctx, r.ChatID, msgBadTime, nil)
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		session.Draft.TimeText = text
		return s.advance(ctx, r, session, models.StepEnterPhone, msgShareContact, contactOptions())

	case models.StepEnterPhone:
		s.send(ctx, r.ChatID, msgUseContactBtn, contactOptions())
		return fmt.Errorf("%w: phone must be shared as contact", ErrValidation)

	case models.StepEnterName:
		if text == "" {
			s.send(ctx, r.ChatID, msgEnterName, nil)
			return fmt.Errorf("%w: empty name", ErrValidation)
		}
		session.Draft.Name = text
		return s.advance(ctx, r, session, models.StepEnterComment, msgEnterComment, nil)

	case models.StepEnterComment:
		if text == "" {
			text = models.CommentNone
		}
		session.Draft.Comment = text
		return s.advance(ctx, r, session, models.StepConfirm, summaryText(session.Draft), confirmOptions())

	case models.StepAskQuestion:
		return s.forwardQuestion(ctx, r, text)
	}

	return fmt.Errorf("%w: text on step %s", ErrUnexpectedInput, session.Step)
}

func (s *ConversationService) ShareContact(ctx context.Context, r models.Requester, phone string) error {
	unlock := s.locks.Lock(r.UserID)
	defer unlock()

	session, err := s.loadStep(ctx, r.UserID, models.StepEnterPhone)
	if err != nil {
		return err
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		s.send(ctx, r.ChatID, msgUseContactBtn, contactOptions())
		return fmt.Errorf("%w: empty phone", ErrValidation)
	}

	session.Draft.Phone = phone
	return s.advance(ctx, r, session, models.StepEnterName, msgEnterName, nil)
}

// ConfirmDecision завершает диалог. send=false отбрасывает черновик,
// send=true сохраняет заявку и передает ее администратору.
func (s *ConversationService) ConfirmDecision(ctx context.Context, r models.Requester, send bool) (*models.Booking, error) {
	unlock := s.locks.Lock(r.UserID)
	defer unlock()

	session, err := s.loadStep(ctx, r.UserID, models.StepConfirm)
	if err != nil {
		return nil, err
	}

	if !send {
		s.finish(ctx, r.UserID)
		s.send(ctx, r.ChatID, msgDiscarded, MainMenu())
		return nil, nil
	}

	if s.adminChatID == 0 {
		s.finish(ctx, r.UserID)
		s.send(ctx, r.ChatID, msgAdminMissing, MainMenu())
		return nil, ErrAdminNotConfigured
	}

	booking := models.NewBooking(r, session.Draft)
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		// сессия остается на подтверждении, клиент может нажать еще раз
		s.send(ctx, r.ChatID, msgSaveFailed, nil)
		return nil, fmt.Errorf("save booking: %w", err)
	}

	s.finish(ctx, r.UserID)

	if err := s.approval.RequestDecision(ctx, booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("Не удалось отправить заявку администратору")
	}

	s.publish(events.EventBookingCreated, booking, r.UserID)
	s.send(ctx, r.ChatID, msgSubmitted, MainMenu())
	return booking, nil
}

// Cancel прерывает любой шаг и возвращает главное меню.
func (s *ConversationService) Cancel(ctx context.Context, r models.Requester) error {
	unlock := s.locks.Lock(r.UserID)
	defer unlock()

	s.finish(ctx, r.UserID)
	s.send(ctx, r.ChatID, msgCancelled, MainMenu())
	return nil
}

// StartQuestion ждет следующий текст клиента и пересылает его администратору.
func (s *ConversationService) StartQuestion(ctx context.Context, r models.Requester) error {
	unlock := s.locks.Lock(r.UserID)
	defer unlock()

	if s.adminChatID == 0 {
		s.send(ctx, r.ChatID, msgAdminMissing, MainMenu())
		return ErrAdminNotConfigured
	}

	if err := s.state.SaveSession(ctx, models.NewSession(r.UserID, models.StepAskQuestion)); err != nil {
		return fmt.Errorf("start question: %w", err)
	}
	s.send(ctx, r.ChatID, msgAskQuestion, models.Column(models.Option{Label: btnCancel}))
	return nil
}

func (s *ConversationService) HasSession(ctx context.Context, userID int64) (bool, error) {
	session, err := s.state.GetSession(ctx, userID)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

func (s *ConversationService) forwardQuestion(ctx context.Context, r models.Requester, text string) error {
	if text == "" {
		s.send(ctx, r.ChatID, msgQuestionEmpty, nil)
		return fmt.Errorf("%w: empty question", ErrValidation)
	}

	if err := s.messenger.SendText(ctx, s.adminChatID, questionText(r, text)); err != nil {
		s.send(ctx, r.ChatID, msgQuestionFailed, nil)
		return fmt.Errorf("%w: question to admin: %v", ErrDelivery, err)
	}

	s.finish(ctx, r.UserID)
	s.send(ctx, r.ChatID, msgQuestionSent, MainMenu())
	return nil
}

func (s *ConversationService) loadStep(ctx context.Context, userID int64, want ...models.Step) (*models.Session, error) {
	session, err := s.state.GetSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: no active session", ErrUnexpectedInput)
	}
	if len(want) == 0 {
		return session, nil
	}
	for _, step := range want {
		if session.Step == step {
			return session, nil
		}
	}
	return nil, fmt.Errorf("%w: session is on step %s", ErrUnexpectedInput, session.Step)
}

func (s *ConversationService) advance(
	ctx context.Context,
	r models.Requester,
	session *models.Session,
	next models.Step,
	prompt string,
	rows [][]models.Option,
) error {
	session.Advance(next)
	if err := s.state.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.send(ctx, r.ChatID, prompt, rows)
	return nil
}

func (s *ConversationService) finish(ctx context.Context, userID int64) {
	if err := s.state.ClearSession(ctx, userID); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to clear session")
	}
}

func (s *ConversationService) send(ctx context.Context, chatID int64, text string, rows [][]models.Option) {
	var err error
	if rows == nil {
		err = s.messenger.SendText(ctx, chatID, text)
	} else {
		err = s.messenger.SendChoice(ctx, chatID, text, rows)
	}
	if err != nil {
		s.logger.Warn().Err(errors.Join(ErrDelivery, err)).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (s *ConversationService) publish(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, events.NewBookingPayload(booking, actorID)); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
