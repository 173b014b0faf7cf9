package service

import (
	"context"
	"time"

	"nailbot/internal/domain"
	"nailbot/internal/models"

	"github.com/rs/zerolog"
)

type StateService struct {
	stateRepo domain.StateRepository
	logger    *zerolog.Logger
}

func NewStateService(stateRepo domain.StateRepository, logger *zerolog.Logger) *StateService {
	return &StateService{
		stateRepo: stateRepo,
		logger:    logger,
	}
}

func (s *StateService) GetSession(ctx context.Context, userID int64) (*models.Session, error) {
	session, err := s.stateRepo.GetState(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get session")
		return nil, err
	}

	return session, nil
}

func (s *StateService) SaveSession(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now()
	if err := s.stateRepo.SetState(ctx, session); err != nil {
		s.logger.Error().Err(err).Int64("user_id", session.UserID).Str("step", string(session.Step)).Msg("failed to save session")
		return err
	}
	return nil
}

func (s *StateService) ClearSession(ctx context.Context, userID int64) error {
	return s.stateRepo.ClearState(ctx, userID)
}

func (s *StateService) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	return s.stateRepo.CheckRateLimit(ctx, userID, limit, window)
}
