package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Service provides session operations, most importantly the bulk
// revocation used by moderation actions and the compliance pipeline.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// ServiceConfig holds configuration for the session service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// NewService creates a new session service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}
}

// Open stores a new session.
func (s *Service) Open(ctx context.Context, sess *Session) error {
	if err := s.repo.Create(ctx, sess); err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// Lookup retrieves a live session by token.
func (s *Service) Lookup(ctx context.Context, token string) (*Session, error) {
	return s.repo.GetByToken(ctx, token)
}

// ListForUser returns all live sessions for a user.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Session, error) {
	return s.repo.ListByUser(ctx, userID)
}

// RevokeAll removes every session for a user and returns how many were
// removed. Revoking a user with no sessions succeeds with a zero count.
func (s *Service) RevokeAll(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoking sessions: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Int64("revoked", count).
		Msg("sessions revoked")

	return count, nil
}
