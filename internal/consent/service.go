package consent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/guildboard/guildboard/internal/database"
)

// UpdateInput carries the optional context for an consent update.
type UpdateInput struct {
	PolicyVersion string
	IPAddress     string
	UserAgent     string
}

// Service is the consent ledger. Updates write the current-state row
// and its log entry as one unit.
type Service struct {
	repo   Repository
	tx     database.TxManager
	logger zerolog.Logger
}

// ServiceConfig holds configuration for the consent service.
type ServiceConfig struct {
	Repository Repository
	TxManager  database.TxManager
	Logger     zerolog.Logger
}

// NewService creates a new consent service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		tx:     cfg.TxManager,
		logger: cfg.Logger,
	}
}

// UpdateConsent records the user's decision for one category. The
// resulting status is granted when granted is true, denied otherwise.
// Repeated calls for the same category supersede the current row and
// append one log entry each.
func (s *Service) UpdateConsent(ctx context.Context, userID string, category Category, granted bool, input UpdateInput) (*Consent, error) {
	if !category.Valid() {
		return nil, ErrUnknownCategory
	}

	status := StatusDenied
	if granted {
		status = StatusGranted
	}

	now := time.Now()
	c := &Consent{
		UserID:        userID,
		Category:      category,
		Status:        status,
		PolicyVersion: input.PolicyVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if granted {
		c.GrantedAt = &now
	} else {
		c.WithdrawnAt = &now
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upserting consent: %w", err)
		}

		entry := NewLogEntry(userID, category, status, input.PolicyVersion)
		entry.IPAddress = input.IPAddress
		entry.UserAgent = input.UserAgent
		if err := s.repo.AppendLog(ctx, entry); err != nil {
			return fmt.Errorf("appending consent log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("category", string(category)).
		Str("status", string(status)).
		Msg("consent updated")

	return c, nil
}

// GetConsents returns one row per known category, synthesizing a
// denied default for any category the user never touched.
func (s *Service) GetConsents(ctx context.Context, userID string) ([]*Consent, error) {
	stored, err := s.repo.GetAllForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading consents: %w", err)
	}

	byCategory := make(map[Category]*Consent, len(stored))
	for _, c := range stored {
		byCategory[c.Category] = c
	}

	out := make([]*Consent, 0, len(AllCategories()))
	for _, category := range AllCategories() {
		if c, ok := byCategory[category]; ok {
			out = append(out, c)
		} else {
			out = append(out, defaultConsent(userID, category))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// GetConsentHistory returns the user's consent log, newest first.
func (s *Service) GetConsentHistory(ctx context.Context, userID string) ([]*LogEntry, error) {
	return s.repo.ListLogForUser(ctx, userID)
}
