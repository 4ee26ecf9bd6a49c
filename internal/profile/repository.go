package profile

import (
	"context"
	"errors"
)

// Repository errors.
var (
	ErrProfileNotFound = errors.New("profile not found")
)

// Repository defines the interface for profile persistence.
type Repository interface {
	// GetRecords assembles every profile record the user owns. A user
	// with no profile yields empty Records, not an error.
	GetRecords(ctx context.Context, userID string) (*Records, error)

	// UpsertProfile creates or replaces the free-text profile.
	UpsertProfile(ctx context.Context, p *Profile) error

	// AddWorkEntry appends a work-history position.
	AddWorkEntry(ctx context.Context, entry *WorkEntry) error

	// AddEducationEntry appends an education record.
	AddEducationEntry(ctx context.Context, entry *EducationEntry) error

	// AddPortfolioItem appends a portfolio item.
	AddPortfolioItem(ctx context.Context, item *PortfolioItem) error

	// AddSkill appends a skill.
	AddSkill(ctx context.Context, skill *Skill) error

	// DeleteAllForUser removes every profile record the user owns.
	// Deleting for a user with no records is not an error.
	DeleteAllForUser(ctx context.Context, userID string) error
}
