package content

import "context"

// Repository defines the interface for authored-content reads and the
// single bulk removal used by hard deletion.
type Repository interface {
	// GetSummaries assembles every content summary the user owns. Any
	// internal failure aborts the whole read; a snapshot silently
	// missing a section would under-report what the platform holds.
	GetSummaries(ctx context.Context, userID string) (*Summaries, error)

	// CountAuthoredByUser returns how many posts and articles the user
	// authored. Anonymization retains them, so the count is unchanged
	// by it.
	CountAuthoredByUser(ctx context.Context, userID string) (int64, error)

	// DeleteAllForUser physically removes everything the user owns or
	// authored. Used only by hard deletion.
	DeleteAllForUser(ctx context.Context, userID string) error
}
