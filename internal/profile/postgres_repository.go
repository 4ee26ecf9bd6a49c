package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guildboard/guildboard/internal/database"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL profile repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) q(ctx context.Context) database.Querier {
	return database.QuerierFrom(ctx, r.pool)
}

// GetRecords assembles every profile record the user owns.
func (r *PostgresRepository) GetRecords(ctx context.Context, userID string) (*Records, error) {
	records := &Records{}

	var p Profile
	err := r.q(ctx).QueryRow(ctx, `
		SELECT user_id, bio, headline, location, website, created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Bio, &p.Headline, &p.Location, &p.Website, &p.CreatedAt, &p.UpdatedAt)
	switch {
	case err == nil:
		records.Profile = &p
	case errors.Is(err, pgx.ErrNoRows):
		// No profile yet; the rest may still exist.
	default:
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	if err := r.loadWork(ctx, userID, records); err != nil {
		return nil, err
	}
	if err := r.loadEducation(ctx, userID, records); err != nil {
		return nil, err
	}
	if err := r.loadPortfolio(ctx, userID, records); err != nil {
		return nil, err
	}
	if err := r.loadSkills(ctx, userID, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PostgresRepository) loadWork(ctx context.Context, userID string, records *Records) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, user_id, company, title, start_date, end_date, summary
		FROM work_entries WHERE user_id = $1 ORDER BY start_date DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("loading work history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e WorkEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Company, &e.Title, &e.StartDate, &e.EndDate, &e.Summary); err != nil {
			return err
		}
		records.Work = append(records.Work, &e)
	}
	return rows.Err()
}

func (r *PostgresRepository) loadEducation(ctx context.Context, userID string, records *Records) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, user_id, school, degree, start_year, end_year
		FROM education_entries WHERE user_id = $1 ORDER BY start_year DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("loading education: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e EducationEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.School, &e.Degree, &e.StartYear, &e.EndYear); err != nil {
			return err
		}
		records.Education = append(records.Education, &e)
	}
	return rows.Err()
}

func (r *PostgresRepository) loadPortfolio(ctx context.Context, userID string, records *Records) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, user_id, title, url, description, created_at
		FROM portfolio_items WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("loading portfolio: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item PortfolioItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.URL, &item.Description, &item.CreatedAt); err != nil {
			return err
		}
		records.Portfolio = append(records.Portfolio, &item)
	}
	return rows.Err()
}

func (r *PostgresRepository) loadSkills(ctx context.Context, userID string, records *Records) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, user_id, name, level
		FROM skills WHERE user_id = $1 ORDER BY name
	`, userID)
	if err != nil {
		return fmt.Errorf("loading skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Level); err != nil {
			return err
		}
		records.Skills = append(records.Skills, &s)
	}
	return rows.Err()
}

// UpsertProfile creates or replaces the free-text profile.
func (r *PostgresRepository) UpsertProfile(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (user_id, bio, headline, location, website, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id)
		DO UPDATE SET
			bio = EXCLUDED.bio,
			headline = EXCLUDED.headline,
			location = EXCLUDED.location,
			website = EXCLUDED.website,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.q(ctx).Exec(ctx, query,
		p.UserID, p.Bio, p.Headline, p.Location, p.Website, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// AddWorkEntry appends a work-history position.
func (r *PostgresRepository) AddWorkEntry(ctx context.Context, entry *WorkEntry) error {
	_, err := r.q(ctx).Exec(ctx, `
		INSERT INTO work_entries (id, user_id, company, title, start_date, end_date, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.UserID, entry.Company, entry.Title, entry.StartDate, entry.EndDate, entry.Summary)
	return err
}

// AddEducationEntry appends an education record.
func (r *PostgresRepository) AddEducationEntry(ctx context.Context, entry *EducationEntry) error {
	_, err := r.q(ctx).Exec(ctx, `
		INSERT INTO education_entries (id, user_id, school, degree, start_year, end_year)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.UserID, entry.School, entry.Degree, entry.StartYear, entry.EndYear)
	return err
}

// AddPortfolioItem appends a portfolio item.
func (r *PostgresRepository) AddPortfolioItem(ctx context.Context, item *PortfolioItem) error {
	_, err := r.q(ctx).Exec(ctx, `
		INSERT INTO portfolio_items (id, user_id, title, url, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, item.ID, item.UserID, item.Title, item.URL, item.Description, item.CreatedAt)
	return err
}

// AddSkill appends a skill.
func (r *PostgresRepository) AddSkill(ctx context.Context, skill *Skill) error {
	_, err := r.q(ctx).Exec(ctx, `
		INSERT INTO skills (id, user_id, name, level)
		VALUES ($1, $2, $3, $4)
	`, skill.ID, skill.UserID, skill.Name, skill.Level)
	return err
}

// DeleteAllForUser removes every profile record the user owns. The
// deletions are plain per-table statements; the caller owns the
// transaction that makes them atomic.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	for _, table := range []string{"profiles", "work_entries", "education_entries", "portfolio_items", "skills"} {
		if _, err := r.q(ctx).Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("deleting from %s: %w", table, err)
		}
	}
	return nil
}
