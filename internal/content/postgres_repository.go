package content

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guildboard/guildboard/internal/database"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL content repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) q(ctx context.Context) database.Querier {
	return database.QuerierFrom(ctx, r.pool)
}

// GetSummaries assembles every content summary the user owns.
func (r *PostgresRepository) GetSummaries(ctx context.Context, userID string) (*Summaries, error) {
	s := &Summaries{}

	if err := r.loadPosts(ctx, userID, s); err != nil {
		return nil, err
	}
	if err := r.loadArticles(ctx, userID, s); err != nil {
		return nil, err
	}
	if err := r.loadApplications(ctx, userID, s); err != nil {
		return nil, err
	}
	if err := r.loadBookmarks(ctx, userID, s); err != nil {
		return nil, err
	}
	if err := r.loadNotifications(ctx, userID, s); err != nil {
		return nil, err
	}
	if err := r.loadMessages(ctx, userID, s); err != nil {
		return nil, err
	}
	if err := r.loadUnsubscribes(ctx, userID, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) loadPosts(ctx context.Context, userID string, s *Summaries) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, author_id, topic, LEFT(body, 200), created_at
		FROM forum_posts WHERE author_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("loading posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p PostSummary
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Topic, &p.Excerpt, &p.CreatedAt); err != nil {
			return err
		}
		s.Posts = append(s.Posts, &p)
	}
	return rows.Err()
}

func (r *PostgresRepository) loadArticles(ctx context.Context, userID string, s *Summaries) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, author_id, title, published_at
		FROM articles WHERE author_id = $1 ORDER BY published_at DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("loading articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a ArticleSummary
		if err := rows.Scan(&a.ID, &a.AuthorID, &a.Title, &a.PublishedAt); err != nil {
			return err
		}
		s.Articles = append(s.Articles, &a)
	}
	return rows.Err()
}

func (r *PostgresRepository) loadApplications(ctx context.Context, userID string, s *Summaries) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT a.id, a.user_id, j.title, a.status, a.applied_at
		FROM applications a JOIN jobs j ON j.id = a.job_id
		WHERE a.user_id = $1 ORDER BY a.applied_at DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("loading applications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a ApplicationSummary
		if err := rows.Scan(&a.ID, &a.UserID, &a.JobTitle, &a.Status, &a.AppliedAt); err != nil {
			return err
		}
		s.Applications = append(s.Applications, &a)
	}
	return rows.Err()
}

func (r *PostgresRepository) loadBookmarks(ctx context.Context, userID string, s *Summaries) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, user_id, target_id, kind, created_at
		FROM bookmarks WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("loading bookmarks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.TargetID, &b.Kind, &b.CreatedAt); err != nil {
			return err
		}
		s.Bookmarks = append(s.Bookmarks, &b)
	}
	return rows.Err()
}

func (r *PostgresRepository) loadNotifications(ctx context.Context, userID string, s *Summaries) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, user_id, kind, subject, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("loading notifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n NotificationRecord
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Subject, &n.CreatedAt); err != nil {
			return err
		}
		s.Notifications = append(s.Notifications, &n)
	}
	return rows.Err()
}

func (r *PostgresRepository) loadMessages(ctx context.Context, userID string, s *Summaries) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, sender_id, receiver_id, subject, sent_at
		FROM messages WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY sent_at DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m MessageSummary
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Subject, &m.SentAt); err != nil {
			return err
		}
		if m.SenderID == userID {
			s.SentMessages = append(s.SentMessages, &m)
		}
		if m.ReceiverID == userID {
			s.ReceivedMessages = append(s.ReceivedMessages, &m)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) loadUnsubscribes(ctx context.Context, userID string, s *Summaries) error {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, user_id, channel, created_at
		FROM unsubscribes WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("loading unsubscribes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u Unsubscribe
		if err := rows.Scan(&u.ID, &u.UserID, &u.Channel, &u.CreatedAt); err != nil {
			return err
		}
		s.Unsubscribes = append(s.Unsubscribes, &u)
	}
	return rows.Err()
}

// CountAuthoredByUser returns how many posts and articles the user
// authored.
func (r *PostgresRepository) CountAuthoredByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.q(ctx).QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM forum_posts WHERE author_id = $1)
			+ (SELECT COUNT(*) FROM articles WHERE author_id = $1)
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting authored content: %w", err)
	}
	return count, nil
}

// DeleteAllForUser physically removes everything the user owns or
// authored. Statement order follows dependency order; the caller owns
// the transaction.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	statements := []struct {
		table string
		query string
	}{
		{"forum_posts", `DELETE FROM forum_posts WHERE author_id = $1`},
		{"articles", `DELETE FROM articles WHERE author_id = $1`},
		{"applications", `DELETE FROM applications WHERE user_id = $1`},
		{"bookmarks", `DELETE FROM bookmarks WHERE user_id = $1`},
		{"notifications", `DELETE FROM notifications WHERE user_id = $1`},
		{"messages", `DELETE FROM messages WHERE sender_id = $1 OR receiver_id = $1`},
		{"unsubscribes", `DELETE FROM unsubscribes WHERE user_id = $1`},
	}
	for _, stmt := range statements {
		if _, err := r.q(ctx).Exec(ctx, stmt.query, userID); err != nil {
			return fmt.Errorf("deleting from %s: %w", stmt.table, err)
		}
	}
	return nil
}
