package content

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository,
// used in tests. Seed it with the Add* methods.
type InMemoryRepository struct {
	mu            sync.RWMutex
	posts         []*PostSummary
	articles      []*ArticleSummary
	applications  []*ApplicationSummary
	bookmarks     []*Bookmark
	notifications []*NotificationRecord
	messages      []*MessageSummary
	unsubscribes  []*Unsubscribe
}

// NewInMemoryRepository creates a new in-memory content repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// AddPost seeds a forum post.
func (r *InMemoryRepository) AddPost(p *PostSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, p)
}

// AddArticle seeds an article.
func (r *InMemoryRepository) AddArticle(a *ArticleSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles = append(r.articles, a)
}

// AddApplication seeds a job application.
func (r *InMemoryRepository) AddApplication(a *ApplicationSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applications = append(r.applications, a)
}

// AddBookmark seeds a bookmark.
func (r *InMemoryRepository) AddBookmark(b *Bookmark) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookmarks = append(r.bookmarks, b)
}

// AddNotification seeds a notification record.
func (r *InMemoryRepository) AddNotification(n *NotificationRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

// AddMessage seeds a message summary.
func (r *InMemoryRepository) AddMessage(m *MessageSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

// AddUnsubscribe seeds an opt-out record.
func (r *InMemoryRepository) AddUnsubscribe(u *Unsubscribe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unsubscribes = append(r.unsubscribes, u)
}

// GetSummaries assembles every content summary the user owns.
func (r *InMemoryRepository) GetSummaries(_ context.Context, userID string) (*Summaries, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := &Summaries{}
	for _, p := range r.posts {
		if p.AuthorID == userID {
			s.Posts = append(s.Posts, p)
		}
	}
	for _, a := range r.articles {
		if a.AuthorID == userID {
			s.Articles = append(s.Articles, a)
		}
	}
	for _, a := range r.applications {
		if a.UserID == userID {
			s.Applications = append(s.Applications, a)
		}
	}
	for _, b := range r.bookmarks {
		if b.UserID == userID {
			s.Bookmarks = append(s.Bookmarks, b)
		}
	}
	for _, n := range r.notifications {
		if n.UserID == userID {
			s.Notifications = append(s.Notifications, n)
		}
	}
	for _, m := range r.messages {
		if m.SenderID == userID {
			s.SentMessages = append(s.SentMessages, m)
		}
		if m.ReceiverID == userID {
			s.ReceivedMessages = append(s.ReceivedMessages, m)
		}
	}
	for _, u := range r.unsubscribes {
		if u.UserID == userID {
			s.Unsubscribes = append(s.Unsubscribes, u)
		}
	}
	return s, nil
}

// CountAuthoredByUser returns how many posts and articles the user
// authored.
func (r *InMemoryRepository) CountAuthoredByUser(_ context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, p := range r.posts {
		if p.AuthorID == userID {
			count++
		}
	}
	for _, a := range r.articles {
		if a.AuthorID == userID {
			count++
		}
	}
	return count, nil
}

// DeleteAllForUser physically removes everything the user owns or
// authored.
func (r *InMemoryRepository) DeleteAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts = filterOut(r.posts, func(p *PostSummary) bool { return p.AuthorID == userID })
	r.articles = filterOut(r.articles, func(a *ArticleSummary) bool { return a.AuthorID == userID })
	r.applications = filterOut(r.applications, func(a *ApplicationSummary) bool { return a.UserID == userID })
	r.bookmarks = filterOut(r.bookmarks, func(b *Bookmark) bool { return b.UserID == userID })
	r.notifications = filterOut(r.notifications, func(n *NotificationRecord) bool { return n.UserID == userID })
	r.messages = filterOut(r.messages, func(m *MessageSummary) bool { return m.SenderID == userID || m.ReceiverID == userID })
	r.unsubscribes = filterOut(r.unsubscribes, func(u *Unsubscribe) bool { return u.UserID == userID })
	return nil
}

func filterOut[T any](in []*T, match func(*T) bool) []*T {
	out := in[:0]
	for _, item := range in {
		if !match(item) {
			out = append(out, item)
		}
	}
	return out
}
