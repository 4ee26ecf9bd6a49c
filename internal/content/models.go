// Package content exposes read-only summaries of the things a member
// authored or accumulated: forum posts, articles, job applications,
// bookmarks, notifications, message summaries and unsubscribe records.
//
// The compliance exporter reads these whole; anonymization
// deliberately retains them (the author reference points at the
// neutralized account so history stays coherent). Only a hard delete
// removes them.
package content

import "time"

// PostSummary is one forum post, reduced to what export needs.
type PostSummary struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Topic     string    `json:"topic"`
	Excerpt   string    `json:"excerpt"`
	CreatedAt time.Time `json:"createdAt"`
}

// ArticleSummary is one published article.
type ArticleSummary struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ApplicationSummary is one job application.
type ApplicationSummary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	JobTitle  string    `json:"jobTitle"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"appliedAt"`
}

// Bookmark is one saved listing or post.
type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TargetID  string    `json:"targetId"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationRecord is one delivered notification.
type NotificationRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageSummary is one direct message, reduced to participants and
// subject.
type MessageSummary struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Subject    string    `json:"subject"`
	SentAt     time.Time `json:"sentAt"`
}

// Unsubscribe is one opt-out record.
type Unsubscribe struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summaries bundles everything the exporter reads for one user.
type Summaries struct {
	Posts            []*PostSummary        `json:"posts"`
	Articles         []*ArticleSummary     `json:"articles"`
	Applications     []*ApplicationSummary `json:"applications"`
	Bookmarks        []*Bookmark           `json:"bookmarks"`
	Notifications    []*NotificationRecord `json:"notifications"`
	SentMessages     []*MessageSummary     `json:"sentMessages"`
	ReceivedMessages []*MessageSummary     `json:"receivedMessages"`
	Unsubscribes     []*Unsubscribe        `json:"unsubscribes"`
}
