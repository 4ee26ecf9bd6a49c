// Package consent provides the per-category consent ledger: a
// current-state row per (user, category) plus an append-only log of
// every change. The two are written together; a consent update without
// a matching log entry would break auditability.
package consent

import (
	"time"

	"github.com/google/uuid"
)

// Category identifies a data-processing purpose. Categories are a
// fixed enumeration, not user-defined.
type Category string

// Known consent categories.
const (
	CategoryDataProcessing    Category = "data_processing"
	CategoryAnalytics         Category = "analytics"
	CategoryMarketing         Category = "marketing"
	CategoryPushNotifications Category = "push_notifications"
)

// AllCategories returns the fixed category enumeration.
func AllCategories() []Category {
	return []Category{
		CategoryDataProcessing,
		CategoryAnalytics,
		CategoryMarketing,
		CategoryPushNotifications,
	}
}

// Valid reports whether c is a member of the known category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryDataProcessing, CategoryAnalytics, CategoryMarketing, CategoryPushNotifications:
		return true
	}
	return false
}

// Status is the current state of a consent.
type Status string

// Consent states. Withdrawn is representable for imported records; the
// update path itself produces granted or denied.
const (
	StatusGranted   Status = "granted"
	StatusDenied    Status = "denied"
	StatusWithdrawn Status = "withdrawn"
)

// Consent is the current state of one (user, category) pair. Repeated
// updates supersede the row; history lives in the log.
type Consent struct {
	UserID        string
	Category      Category
	Status        Status
	PolicyVersion string
	GrantedAt     *time.Time
	WithdrawnAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LogEntry is an immutable record of one consent change.
type LogEntry struct {
	ID            string
	UserID        string
	Category      Category
	Status        Status
	PolicyVersion string
	IPAddress     string
	UserAgent     string
	CreatedAt     time.Time
}

// NewLogEntry returns a log entry with a fresh ID and timestamp.
func NewLogEntry(userID string, category Category, status Status, policyVersion string) *LogEntry {
	return &LogEntry{
		ID:            "cns_" + uuid.New().String()[:22],
		UserID:        userID,
		Category:      category,
		Status:        status,
		PolicyVersion: policyVersion,
		CreatedAt:     time.Now(),
	}
}

// defaultConsent synthesizes the denied default returned for a
// category with no ledger row yet.
func defaultConsent(userID string, category Category) *Consent {
	return &Consent{
		UserID:   userID,
		Category: category,
		Status:   StatusDenied,
	}
}
