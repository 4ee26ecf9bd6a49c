// Package compliance implements the GDPR-driven pipelines: deletion
// requests (right to be forgotten), anonymization, hard-delete purge
// and data export.
package compliance

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guildboard/guildboard/internal/account"
	"github.com/guildboard/guildboard/internal/consent"
	"github.com/guildboard/guildboard/internal/content"
	"github.com/guildboard/guildboard/internal/profile"
)

// RequestStatus is the state of a deletion request.
type RequestStatus string

// Deletion request states. Completed and cancelled are final.
const (
	StatusRequested  RequestStatus = "requested"
	StatusProcessing RequestStatus = "processing"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DeletionRequest represents a right-to-be-forgotten request. Created
// by the user; mutated only by the compliance processor.
type DeletionRequest struct {
	// ID is the unique request identifier (format: del_XXXX).
	ID string

	// UserID is the account the request concerns.
	UserID string

	// Status is the request's state.
	Status RequestStatus

	// Reason is the requester's optional explanation.
	Reason string

	// ProcessorID identifies the admin who last acted on the request.
	ProcessorID string

	// Notes are the processor's working notes.
	Notes string

	// RequestedAt is when the user filed the request.
	RequestedAt time.Time

	// ProcessedAt is when a processor first picked the request up.
	ProcessedAt *time.Time

	// CompletedAt is when the request reached completed.
	CompletedAt *time.Time

	// CancelledAt is when the request reached cancelled.
	CancelledAt *time.Time

	UpdatedAt time.Time
}

// NewDeletionRequest returns a requested-state deletion request.
func NewDeletionRequest(userID, reason string) *DeletionRequest {
	now := time.Now()
	return &DeletionRequest{
		ID:          "del_" + uuid.New().String()[:22],
		UserID:      userID,
		Status:      StatusRequested,
		Reason:      reason,
		RequestedAt: now,
		UpdatedAt:   now,
	}
}

// ExportStatus is the state of an async export job.
type ExportStatus string

// Export request states.
const (
	ExportPending ExportStatus = "pending"
	ExportReady   ExportStatus = "ready"
	ExportFailed  ExportStatus = "failed"
)

// ExportRequest represents an async data-portability job.
type ExportRequest struct {
	// ID is the unique request identifier (format: exp_XXXX).
	ID string

	// UserID is the account being exported.
	UserID string

	// Status is the job's state.
	Status ExportStatus

	// FailureReason explains a failed job.
	FailureReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewExportRequest returns a pending export request.
func NewExportRequest(userID string) *ExportRequest {
	now := time.Now()
	return &ExportRequest{
		ID:        "exp_" + uuid.New().String()[:22],
		UserID:    userID,
		Status:    ExportPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AccountData is the account view included in an export snapshot:
// identity fields without authentication material.
type AccountData struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	Username      string         `json:"username"`
	Role          account.Role   `json:"role"`
	Status        account.Status `json:"status"`
	EmailVerified bool           `json:"emailVerified"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// OAuthLinkData is the provider-link view included in a snapshot.
type OAuthLinkData struct {
	Provider  string    `json:"provider"`
	LinkedAt  time.Time `json:"linkedAt"`
}

// ConsentData is the consent view included in a snapshot.
type ConsentData struct {
	Category      consent.Category `json:"category"`
	Status        consent.Status   `json:"status"`
	PolicyVersion string           `json:"policyVersion,omitempty"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ConsentLogData is the consent-history view included in a snapshot.
type ConsentLogData struct {
	Category      consent.Category `json:"category"`
	Status        consent.Status   `json:"status"`
	PolicyVersion string           `json:"policyVersion,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Snapshot is the full data-portability snapshot assembled for one
// user. It either contains every section or the export fails; a
// snapshot silently missing a section would under-report what the
// platform holds.
type Snapshot struct {
	ExportedAt     time.Time          `json:"exportedAt"`
	Account        AccountData        `json:"account"`
	OAuthLinks     []OAuthLinkData    `json:"oauthLinks"`
	ProfileRecords *profile.Records   `json:"profileRecords"`
	Consents       []ConsentData      `json:"consents"`
	ConsentHistory []ConsentLogData   `json:"consentHistory"`
	Content        *content.Summaries `json:"content"`
}

// Synthetic identity values are pure functions of the user id, so
// anonymization stays idempotent and uniqueness constraints remain
// satisfiable.
const (
	syntheticEmailPrefix = "deleted-"
	syntheticEmailDomain = "@anonymized.invalid"
)

// SyntheticEmail returns the anonymized email for a user id.
func SyntheticEmail(userID string) string {
	return syntheticEmailPrefix + userID + syntheticEmailDomain
}

// SyntheticUsername returns the anonymized username for a user id.
func SyntheticUsername(userID string) string {
	return "deleted_" + userID
}

// IsAnonymized reports whether an email matches the synthetic pattern.
func IsAnonymized(email string) bool {
	return strings.HasPrefix(email, syntheticEmailPrefix) &&
		strings.HasSuffix(email, syntheticEmailDomain)
}
