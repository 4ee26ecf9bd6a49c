package models

import (
	"github.com/guildboard/guildboard/internal/consent"
)

// Consent represents the current state of one consent category.
type Consent struct {
	Category      string     `json:"category"`
	Status        string     `json:"status"`
	PolicyVersion string     `json:"policyVersion,omitempty"`
	GrantedAt     *Timestamp `json:"grantedAt,omitempty"`
	WithdrawnAt   *Timestamp `json:"withdrawnAt,omitempty"`
	UpdatedAt     Timestamp  `json:"updatedAt"`
}

// ConsentFromDomain maps a domain consent to its API shape.
func ConsentFromDomain(c *consent.Consent) Consent {
	out := Consent{
		Category:      string(c.Category),
		Status:        string(c.Status),
		PolicyVersion: c.PolicyVersion,
		UpdatedAt:     Timestamp(c.UpdatedAt),
	}
	if c.GrantedAt != nil {
		t := Timestamp(*c.GrantedAt)
		out.GrantedAt = &t
	}
	if c.WithdrawnAt != nil {
		t := Timestamp(*c.WithdrawnAt)
		out.WithdrawnAt = &t
	}
	return out
}

// ConsentUpdate is one entry in a consent update request.
type ConsentUpdate struct {
	Category      string `json:"category"`
	Granted       bool   `json:"granted"`
	PolicyVersion string `json:"policyVersion,omitempty"`
}

// ConsentsInput is the request body for updating consents.
type ConsentsInput struct {
	Consents []ConsentUpdate `json:"consents"`
}

// ConsentLogEntry is one immutable consent-history record.
type ConsentLogEntry struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	Status        string    `json:"status"`
	PolicyVersion string    `json:"policyVersion,omitempty"`
	CreatedAt     Timestamp `json:"createdAt"`
}

// ConsentLogFromDomain maps a domain log entry to its API shape.
func ConsentLogFromDomain(e *consent.LogEntry) ConsentLogEntry {
	return ConsentLogEntry{
		ID:            e.ID,
		Category:      string(e.Category),
		Status:        string(e.Status),
		PolicyVersion: e.PolicyVersion,
		CreatedAt:     Timestamp(e.CreatedAt),
	}
}
