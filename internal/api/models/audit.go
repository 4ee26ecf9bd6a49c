package models

import (
	"github.com/guildboard/guildboard/internal/audit"
)

// AuditEntry represents one immutable audit record.
type AuditEntry struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   string         `json:"targetId"`
	Changes    map[string]any `json:"changes,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	CreatedAt  Timestamp      `json:"createdAt"`
}

// AuditEntryFromDomain maps a domain audit entry to its API shape.
func AuditEntryFromDomain(e *audit.Entry) AuditEntry {
	return AuditEntry{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Action:     string(e.Action),
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Changes:    e.Changes,
		Reason:     e.Reason,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		CreatedAt:  Timestamp(e.CreatedAt),
	}
}

// PagedAuditEntries represents a list of audit entries.
type PagedAuditEntries struct {
	Items []AuditEntry      `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
