package models

import (
	"github.com/guildboard/guildboard/internal/compliance"
)

// DeletionRequestCreate is the request body for filing a deletion
// request. The caller confirms by typing their current email address.
type DeletionRequestCreate struct {
	ConfirmEmail string `json:"confirmEmail"`
	Reason       string `json:"reason,omitempty"`
}

// DeletionRequest represents a right-to-be-forgotten request.
type DeletionRequest struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	RequestedAt Timestamp  `json:"requestedAt"`
	ProcessedAt *Timestamp `json:"processedAt,omitempty"`
	CompletedAt *Timestamp `json:"completedAt,omitempty"`
	CancelledAt *Timestamp `json:"cancelledAt,omitempty"`
	UpdatedAt   Timestamp  `json:"updatedAt"`
}

// DeletionRequestFromDomain maps a domain request to its API shape.
func DeletionRequestFromDomain(r *compliance.DeletionRequest) DeletionRequest {
	out := DeletionRequest{
		ID:          r.ID,
		UserID:      r.UserID,
		Status:      string(r.Status),
		Reason:      r.Reason,
		Notes:       r.Notes,
		RequestedAt: Timestamp(r.RequestedAt),
		UpdatedAt:   Timestamp(r.UpdatedAt),
	}
	if r.ProcessedAt != nil {
		t := Timestamp(*r.ProcessedAt)
		out.ProcessedAt = &t
	}
	if r.CompletedAt != nil {
		t := Timestamp(*r.CompletedAt)
		out.CompletedAt = &t
	}
	if r.CancelledAt != nil {
		t := Timestamp(*r.CancelledAt)
		out.CancelledAt = &t
	}
	return out
}

// PagedDeletionRequests represents a list of deletion requests.
type PagedDeletionRequests struct {
	Items []DeletionRequest `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// DeletionRequestProcess is the request body for processing a deletion
// request.
type DeletionRequestProcess struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// ExportRequest represents an async data-export job.
type ExportRequest struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failureReason,omitempty"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// PagedExportRequests represents a list of export requests.
type PagedExportRequests struct {
	Items []ExportRequest   `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// ExportRequestFromDomain maps a domain export job to its API shape.
func ExportRequestFromDomain(r *compliance.ExportRequest) ExportRequest {
	return ExportRequest{
		ID:            r.ID,
		UserID:        r.UserID,
		Status:        string(r.Status),
		FailureReason: r.FailureReason,
		CreatedAt:     Timestamp(r.CreatedAt),
		UpdatedAt:     Timestamp(r.UpdatedAt),
	}
}
