package compliance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/guildboard/guildboard/internal/account"
	"github.com/guildboard/guildboard/internal/audit"
	"github.com/guildboard/guildboard/internal/consent"
	"github.com/guildboard/guildboard/internal/content"
	"github.com/guildboard/guildboard/internal/database"
	"github.com/guildboard/guildboard/internal/profile"
)

// Flags exposes the kill switches the pipeline honors.
type Flags interface {
	IsDeletionProcessingDisabled(ctx context.Context) bool
}

// Notifier delivers the deletion-completed notification to interested
// downstream systems. Delivery happens after commit and is best-effort.
type Notifier interface {
	DeletionCompleted(ctx context.Context, req *DeletionRequest) error
}

// Pipeline drives the right-to-be-forgotten flow: users file deletion
// requests, processors resolve them, and completed requests anonymize
// the account. It also owns the physical purge behind hard deletes.
type Pipeline struct {
	accounts account.Repository
	sessions account.SessionRevoker
	consents consent.Repository
	profiles profile.Repository
	contents content.Repository
	repo     Repository
	auditor  audit.Recorder
	flags    Flags
	notifier Notifier
	tx       database.TxManager
	logger   zerolog.Logger
}

// PipelineConfig holds configuration for the compliance pipeline.
type PipelineConfig struct {
	Accounts  account.Repository
	Sessions  account.SessionRevoker
	Consents  consent.Repository
	Profiles  profile.Repository
	Contents  content.Repository
	Requests  Repository
	Auditor   audit.Recorder
	Flags     Flags
	Notifier  Notifier
	TxManager database.TxManager
	Logger    zerolog.Logger
}

// NewPipeline creates a new compliance pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		accounts: cfg.Accounts,
		sessions: cfg.Sessions,
		consents: cfg.Consents,
		profiles: cfg.Profiles,
		contents: cfg.Contents,
		repo:     cfg.Requests,
		auditor:  cfg.Auditor,
		flags:    cfg.Flags,
		notifier: cfg.Notifier,
		tx:       cfg.TxManager,
		logger:   cfg.Logger,
	}
}

// RequestDeletionInput carries the parameters for RequestDeletion.
type RequestDeletionInput struct {
	// ConfirmEmail must match the account's current address. Typing
	// the address out is the confirmation step.
	ConfirmEmail string
	Reason       string
	Meta         audit.Meta
}

// RequestDeletion files a right-to-be-forgotten request for the user's
// own account. At most one request per user may be in the requested
// state at a time.
func (p *Pipeline) RequestDeletion(ctx context.Context, userID string, input RequestDeletionInput) (*DeletionRequest, error) {
	var created *DeletionRequest
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		acct, err := p.accounts.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if acct.Email != input.ConfirmEmail {
			return ErrEmailMismatch
		}

		if _, err := p.repo.GetPendingForUser(ctx, userID); err == nil {
			return ErrDuplicateRequest
		} else if !errors.Is(err, ErrRequestNotFound) {
			return err
		}

		req := NewDeletionRequest(userID, input.Reason)
		if err := p.repo.CreateDeletionRequest(ctx, req); err != nil {
			return err
		}

		entry := audit.NewEntry(userID, audit.ActionDeletionRequested, audit.TargetDeletionRequest, req.ID).WithMeta(input.Meta)
		entry.Reason = input.Reason
		entry.Changes = map[string]any{
			"userId": userID,
			"status": string(StatusRequested),
		}
		if err := p.auditor.Record(ctx, entry); err != nil {
			return fmt.Errorf("recording audit entry: %w", err)
		}

		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("user_id", userID).
		Str("request_id", created.ID).
		Msg("deletion requested")

	return created, nil
}

// GetDeletionRequest retrieves a request by ID.
func (p *Pipeline) GetDeletionRequest(ctx context.Context, id string) (*DeletionRequest, error) {
	return p.repo.GetDeletionRequest(ctx, id)
}

// ListDeletionRequests returns a user's requests, newest first.
func (p *Pipeline) ListDeletionRequests(ctx context.Context, userID string) ([]*DeletionRequest, error) {
	return p.repo.ListDeletionRequests(ctx, userID)
}

// ProcessInput carries the parameters for Process.
type ProcessInput struct {
	// Status is the state the processor moves the request to:
	// processing, completed or cancelled.
	Status RequestStatus
	Notes  string
	Meta   audit.Meta
}

// Process moves a deletion request through its lifecycle. Moving to
// completed anonymizes the account in the same transaction; the request
// never reads completed while the account still holds personal data.
// Requests already in a final state are rejected.
func (p *Pipeline) Process(ctx context.Context, requestID, processorID string, input ProcessInput) (*DeletionRequest, error) {
	if processorID == "" {
		return nil, ErrMissingProcessor
	}
	if p.flags != nil && p.flags.IsDeletionProcessingDisabled(ctx) {
		return nil, ErrProcessingDisabled
	}

	var updated *DeletionRequest
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := p.repo.GetDeletionRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status.Terminal() {
			return ErrRequestClosed
		}

		oldStatus := req.Status
		now := time.Now()

		req.Status = input.Status
		req.ProcessorID = processorID
		if input.Notes != "" {
			req.Notes = input.Notes
		}
		req.UpdatedAt = now

		switch input.Status {
		case StatusProcessing:
			req.ProcessedAt = &now
		case StatusCompleted:
			if req.ProcessedAt == nil {
				req.ProcessedAt = &now
			}
			req.CompletedAt = &now
			if err := p.anonymize(ctx, req.UserID); err != nil {
				return fmt.Errorf("anonymizing account: %w", err)
			}
		case StatusCancelled:
			req.CancelledAt = &now
		default:
			return fmt.Errorf("unknown target status %q", input.Status)
		}

		if err := p.repo.UpdateDeletionRequest(ctx, req); err != nil {
			return err
		}

		entry := audit.NewEntry(processorID, audit.ActionDeletionProcessed, audit.TargetDeletionRequest, req.ID).WithMeta(input.Meta)
		entry.Reason = input.Notes
		entry.Changes = map[string]any{
			"before": map[string]any{"status": string(oldStatus)},
			"after":  map[string]any{"status": string(input.Status)},
			"userId": req.UserID,
		}
		if err := p.auditor.Record(ctx, entry); err != nil {
			return fmt.Errorf("recording audit entry: %w", err)
		}

		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("request_id", requestID).
		Str("processor_id", processorID).
		Str("status", string(updated.Status)).
		Msg("deletion request processed")

	if updated.Status == StatusCompleted && p.notifier != nil {
		if err := p.notifier.DeletionCompleted(ctx, updated); err != nil {
			p.logger.Warn().
				Err(err).
				Str("request_id", updated.ID).
				Msg("deletion-completed notification failed")
		}
	}

	return updated, nil
}

// anonymize strips personal data while keeping the account row for
// referential integrity. Idempotent: an already-anonymized account is
// left untouched. The consent log and audit entries are retained as
// legal evidence; authored content stays under the synthetic identity.
func (p *Pipeline) anonymize(ctx context.Context, userID string) error {
	acct, err := p.accounts.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if IsAnonymized(acct.Email) {
		return nil
	}

	acct.Email = SyntheticEmail(userID)
	acct.Username = SyntheticUsername(userID)
	acct.PasswordHash = ""
	acct.TwoFactorSecret = ""
	acct.Status = account.StatusDeleted
	acct.EmailVerified = false
	acct.UpdatedAt = time.Now()
	if err := p.accounts.Update(ctx, acct); err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	if err := p.profiles.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting profile records: %w", err)
	}
	if err := p.accounts.DeleteOAuthLinks(ctx, userID); err != nil {
		return fmt.Errorf("deleting oauth links: %w", err)
	}
	if err := p.consents.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting consent rows: %w", err)
	}
	if _, err := p.sessions.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("revoking sessions: %w", err)
	}

	return nil
}

// Purge physically removes everything tied to the user: sessions,
// identity links, consents (log included), profile records, authored
// and owned content, deletion requests, and finally the account row.
// It runs inside the caller's transaction; the account lifecycle's hard
// delete is the only caller.
func (p *Pipeline) Purge(ctx context.Context, userID string) error {
	if _, err := p.sessions.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("revoking sessions: %w", err)
	}
	if err := p.accounts.DeleteOAuthLinks(ctx, userID); err != nil {
		return fmt.Errorf("deleting oauth links: %w", err)
	}
	if err := p.consents.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting consent rows: %w", err)
	}
	if err := p.consents.PurgeLogForUser(ctx, userID); err != nil {
		return fmt.Errorf("purging consent log: %w", err)
	}
	if err := p.profiles.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting profile records: %w", err)
	}
	if err := p.contents.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting content: %w", err)
	}
	if err := p.repo.DeleteRequestsForUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting deletion requests: %w", err)
	}
	if err := p.accounts.Delete(ctx, userID); err != nil {
		return fmt.Errorf("deleting account row: %w", err)
	}
	return nil
}
