package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/guildboard/guildboard/internal/audit"
	"github.com/guildboard/guildboard/internal/database"
)

// Lifecycle guard errors. All guards are checked against freshly-read
// state before any mutation; a failed guard leaves no side effects.
var (
	// ErrMissingActor is returned when an operation is invoked without
	// an authenticated actor id.
	ErrMissingActor = errors.New("actor id is required")

	// ErrSelfAction is returned when an actor targets their own
	// account with an operation that forbids it.
	ErrSelfAction = errors.New("action may not target the acting account")

	// ErrProtectedTarget is returned when a moderation action targets
	// an admin account. Admin accounts may only be hard-deleted.
	ErrProtectedTarget = errors.New("action may not target an admin account")

	// ErrAlreadyInState is returned when the account already satisfies
	// the requested state.
	ErrAlreadyInState = errors.New("account already in the requested state")

	// ErrInvalidRole is returned for a role outside the known set.
	ErrInvalidRole = errors.New("unknown role")
)

// SessionRevoker invalidates all live sessions for a user.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID string) (int64, error)
}

// Purger executes the ordered physical-removal steps of a hard delete.
// Implemented by the compliance pipeline so the exact scope of what is
// removed lives in one place.
type Purger interface {
	Purge(ctx context.Context, userID string) error
}

// Lifecycle is the guarded state machine over account status and role.
// Every mutating operation re-reads the target, validates its guards,
// applies the transition, triggers mandated side effects and appends
// one audit entry, all inside a single transaction.
type Lifecycle struct {
	repo     Repository
	sessions SessionRevoker
	auditor  audit.Recorder
	purger   Purger
	tx       database.TxManager
	logger   zerolog.Logger
}

// LifecycleConfig holds configuration for the lifecycle service.
type LifecycleConfig struct {
	Repository Repository
	Sessions   SessionRevoker
	Auditor    audit.Recorder
	Purger     Purger
	TxManager  database.TxManager
	Logger     zerolog.Logger
}

// NewLifecycle creates a new account lifecycle service.
func NewLifecycle(cfg LifecycleConfig) *Lifecycle {
	return &Lifecycle{
		repo:     cfg.Repository,
		sessions: cfg.Sessions,
		auditor:  cfg.Auditor,
		purger:   cfg.Purger,
		tx:       cfg.TxManager,
		logger:   cfg.Logger,
	}
}

// VerifyEmailInput carries the optional context for VerifyEmail.
type VerifyEmailInput struct {
	Reason string
	Meta   audit.Meta
}

// ChangeRoleInput carries the parameters for ChangeRole.
type ChangeRoleInput struct {
	NewRole Role
	Reason  string
	Meta    audit.Meta
}

// SuspendInput carries the parameters for Suspend. DurationDays is
// advisory metadata recorded in the audit entry; nothing re-activates
// the account when it elapses.
type SuspendInput struct {
	Reason       string
	DurationDays *int
	Permanent    bool
	Meta         audit.Meta
}

// BanInput carries the parameters for Ban.
type BanInput struct {
	Reason    string
	Permanent bool
	Meta      audit.Meta
}

// DeleteInput carries the parameters for Delete.
type DeleteInput struct {
	Reason     string
	HardDelete bool
	Meta       audit.Meta
}

// GetUserByID retrieves an account. The read path has no guards beyond
// existence; mutating operations use it internally so transitions are
// always validated against stored state, never a caller-supplied copy.
func (l *Lifecycle) GetUserByID(ctx context.Context, id string) (*Account, error) {
	return l.repo.GetByID(ctx, id)
}

// VerifyEmail marks the target's email address as confirmed. Fails
// with ErrAlreadyInState when the address is already verified; no
// audit entry is written in that case.
func (l *Lifecycle) VerifyEmail(ctx context.Context, targetID, actorID string, input VerifyEmailInput) (*Account, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}

	var updated *Account
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		acct, err := l.repo.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if acct.EmailVerified {
			return ErrAlreadyInState
		}

		acct.EmailVerified = true
		touch(acct)
		if err := l.repo.Update(ctx, acct); err != nil {
			return fmt.Errorf("updating account: %w", err)
		}

		entry := audit.NewEntry(actorID, audit.ActionEmailVerified, audit.TargetUser, acct.ID).WithMeta(input.Meta)
		entry.Reason = input.Reason
		entry.Changes = map[string]any{
			"before": map[string]any{"emailVerified": false},
			"after":  map[string]any{"emailVerified": true},
		}
		if err := l.auditor.Record(ctx, entry); err != nil {
			return fmt.Errorf("recording audit entry: %w", err)
		}

		updated = acct
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("actor_id", actorID).
		Str("target_id", targetID).
		Msg("email verified")

	return updated, nil
}

// ChangeRole sets the target's role. Actors may not change their own
// role.
func (l *Lifecycle) ChangeRole(ctx context.Context, targetID, actorID string, input ChangeRoleInput) (*Account, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}
	if targetID == actorID {
		return nil, ErrSelfAction
	}
	if !input.NewRole.Valid() {
		return nil, ErrInvalidRole
	}

	var updated *Account
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		acct, err := l.repo.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		oldRole := acct.Role
		acct.Role = input.NewRole
		touch(acct)
		if err := l.repo.Update(ctx, acct); err != nil {
			return fmt.Errorf("updating account: %w", err)
		}

		entry := audit.NewEntry(actorID, audit.ActionRoleChanged, audit.TargetUser, acct.ID).WithMeta(input.Meta)
		entry.Reason = input.Reason
		entry.Changes = map[string]any{
			"before": map[string]any{"role": string(oldRole)},
			"after":  map[string]any{"role": string(input.NewRole)},
		}
		if err := l.auditor.Record(ctx, entry); err != nil {
			return fmt.Errorf("recording audit entry: %w", err)
		}

		updated = acct
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("actor_id", actorID).
		Str("target_id", targetID).
		Str("role", string(input.NewRole)).
		Msg("role changed")

	return updated, nil
}

// Suspend moves the target to suspended, revokes all of its live
// sessions and records the action. Admin accounts cannot be suspended.
// The status change, revocation and audit entry commit together; a
// suspended account with live sessions is never observable.
func (l *Lifecycle) Suspend(ctx context.Context, targetID, actorID string, input SuspendInput) (*Account, error) {
	changes := map[string]any{
		"permanent": input.Permanent,
	}
	if input.DurationDays != nil {
		changes["durationDays"] = *input.DurationDays
	}
	return l.applyModeration(ctx, targetID, actorID, moderation{
		status:  StatusSuspended,
		action:  audit.ActionUserSuspended,
		reason:  input.Reason,
		meta:    input.Meta,
		payload: changes,
	})
}

// Ban moves the target to banned, revokes all of its live sessions and
// records the action. Admin accounts cannot be banned.
func (l *Lifecycle) Ban(ctx context.Context, targetID, actorID string, input BanInput) (*Account, error) {
	return l.applyModeration(ctx, targetID, actorID, moderation{
		status:  StatusBanned,
		action:  audit.ActionUserBanned,
		reason:  input.Reason,
		meta:    input.Meta,
		payload: map[string]any{"permanent": input.Permanent},
	})
}

// moderation describes a suspend-or-ban transition.
type moderation struct {
	status  Status
	action  audit.Action
	reason  string
	meta    audit.Meta
	payload map[string]any
}

func (l *Lifecycle) applyModeration(ctx context.Context, targetID, actorID string, m moderation) (*Account, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}
	if targetID == actorID {
		return nil, ErrSelfAction
	}

	var (
		updated *Account
		revoked int64
	)
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		acct, err := l.repo.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if acct.Role == RoleAdmin {
			return ErrProtectedTarget
		}

		oldStatus := acct.Status
		acct.Status = m.status
		touch(acct)
		if err := l.repo.Update(ctx, acct); err != nil {
			return fmt.Errorf("updating account: %w", err)
		}

		revoked, err = l.sessions.RevokeAll(ctx, acct.ID)
		if err != nil {
			return fmt.Errorf("revoking sessions: %w", err)
		}

		entry := audit.NewEntry(actorID, m.action, audit.TargetUser, acct.ID).WithMeta(m.meta)
		entry.Reason = m.reason
		entry.Changes = map[string]any{
			"before": map[string]any{"status": string(oldStatus)},
			"after":  map[string]any{"status": string(m.status)},
		}
		for k, v := range m.payload {
			entry.Changes[k] = v
		}
		if err := l.auditor.Record(ctx, entry); err != nil {
			return fmt.Errorf("recording audit entry: %w", err)
		}

		updated = acct
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("actor_id", actorID).
		Str("target_id", targetID).
		Str("status", string(m.status)).
		Int64("sessions_revoked", revoked).
		Msg("moderation applied")

	return updated, nil
}

// Delete removes the target account. With HardDelete the row and all
// dependent data are physically removed through the compliance
// pipeline's purge steps; otherwise the account is marked deleted in
// place. Admin accounts may only be hard-deleted, an explicit admin
// decision.
func (l *Lifecycle) Delete(ctx context.Context, targetID, actorID string, input DeleteInput) (*Account, error) {
	if actorID == "" {
		return nil, ErrMissingActor
	}
	if targetID == actorID {
		return nil, ErrSelfAction
	}

	var result *Account
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		acct, err := l.repo.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if acct.Role == RoleAdmin && !input.HardDelete {
			return ErrProtectedTarget
		}

		action := audit.ActionUserSoftDeleted
		oldStatus := acct.Status

		if input.HardDelete {
			action = audit.ActionUserHardDeleted
			if err := l.purger.Purge(ctx, acct.ID); err != nil {
				return fmt.Errorf("purging account data: %w", err)
			}
		} else {
			acct.Status = StatusDeleted
			touch(acct)
			if err := l.repo.Update(ctx, acct); err != nil {
				return fmt.Errorf("updating account: %w", err)
			}
		}

		entry := audit.NewEntry(actorID, action, audit.TargetUser, acct.ID).WithMeta(input.Meta)
		entry.Reason = input.Reason
		entry.Changes = map[string]any{
			"before": map[string]any{"status": string(oldStatus)},
			"after":  map[string]any{"status": string(StatusDeleted)},
			"hard":   input.HardDelete,
		}
		if err := l.auditor.Record(ctx, entry); err != nil {
			return fmt.Errorf("recording audit entry: %w", err)
		}

		result = acct
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("actor_id", actorID).
		Str("target_id", targetID).
		Bool("hard", input.HardDelete).
		Msg("account deleted")

	return result, nil
}
