package account_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/internal/account"
	"github.com/guildboard/guildboard/internal/audit"
	"github.com/guildboard/guildboard/internal/compliance"
	"github.com/guildboard/guildboard/internal/consent"
	"github.com/guildboard/guildboard/internal/content"
	"github.com/guildboard/guildboard/internal/database"
	"github.com/guildboard/guildboard/internal/profile"
	"github.com/guildboard/guildboard/internal/session"
)

// lifecycleEnv bundles the in-memory wiring behind a lifecycle service.
type lifecycleEnv struct {
	lifecycle *account.Lifecycle
	accounts  *account.InMemoryRepository
	sessions  *session.Service
	auditor   *audit.InMemoryRecorder
	user      *account.Account
	admin     *account.Account
}

func newLifecycleEnv(t *testing.T) *lifecycleEnv {
	t.Helper()

	logger := zerolog.New(io.Discard)

	accountRepo := account.NewInMemoryRepository()
	sessionSvc := session.NewService(session.ServiceConfig{
		Repository: session.NewInMemoryRepository(),
		Logger:     logger,
	})
	auditor := audit.NewInMemoryRecorder()

	// The purge behind hard deletes is owned by the compliance pipeline.
	pipeline := compliance.NewPipeline(compliance.PipelineConfig{
		Accounts:  accountRepo,
		Sessions:  sessionSvc,
		Consents:  consent.NewInMemoryRepository(),
		Profiles:  profile.NewInMemoryRepository(),
		Contents:  content.NewInMemoryRepository(),
		Requests:  compliance.NewInMemoryRepository(),
		Auditor:   auditor,
		TxManager: database.NoopTxManager{},
		Logger:    logger,
	})

	lifecycle := account.NewLifecycle(account.LifecycleConfig{
		Repository: accountRepo,
		Sessions:   sessionSvc,
		Auditor:    auditor,
		Purger:     pipeline,
		TxManager:  database.NoopTxManager{},
		Logger:     logger,
	})

	user := account.NewAccount("member@example.com", "member")
	require.NoError(t, accountRepo.Create(context.Background(), user))

	admin := account.NewAccount("admin@example.com", "head_admin")
	admin.Role = account.RoleAdmin
	require.NoError(t, accountRepo.Create(context.Background(), admin))

	return &lifecycleEnv{
		lifecycle: lifecycle,
		accounts:  accountRepo,
		sessions:  sessionSvc,
		auditor:   auditor,
		user:      user,
		admin:     admin,
	}
}

func (e *lifecycleEnv) openSession(t *testing.T, userID, token string) {
	t.Helper()
	sess := session.NewSession(userID, token, time.Hour)
	require.NoError(t, e.sessions.Open(context.Background(), sess))
}

func TestLifecycle_VerifyEmail(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	acct, err := env.lifecycle.VerifyEmail(ctx, env.user.ID, env.admin.ID, account.VerifyEmailInput{
		Reason: "support ticket 4821",
	})
	require.NoError(t, err)
	assert.True(t, acct.EmailVerified)

	entries, err := env.auditor.ListByTarget(ctx, audit.TargetUser, env.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionEmailVerified, entries[0].Action)
	assert.Equal(t, env.admin.ID, entries[0].ActorID)
	assert.Equal(t, "support ticket 4821", entries[0].Reason)
}

func TestLifecycle_VerifyEmail_AlreadyVerified(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	_, err := env.lifecycle.VerifyEmail(ctx, env.user.ID, env.admin.ID, account.VerifyEmailInput{})
	require.NoError(t, err)

	_, err = env.lifecycle.VerifyEmail(ctx, env.user.ID, env.admin.ID, account.VerifyEmailInput{})
	assert.ErrorIs(t, err, account.ErrAlreadyInState)

	// The failed attempt leaves no trace in the audit log.
	entries, err := env.auditor.ListByTarget(ctx, audit.TargetUser, env.user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLifecycle_VerifyEmail_MissingActor(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.lifecycle.VerifyEmail(context.Background(), env.user.ID, "", account.VerifyEmailInput{})
	assert.ErrorIs(t, err, account.ErrMissingActor)
}

func TestLifecycle_ChangeRole(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	acct, err := env.lifecycle.ChangeRole(ctx, env.user.ID, env.admin.ID, account.ChangeRoleInput{
		NewRole: account.RoleModerator,
		Reason:  "community vote",
	})
	require.NoError(t, err)
	assert.Equal(t, account.RoleModerator, acct.Role)

	entries, err := env.auditor.ListByTarget(ctx, audit.TargetUser, env.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionRoleChanged, entries[0].Action)
	assert.Equal(t, map[string]any{"role": "user"}, entries[0].Changes["before"])
	assert.Equal(t, map[string]any{"role": "moderator"}, entries[0].Changes["after"])
}

func TestLifecycle_ChangeRole_Self(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.lifecycle.ChangeRole(context.Background(), env.admin.ID, env.admin.ID, account.ChangeRoleInput{
		NewRole: account.RoleUser,
	})
	assert.ErrorIs(t, err, account.ErrSelfAction)
}

func TestLifecycle_ChangeRole_InvalidRole(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.lifecycle.ChangeRole(context.Background(), env.user.ID, env.admin.ID, account.ChangeRoleInput{
		NewRole: account.Role("superuser"),
	})
	assert.ErrorIs(t, err, account.ErrInvalidRole)
}

func TestLifecycle_Suspend(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	env.openSession(t, env.user.ID, "tok-1")
	env.openSession(t, env.user.ID, "tok-2")

	days := 30
	acct, err := env.lifecycle.Suspend(ctx, env.user.ID, env.admin.ID, account.SuspendInput{
		Reason:       "repeated spam",
		DurationDays: &days,
	})
	require.NoError(t, err)
	assert.Equal(t, account.StatusSuspended, acct.Status)

	// Suspension leaves no live sessions behind.
	live, err := env.sessions.ListForUser(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, live)

	entries, err := env.auditor.ListByTarget(ctx, audit.TargetUser, env.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUserSuspended, entries[0].Action)
	assert.Equal(t, "repeated spam", entries[0].Reason)
	assert.Equal(t, map[string]any{"status": "active"}, entries[0].Changes["before"])
	assert.Equal(t, map[string]any{"status": "suspended"}, entries[0].Changes["after"])
	assert.Equal(t, 30, entries[0].Changes["durationDays"])
	assert.Equal(t, false, entries[0].Changes["permanent"])
}

func TestLifecycle_Suspend_MissingActor(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.lifecycle.Suspend(context.Background(), env.user.ID, "", account.SuspendInput{Reason: "spam"})
	assert.ErrorIs(t, err, account.ErrMissingActor)
}

func TestLifecycle_Suspend_Self(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.lifecycle.Suspend(context.Background(), env.admin.ID, env.admin.ID, account.SuspendInput{Reason: "spam"})
	assert.ErrorIs(t, err, account.ErrSelfAction)
}

func TestLifecycle_Suspend_AdminTarget(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	other := account.NewAccount("admin2@example.com", "other_admin")
	other.Role = account.RoleAdmin
	require.NoError(t, env.accounts.Create(ctx, other))

	_, err := env.lifecycle.Suspend(ctx, other.ID, env.admin.ID, account.SuspendInput{Reason: "spam"})
	assert.ErrorIs(t, err, account.ErrProtectedTarget)

	// Guard failure leaves the target untouched and unaudited.
	got, err := env.accounts.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusActive, got.Status)

	entries, err := env.auditor.ListByTarget(ctx, audit.TargetUser, other.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLifecycle_Ban(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	env.openSession(t, env.user.ID, "tok-1")

	acct, err := env.lifecycle.Ban(ctx, env.user.ID, env.admin.ID, account.BanInput{
		Reason:    "ban evasion",
		Permanent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, account.StatusBanned, acct.Status)

	live, err := env.sessions.ListForUser(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, live)

	entries, err := env.auditor.ListByTarget(ctx, audit.TargetUser, env.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUserBanned, entries[0].Action)
	assert.Equal(t, true, entries[0].Changes["permanent"])
}

func TestLifecycle_Ban_AdminTarget(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	other := account.NewAccount("admin2@example.com", "other_admin")
	other.Role = account.RoleAdmin
	require.NoError(t, env.accounts.Create(ctx, other))

	_, err := env.lifecycle.Ban(ctx, other.ID, env.admin.ID, account.BanInput{Reason: "spam"})
	assert.ErrorIs(t, err, account.ErrProtectedTarget)
}

func TestLifecycle_Delete_Soft(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	acct, err := env.lifecycle.Delete(ctx, env.user.ID, env.admin.ID, account.DeleteInput{
		Reason: "user request via support",
	})
	require.NoError(t, err)
	assert.Equal(t, account.StatusDeleted, acct.Status)

	// Soft delete keeps the row.
	got, err := env.accounts.GetByID(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusDeleted, got.Status)

	entries, err := env.auditor.ListByTarget(ctx, audit.TargetUser, env.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUserSoftDeleted, entries[0].Action)
	assert.Equal(t, false, entries[0].Changes["hard"])
}

func TestLifecycle_Delete_Hard(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	env.openSession(t, env.user.ID, "tok-1")

	_, err := env.lifecycle.Delete(ctx, env.user.ID, env.admin.ID, account.DeleteInput{
		Reason:     "legal demand",
		HardDelete: true,
	})
	require.NoError(t, err)

	// Hard delete removes the row itself.
	_, err = env.accounts.GetByID(ctx, env.user.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)

	live, err := env.sessions.ListForUser(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, live)

	entries, err := env.auditor.ListByTarget(ctx, audit.TargetUser, env.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUserHardDeleted, entries[0].Action)
	assert.Equal(t, true, entries[0].Changes["hard"])
}

func TestLifecycle_Delete_AdminTarget(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	other := account.NewAccount("admin2@example.com", "other_admin")
	other.Role = account.RoleAdmin
	require.NoError(t, env.accounts.Create(ctx, other))

	// Admins may not be soft-deleted.
	_, err := env.lifecycle.Delete(ctx, other.ID, env.admin.ID, account.DeleteInput{})
	assert.ErrorIs(t, err, account.ErrProtectedTarget)

	// Hard deletion is the explicit escape hatch.
	_, err = env.lifecycle.Delete(ctx, other.ID, env.admin.ID, account.DeleteInput{HardDelete: true})
	require.NoError(t, err)

	_, err = env.accounts.GetByID(ctx, other.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestLifecycle_Delete_Self(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.lifecycle.Delete(context.Background(), env.admin.ID, env.admin.ID, account.DeleteInput{})
	assert.ErrorIs(t, err, account.ErrSelfAction)
}
