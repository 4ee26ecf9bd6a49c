package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/internal/audit"
)

func TestRecorder_Record(t *testing.T) {
	rec := audit.NewInMemoryRecorder()
	ctx := context.Background()

	entry := audit.NewEntry("usr_admin", audit.ActionUserBanned, audit.TargetUser, "usr_1").
		WithMeta(audit.Meta{IPAddress: "203.0.113.7", UserAgent: "test-agent"})
	entry.Reason = "ban evasion"
	require.NoError(t, rec.Record(ctx, entry))

	entries, err := rec.ListByTarget(ctx, audit.TargetUser, "usr_1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "usr_admin", entries[0].ActorID)
	assert.Equal(t, audit.ActionUserBanned, entries[0].Action)
	assert.Equal(t, "ban evasion", entries[0].Reason)
	assert.Equal(t, "203.0.113.7", entries[0].IPAddress)
	assert.Equal(t, "test-agent", entries[0].UserAgent)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestRecorder_Record_IncompleteEntry(t *testing.T) {
	rec := audit.NewInMemoryRecorder()
	ctx := context.Background()

	for name, entry := range map[string]*audit.Entry{
		"missing actor":       audit.NewEntry("", audit.ActionUserBanned, audit.TargetUser, "usr_1"),
		"missing action":      audit.NewEntry("usr_admin", "", audit.TargetUser, "usr_1"),
		"missing target type": audit.NewEntry("usr_admin", audit.ActionUserBanned, "", "usr_1"),
		"missing target id":   audit.NewEntry("usr_admin", audit.ActionUserBanned, audit.TargetUser, ""),
	} {
		err := rec.Record(ctx, entry)
		assert.ErrorIs(t, err, audit.ErrInvalidEntry, name)
	}
}

func TestRecorder_ListByTarget(t *testing.T) {
	rec := audit.NewInMemoryRecorder()
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, audit.NewEntry("usr_admin", audit.ActionUserSuspended, audit.TargetUser, "usr_1")))
	require.NoError(t, rec.Record(ctx, audit.NewEntry("usr_admin", audit.ActionUserBanned, audit.TargetUser, "usr_1")))
	require.NoError(t, rec.Record(ctx, audit.NewEntry("usr_admin", audit.ActionUserBanned, audit.TargetUser, "usr_2")))

	entries, err := rec.ListByTarget(ctx, audit.TargetUser, "usr_1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, audit.ActionUserBanned, entries[0].Action)
	assert.Equal(t, audit.ActionUserSuspended, entries[1].Action)
}

func TestRecorder_ListByActor(t *testing.T) {
	rec := audit.NewInMemoryRecorder()
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, audit.NewEntry("usr_a", audit.ActionRoleChanged, audit.TargetUser, "usr_1")))
	require.NoError(t, rec.Record(ctx, audit.NewEntry("usr_b", audit.ActionUserBanned, audit.TargetUser, "usr_2")))

	entries, err := rec.ListByActor(ctx, "usr_a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionRoleChanged, entries[0].Action)
}
