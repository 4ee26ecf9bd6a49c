package session_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/internal/session"
)

func newSessionService() *session.Service {
	return session.NewService(session.ServiceConfig{
		Repository: session.NewInMemoryRepository(),
		Logger:     zerolog.New(io.Discard),
	})
}

func TestService_OpenAndLookup(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	sess := session.NewSession("usr_1", "tok-1", time.Hour)
	require.NoError(t, svc.Open(ctx, sess))

	got, err := svc.Lookup(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "usr_1", got.UserID)
}

func TestService_Lookup_NotFound(t *testing.T) {
	svc := newSessionService()

	_, err := svc.Lookup(context.Background(), "tok-missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestService_RevokeAll(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	require.NoError(t, svc.Open(ctx, session.NewSession("usr_1", "tok-1", time.Hour)))
	require.NoError(t, svc.Open(ctx, session.NewSession("usr_1", "tok-2", time.Hour)))
	require.NoError(t, svc.Open(ctx, session.NewSession("usr_2", "tok-3", time.Hour)))

	count, err := svc.RevokeAll(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	live, err := svc.ListForUser(ctx, "usr_1")
	require.NoError(t, err)
	assert.Empty(t, live)

	// Other users keep their sessions.
	live, err = svc.ListForUser(ctx, "usr_2")
	require.NoError(t, err)
	assert.Len(t, live, 1)

	// Revoked tokens no longer resolve.
	_, err = svc.Lookup(ctx, "tok-1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestService_RevokeAll_NoSessions(t *testing.T) {
	svc := newSessionService()

	count, err := svc.RevokeAll(context.Background(), "usr_1")
	require.NoError(t, err)
	assert.Zero(t, count)
}
