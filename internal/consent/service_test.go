package consent_test

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/internal/consent"
	"github.com/guildboard/guildboard/internal/database"
)

func newConsentService() (*consent.Service, *consent.InMemoryRepository) {
	repo := consent.NewInMemoryRepository()
	svc := consent.NewService(consent.ServiceConfig{
		Repository: repo,
		TxManager:  database.NoopTxManager{},
		Logger:     zerolog.New(io.Discard),
	})
	return svc, repo
}

func TestService_UpdateConsent_Grant(t *testing.T) {
	svc, repo := newConsentService()
	ctx := context.Background()

	c, err := svc.UpdateConsent(ctx, "usr_1", consent.CategoryAnalytics, true, consent.UpdateInput{
		PolicyVersion: "v2",
		IPAddress:     "203.0.113.7",
		UserAgent:     "test-agent",
	})
	require.NoError(t, err)
	assert.Equal(t, consent.StatusGranted, c.Status)
	require.NotNil(t, c.GrantedAt)
	assert.Nil(t, c.WithdrawnAt)

	// The update writes the row and its log entry together.
	rows, err := repo.GetAllForUser(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, consent.StatusGranted, rows[0].Status)
	assert.Equal(t, "v2", rows[0].PolicyVersion)

	history, err := svc.GetConsentHistory(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, consent.CategoryAnalytics, history[0].Category)
	assert.Equal(t, "203.0.113.7", history[0].IPAddress)
	assert.Equal(t, "test-agent", history[0].UserAgent)
}

func TestService_UpdateConsent_Supersedes(t *testing.T) {
	svc, repo := newConsentService()
	ctx := context.Background()

	_, err := svc.UpdateConsent(ctx, "usr_1", consent.CategoryMarketing, true, consent.UpdateInput{})
	require.NoError(t, err)
	c, err := svc.UpdateConsent(ctx, "usr_1", consent.CategoryMarketing, false, consent.UpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, consent.StatusDenied, c.Status)
	require.NotNil(t, c.WithdrawnAt)

	// One current row, two log entries newest first.
	rows, err := repo.GetAllForUser(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, consent.StatusDenied, rows[0].Status)

	history, err := svc.GetConsentHistory(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, consent.StatusDenied, history[0].Status)
	assert.Equal(t, consent.StatusGranted, history[1].Status)
}

func TestService_UpdateConsent_UnknownCategory(t *testing.T) {
	svc, _ := newConsentService()
	ctx := context.Background()

	_, err := svc.UpdateConsent(ctx, "usr_1", consent.Category("telemetry"), true, consent.UpdateInput{})
	assert.ErrorIs(t, err, consent.ErrUnknownCategory)

	history, err := svc.GetConsentHistory(ctx, "usr_1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestService_GetConsents_Defaults(t *testing.T) {
	svc, _ := newConsentService()

	// A user who never touched the ledger gets a denied default per
	// category.
	consents, err := svc.GetConsents(context.Background(), "usr_1")
	require.NoError(t, err)
	require.Len(t, consents, len(consent.AllCategories()))
	for _, c := range consents {
		assert.Equal(t, consent.StatusDenied, c.Status, "category %s", c.Category)
	}
}

func TestService_GetConsents_MergesStored(t *testing.T) {
	svc, _ := newConsentService()
	ctx := context.Background()

	_, err := svc.UpdateConsent(ctx, "usr_1", consent.CategoryAnalytics, true, consent.UpdateInput{})
	require.NoError(t, err)

	consents, err := svc.GetConsents(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, consents, len(consent.AllCategories()))

	granted := 0
	for _, c := range consents {
		if c.Status == consent.StatusGranted {
			granted++
			assert.Equal(t, consent.CategoryAnalytics, c.Category)
		}
	}
	assert.Equal(t, 1, granted)
}
