package notify_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildboard/guildboard/internal/compliance"
	"github.com/guildboard/guildboard/internal/notify"
)

// stubFlags is a fixed kill-switch state.
type stubFlags struct {
	disabled bool
}

func (f stubFlags) IsWebhookNotificationsDisabled(context.Context) bool {
	return f.disabled
}

func testRequest() *compliance.DeletionRequest {
	now := time.Now()
	return &compliance.DeletionRequest{
		ID:          "del_test",
		UserID:      "usr_test",
		Status:      compliance.StatusCompleted,
		CompletedAt: &now,
	}
}

func TestWebhook_DeletionCompleted(t *testing.T) {
	var (
		gotBody      []byte
		gotSignature string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = body
		gotSignature = r.Header.Get("X-Guildboard-Signature")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook := notify.NewWebhook(notify.WebhookConfig{
		Endpoint: server.URL,
		Secret:   "test-secret",
		Logger:   zerolog.New(io.Discard),
	})

	err := webhook.DeletionCompleted(context.Background(), testRequest())
	require.NoError(t, err)

	var event notify.Event
	require.NoError(t, json.Unmarshal(gotBody, &event))
	assert.Equal(t, "deletion.completed", event.Type)

	data, err := json.Marshal(event.Data)
	require.NoError(t, err)
	var payload notify.DeletionCompletedData
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "del_test", payload.RequestID)
	assert.Equal(t, "usr_test", payload.UserID)

	// The signature is the hex HMAC-SHA256 of the exact payload bytes.
	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)
}

func TestWebhook_NoEndpoint(t *testing.T) {
	webhook := notify.NewWebhook(notify.WebhookConfig{
		Logger: zerolog.New(io.Discard),
	})

	// No receiver configured means delivery is silently skipped.
	err := webhook.DeletionCompleted(context.Background(), testRequest())
	assert.NoError(t, err)
}

func TestWebhook_Disabled(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook := notify.NewWebhook(notify.WebhookConfig{
		Endpoint: server.URL,
		Flags:    stubFlags{disabled: true},
		Logger:   zerolog.New(io.Discard),
	})

	err := webhook.DeletionCompleted(context.Background(), testRequest())
	require.NoError(t, err)
	assert.False(t, called)
}

func TestWebhook_ReceiverRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	webhook := notify.NewWebhook(notify.WebhookConfig{
		Endpoint: server.URL,
		Logger:   zerolog.New(io.Discard),
	})

	err := webhook.DeletionCompleted(context.Background(), testRequest())
	assert.Error(t, err)
}

func TestWebhook_Unsigned(t *testing.T) {
	var gotSignature string
	var headerPresent bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Guildboard-Signature")
		_, headerPresent = r.Header["X-Guildboard-Signature"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook := notify.NewWebhook(notify.WebhookConfig{
		Endpoint: server.URL,
		Logger:   zerolog.New(io.Discard),
	})

	err := webhook.DeletionCompleted(context.Background(), testRequest())
	require.NoError(t, err)
	assert.False(t, headerPresent)
	assert.Empty(t, gotSignature)
}
