package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/guildboard/guildboard/internal/compliance"
)

// signatureHeader carries the HMAC-SHA256 of the payload so receivers
// can authenticate deliveries.
const signatureHeader = "X-Guildboard-Signature"

// Flags exposes the kill switch the notifier honors.
type Flags interface {
	IsWebhookNotificationsDisabled(ctx context.Context) bool
}

// DeliveryRecorder observes delivery attempts.
type DeliveryRecorder interface {
	RecordDelivery(event string, duration time.Duration, err error)
}

// Event is the envelope delivered to webhook receivers.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// DeletionCompletedData is the payload of a deletion.completed event.
// It carries identifiers only; the personal data is gone by the time
// the event fires.
type DeletionCompletedData struct {
	RequestID   string     `json:"requestId"`
	UserID      string     `json:"userId"`
	CompletedAt *time.Time `json:"completedAt"`
}

// WebhookConfig holds configuration for the webhook notifier.
type WebhookConfig struct {
	// Endpoint is the receiver URL. Empty disables delivery.
	Endpoint string

	// Secret signs payloads. Empty sends unsigned deliveries.
	Secret string

	Client  *Client
	Flags   Flags
	Metrics DeliveryRecorder
	Logger  zerolog.Logger
}

// Webhook delivers compliance events to a single configured receiver.
type Webhook struct {
	endpoint string
	secret   string
	client   *Client
	flags    Flags
	metrics  DeliveryRecorder
	logger   zerolog.Logger
}

// NewWebhook creates a new webhook notifier.
func NewWebhook(cfg WebhookConfig) *Webhook {
	client := cfg.Client
	if client == nil {
		client = NewClient(ClientConfig{Name: "webhook"})
	}
	return &Webhook{
		endpoint: cfg.Endpoint,
		secret:   cfg.Secret,
		client:   client,
		flags:    cfg.Flags,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

// DeletionCompleted notifies the receiver that a deletion request
// finished and the account was anonymized.
func (w *Webhook) DeletionCompleted(ctx context.Context, req *compliance.DeletionRequest) error {
	return w.deliver(ctx, Event{
		Type:       "deletion.completed",
		OccurredAt: time.Now().UTC(),
		Data: DeletionCompletedData{
			RequestID:   req.ID,
			UserID:      req.UserID,
			CompletedAt: req.CompletedAt,
		},
	})
}

func (w *Webhook) deliver(ctx context.Context, event Event) error {
	if w.endpoint == "" {
		return nil
	}
	if w.flags != nil && w.flags.IsWebhookNotificationsDisabled(ctx) {
		w.logger.Info().
			Str("event", event.Type).
			Msg("webhook notifications disabled, skipping delivery")
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		httpReq.Header.Set(signatureHeader, sign(w.secret, payload))
	}

	start := time.Now()
	resp, err := w.client.Do(ctx, httpReq)
	if w.metrics != nil {
		w.metrics.RecordDelivery(event.Type, time.Since(start), err)
	}
	if err != nil {
		return fmt.Errorf("delivering %s: %w", event.Type, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("delivering %s: receiver returned %d", event.Type, resp.StatusCode)
	}

	w.logger.Info().
		Str("event", event.Type).
		Int("status", resp.StatusCode).
		Msg("webhook delivered")

	return nil
}

// sign computes the hex HMAC-SHA256 of the payload.
func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
