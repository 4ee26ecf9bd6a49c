// Package worker provides background job processing, currently the
// async data-export jobs.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types dispatched through the queue.
const (
	JobTypeExportRequest = "export_request"
	JobTypeHealthCheck   = "health_check"
)

// ExportRunner executes one queued export job.
type ExportRunner interface {
	RunExportJob(ctx context.Context, requestID string) error
}

// Pinger verifies storage connectivity for health-check jobs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobMessage is the queue payload.
type JobMessage struct {
	JobType   string `json:"job_type"`
	RequestID string `json:"request_id,omitempty"`
}

// PubSubHandler consumes job messages from a Pub/Sub subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	exporter         ExportRunner
	pinger           Pinger
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Exporter         ExportRunner
	Pinger           Pinger
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Exports can take a while on heavy accounts; keep the leases long
	// and the parallelism modest.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		exporter:         cfg.Exporter,
		pinger:           cfg.Pinger,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var job JobMessage
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	if err := h.Dispatch(ctx, job); err != nil {
		if errors.Is(err, ErrUnknownJobType) {
			logger.Warn().Str("job_type", job.JobType).Msg("unknown job type")
			msg.Ack() // ack unknown messages to prevent redelivery
			return
		}
		logger.Error().Err(err).Str("job_type", job.JobType).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Str("job_type", job.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")

	msg.Ack()
}

// ErrUnknownJobType is returned for a job type outside the known set.
var ErrUnknownJobType = errors.New("unknown job type")

// Dispatch routes a job message to its handler.
func (h *PubSubHandler) Dispatch(ctx context.Context, job JobMessage) error {
	switch job.JobType {
	case JobTypeExportRequest:
		return h.handleExportRequest(ctx, job)
	case JobTypeHealthCheck:
		return h.handleHealthCheck(ctx)
	default:
		return ErrUnknownJobType
	}
}

func (h *PubSubHandler) handleExportRequest(ctx context.Context, job JobMessage) error {
	if job.RequestID == "" {
		return fmt.Errorf("export_request job missing request_id")
	}

	h.logger.Info().
		Str("request_id", job.RequestID).
		Msg("running export job")

	return h.exporter.RunExportJob(ctx, job.RequestID)
}

func (h *PubSubHandler) handleHealthCheck(ctx context.Context) error {
	h.logger.Debug().Msg("running health check")

	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
	}

	h.logger.Debug().Msg("health check passed")
	return nil
}
