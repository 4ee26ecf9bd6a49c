// Package featureflags provides feature flag management for runtime
// configuration, chiefly the operational kill switches.
package featureflags

import (
	"encoding/json"
	"time"
)

// Well-known feature flag keys.
const (
	// FlagDisableDeletionProcessing pauses the compliance pipeline:
	// deletion requests can still be filed but not processed.
	FlagDisableDeletionProcessing = "disable_deletion_processing"

	// FlagDisableExportJobs pauses the async export worker; queued jobs
	// stay pending until the flag is lifted.
	FlagDisableExportJobs = "disable_export_jobs"

	// FlagDisableWebhookNotifications prevents outbound webhook
	// deliveries.
	FlagDisableWebhookNotifications = "disable_webhook_notifications"
)

// Flag represents a feature flag with its current value.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FlagUpdate represents a single flag update request.
type FlagUpdate struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// BoolValue returns the flag value as a boolean.
// Returns the default value if the flag is nil or not a boolean.
func (f *Flag) BoolValue(defaultValue bool) bool {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		// JSON unmarshals numbers as float64
		return v != 0
	default:
		return defaultValue
	}
}

// StringValue returns the flag value as a string.
// Returns the default value if the flag is nil or not a string.
func (f *Flag) StringValue(defaultValue string) string {
	if f == nil {
		return defaultValue
	}
	if v, ok := f.Value.(string); ok {
		return v
	}
	return defaultValue
}

// JSONValue unmarshals the flag value into the target struct.
func (f *Flag) JSONValue(target interface{}) error {
	if f == nil {
		return nil
	}
	data, err := json.Marshal(f.Value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// DefaultFlags returns the default feature flags for the application.
// All kill switches default to off.
func DefaultFlags() map[string]*Flag {
	now := time.Now()
	return map[string]*Flag{
		FlagDisableDeletionProcessing: {
			Key:       FlagDisableDeletionProcessing,
			Value:     false,
			UpdatedAt: now,
		},
		FlagDisableExportJobs: {
			Key:       FlagDisableExportJobs,
			Value:     false,
			UpdatedAt: now,
		},
		FlagDisableWebhookNotifications: {
			Key:       FlagDisableWebhookNotifications,
			Value:     false,
			UpdatedAt: now,
		},
	}
}
