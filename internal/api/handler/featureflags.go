package handler

import (
	"encoding/json"
	"net/http"

	"github.com/guildboard/guildboard/internal/api/models"
	"github.com/guildboard/guildboard/internal/api/response"
	"github.com/guildboard/guildboard/internal/featureflags"
)

// FeatureFlagsHandler handles feature flag endpoints.
type FeatureFlagsHandler struct {
	service *featureflags.Service
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service *featureflags.Service) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service}
}

// flagPayload is the wire shape of one flag.
type flagPayload struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// ListFeatureFlags handles GET /v1/admin/flags - list all feature flags.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	flags := h.service.GetAllFlags(r.Context())

	items := make([]flagPayload, 0, len(flags))
	for key, flag := range flags {
		items = append(items, flagPayload{Key: key, Value: flag.Value})
	}

	response.JSON(w, r, http.StatusOK, map[string][]flagPayload{"flags": items})
}

// UpsertFeatureFlags handles PUT /v1/admin/flags - update feature flags.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Flags []flagPayload `json:"flags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if len(input.Flags) == 0 {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "flags", Message: "must contain at least one entry"},
		})
		return
	}

	flags := make([]*featureflags.Flag, 0, len(input.Flags))
	for _, f := range input.Flags {
		if f.Key == "" {
			response.BadRequest(w, r, "validation failed", []models.FieldError{
				{Field: "flags", Message: "key is required"},
			})
			return
		}
		flags = append(flags, &featureflags.Flag{Key: f.Key, Value: f.Value})
	}

	if err := h.service.SetFlags(r.Context(), flags); err != nil {
		respondError(w, r, err)
		return
	}

	response.NoContent(w, r)
}

// InvalidateCache handles POST /v1/admin/flags/invalidate - drop the
// in-process flag cache so the next read hits the store.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}
