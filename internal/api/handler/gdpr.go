package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/guildboard/guildboard/internal/api/middleware"
	"github.com/guildboard/guildboard/internal/api/models"
	"github.com/guildboard/guildboard/internal/api/response"
	"github.com/guildboard/guildboard/internal/compliance"
)

// ExportEnqueuer publishes an export job for async processing. Nil-able
// in tests; without one, export requests stay pending until a worker
// polls them.
type ExportEnqueuer interface {
	EnqueueExport(ctx context.Context, requestID string) error
}

// GDPRHandler handles the data-subject-rights endpoints. All routes
// operate on the authenticated user's own account.
type GDPRHandler struct {
	pipeline *compliance.Pipeline
	exporter *compliance.Exporter
	enqueuer ExportEnqueuer
	logger   zerolog.Logger
}

// NewGDPRHandler creates a new GDPRHandler.
func NewGDPRHandler(pipeline *compliance.Pipeline, exporter *compliance.Exporter, enqueuer ExportEnqueuer, logger zerolog.Logger) *GDPRHandler {
	return &GDPRHandler{
		pipeline: pipeline,
		exporter: exporter,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// CreateDeletionRequest handles POST /v1/gdpr/deletion-requests.
func (h *GDPRHandler) CreateDeletionRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input models.DeletionRequestCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.ConfirmEmail == "" {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "confirmEmail", Message: "is required"},
		})
		return
	}

	req, err := h.pipeline.RequestDeletion(r.Context(), userID, compliance.RequestDeletionInput{
		ConfirmEmail: input.ConfirmEmail,
		Reason:       input.Reason,
		Meta:         auditMeta(r),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/gdpr/deletion-requests/%s", req.ID)
	response.Created(w, r, location, models.DeletionRequestFromDomain(req))
}

// ListDeletionRequests handles GET /v1/gdpr/deletion-requests.
func (h *GDPRHandler) ListDeletionRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	requests, err := h.pipeline.ListDeletionRequests(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]models.DeletionRequest, 0, len(requests))
	for _, req := range requests {
		items = append(items, models.DeletionRequestFromDomain(req))
	}

	response.JSON(w, r, http.StatusOK, models.PagedDeletionRequests{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	})
}

// GetDeletionRequest handles GET /v1/gdpr/deletion-requests/{deletionRequestId}.
func (h *GDPRHandler) GetDeletionRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID := chi.URLParam(r, "deletionRequestId")

	req, err := h.pipeline.GetDeletionRequest(r.Context(), requestID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	// Users may only see their own requests.
	if req.UserID != userID {
		response.NotFound(w, r, "request")
		return
	}

	response.JSON(w, r, http.StatusOK, models.DeletionRequestFromDomain(req))
}

// CreateExportRequest handles POST /v1/gdpr/export-requests. The
// snapshot is assembled asynchronously; the response is the pending
// job.
func (h *GDPRHandler) CreateExportRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	req, err := h.exporter.RequestExport(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueExport(r.Context(), req.ID); err != nil {
			// The request row exists; a worker sweep can still pick it
			// up, so the enqueue failure is not surfaced to the caller.
			h.logger.Error().Err(err).
				Str("request_id", req.ID).
				Msg("enqueueing export job failed")
		}
	}

	location := fmt.Sprintf("/v1/gdpr/export-requests/%s", req.ID)
	response.Accepted(w, r, location, models.ExportRequestFromDomain(req))
}

// ListExportRequests handles GET /v1/gdpr/export-requests.
func (h *GDPRHandler) ListExportRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	requests, err := h.exporter.ListExportRequests(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]models.ExportRequest, 0, len(requests))
	for _, req := range requests {
		items = append(items, models.ExportRequestFromDomain(req))
	}

	response.JSON(w, r, http.StatusOK, models.PagedExportRequests{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	})
}

// GetExportRequest handles GET /v1/gdpr/export-requests/{exportRequestId}.
func (h *GDPRHandler) GetExportRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID := chi.URLParam(r, "exportRequestId")

	req, err := h.exporter.GetExportRequest(r.Context(), requestID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if req.UserID != userID {
		response.NotFound(w, r, "request")
		return
	}

	response.JSON(w, r, http.StatusOK, models.ExportRequestFromDomain(req))
}

// DownloadExport handles GET /v1/gdpr/export-requests/{exportRequestId}/download.
// Returns the assembled snapshot once the job is ready.
func (h *GDPRHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID := chi.URLParam(r, "exportRequestId")

	req, err := h.exporter.GetExportRequest(r.Context(), requestID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if req.UserID != userID {
		response.NotFound(w, r, "request")
		return
	}
	if req.Status != compliance.ExportReady {
		response.Conflict(w, r, "export is not ready")
		return
	}

	snap, err := h.exporter.GetSnapshot(r.Context(), requestID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "export-"+requestID+".json"))
	response.JSON(w, r, http.StatusOK, snap)
}
