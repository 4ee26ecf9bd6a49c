package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guildboard/guildboard/internal/account"
	"github.com/guildboard/guildboard/internal/api/middleware"
	"github.com/guildboard/guildboard/internal/api/models"
	"github.com/guildboard/guildboard/internal/api/response"
	"github.com/guildboard/guildboard/internal/audit"
	"github.com/guildboard/guildboard/internal/compliance"
)

// AdminHandler handles the admin moderation endpoints. All routes are
// behind the admin-role middleware; the lifecycle service re-validates
// the guards regardless.
type AdminHandler struct {
	lifecycle *account.Lifecycle
	pipeline  *compliance.Pipeline
	auditor   audit.Recorder
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(lifecycle *account.Lifecycle, pipeline *compliance.Pipeline, auditor audit.Recorder) *AdminHandler {
	return &AdminHandler{
		lifecycle: lifecycle,
		pipeline:  pipeline,
		auditor:   auditor,
	}
}

// GetUser handles GET /v1/admin/users/{userId}.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	acct, err := h.lifecycle.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.UserFromAccount(acct))
}

// SuspendUser handles POST /v1/admin/users/{userId}/suspend.
func (h *AdminHandler) SuspendUser(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userId")
	actorID := middleware.GetUserID(r.Context())

	var input models.SuspendInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if fieldErrors := validateReason(input.Reason, true); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation failed", fieldErrors)
		return
	}
	if input.DurationDays != nil && (*input.DurationDays < 1 || *input.DurationDays > 365) {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "durationDays", Message: "must be between 1 and 365"},
		})
		return
	}

	acct, err := h.lifecycle.Suspend(r.Context(), targetID, actorID, account.SuspendInput{
		Reason:       input.Reason,
		DurationDays: input.DurationDays,
		Permanent:    input.Permanent,
		Meta:         auditMeta(r),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.UserFromAccount(acct))
}

// BanUser handles POST /v1/admin/users/{userId}/ban.
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userId")
	actorID := middleware.GetUserID(r.Context())

	var input models.BanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if fieldErrors := validateReason(input.Reason, true); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation failed", fieldErrors)
		return
	}

	acct, err := h.lifecycle.Ban(r.Context(), targetID, actorID, account.BanInput{
		Reason:    input.Reason,
		Permanent: input.Permanent,
		Meta:      auditMeta(r),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.UserFromAccount(acct))
}

// ChangeRole handles PUT /v1/admin/users/{userId}/role.
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userId")
	actorID := middleware.GetUserID(r.Context())

	var input models.RoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Role == "" {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "role", Message: "is required"},
		})
		return
	}

	acct, err := h.lifecycle.ChangeRole(r.Context(), targetID, actorID, account.ChangeRoleInput{
		NewRole: account.Role(input.Role),
		Reason:  input.Reason,
		Meta:    auditMeta(r),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.UserFromAccount(acct))
}

// VerifyEmail handles POST /v1/admin/users/{userId}/verify-email.
func (h *AdminHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userId")
	actorID := middleware.GetUserID(r.Context())

	var input models.VerifyEmailInput
	// Body is optional
	_ = json.NewDecoder(r.Body).Decode(&input)

	acct, err := h.lifecycle.VerifyEmail(r.Context(), targetID, actorID, account.VerifyEmailInput{
		Reason: input.Reason,
		Meta:   auditMeta(r),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.UserFromAccount(acct))
}

// DeleteUser handles DELETE /v1/admin/users/{userId}. Soft delete by
// default; hardDelete purges every owned row.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userId")
	actorID := middleware.GetUserID(r.Context())

	var input models.DeleteUserInput
	// Body is optional
	_ = json.NewDecoder(r.Body).Decode(&input)

	_, err := h.lifecycle.Delete(r.Context(), targetID, actorID, account.DeleteInput{
		Reason:     input.Reason,
		HardDelete: input.HardDelete,
		Meta:       auditMeta(r),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.NoContent(w, r)
}

// GetUserAuditLog handles GET /v1/admin/users/{userId}/audit-log.
func (h *AdminHandler) GetUserAuditLog(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	// Confirm the target exists so an empty log and an unknown user are
	// distinguishable.
	if _, err := h.lifecycle.GetUserByID(r.Context(), userID); err != nil {
		respondError(w, r, err)
		return
	}

	entries, err := h.auditor.ListByTarget(r.Context(), audit.TargetUser, userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]models.AuditEntry, 0, len(entries))
	for _, e := range entries {
		items = append(items, models.AuditEntryFromDomain(e))
	}

	response.JSON(w, r, http.StatusOK, models.PagedAuditEntries{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	})
}

// ProcessDeletionRequest handles POST /v1/admin/deletion-requests/{deletionRequestId}/process.
func (h *AdminHandler) ProcessDeletionRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "deletionRequestId")
	processorID := middleware.GetUserID(r.Context())

	var input models.DeletionRequestProcess
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	switch compliance.RequestStatus(input.Status) {
	case compliance.StatusProcessing, compliance.StatusCompleted, compliance.StatusCancelled:
	default:
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "status", Message: "must be processing, completed or cancelled"},
		})
		return
	}

	req, err := h.pipeline.Process(r.Context(), requestID, processorID, compliance.ProcessInput{
		Status: compliance.RequestStatus(input.Status),
		Notes:  input.Notes,
		Meta:   auditMeta(r),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.DeletionRequestFromDomain(req))
}

// GetDeletionRequest handles GET /v1/admin/deletion-requests/{deletionRequestId}.
func (h *AdminHandler) GetDeletionRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "deletionRequestId")

	req, err := h.pipeline.GetDeletionRequest(r.Context(), requestID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.DeletionRequestFromDomain(req))
}

// validateReason validates a moderation reason field.
func validateReason(reason string, required bool) []models.FieldError {
	var fieldErrors []models.FieldError
	if required && reason == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "reason",
			Message: "is required",
		})
	}
	if len(reason) > 500 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "reason",
			Message: "must be at most 500 characters",
		})
	}
	return fieldErrors
}
