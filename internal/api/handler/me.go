package handler

import (
	"encoding/json"
	"net/http"

	"github.com/guildboard/guildboard/internal/account"
	"github.com/guildboard/guildboard/internal/api/middleware"
	"github.com/guildboard/guildboard/internal/api/models"
	"github.com/guildboard/guildboard/internal/api/response"
	"github.com/guildboard/guildboard/internal/consent"
)

// MeHandler handles the authenticated user's own account endpoints.
type MeHandler struct {
	lifecycle *account.Lifecycle
	consents  *consent.Service
}

// NewMeHandler creates a new MeHandler.
func NewMeHandler(lifecycle *account.Lifecycle, consents *consent.Service) *MeHandler {
	return &MeHandler{
		lifecycle: lifecycle,
		consents:  consents,
	}
}

// GetMe handles GET /v1/me - get current user account summary.
func (h *MeHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	acct, err := h.lifecycle.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.UserFromAccount(acct))
}

// GetConsents handles GET /v1/me/consents - current consent states,
// one row per category with denied defaults for untouched ones.
func (h *MeHandler) GetConsents(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	consents, err := h.consents.GetConsents(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]models.Consent, 0, len(consents))
	for _, c := range consents {
		items = append(items, models.ConsentFromDomain(c))
	}

	response.JSON(w, r, http.StatusOK, map[string][]models.Consent{"consents": items})
}

// UpdateConsents handles PUT /v1/me/consents - record consent
// decisions. Each entry writes a current-state row and a log entry.
func (h *MeHandler) UpdateConsents(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input models.ConsentsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if len(input.Consents) == 0 {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "consents", Message: "must contain at least one entry"},
		})
		return
	}
	for _, update := range input.Consents {
		if !consent.Category(update.Category).Valid() {
			response.BadRequest(w, r, "validation failed", []models.FieldError{
				{Field: "consents", Message: "unknown category: " + update.Category},
			})
			return
		}
	}

	items := make([]models.Consent, 0, len(input.Consents))
	for _, update := range input.Consents {
		c, err := h.consents.UpdateConsent(r.Context(), userID, consent.Category(update.Category), update.Granted, consent.UpdateInput{
			PolicyVersion: update.PolicyVersion,
			IPAddress:     r.RemoteAddr,
			UserAgent:     r.UserAgent(),
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		items = append(items, models.ConsentFromDomain(c))
	}

	response.JSON(w, r, http.StatusOK, map[string][]models.Consent{"consents": items})
}

// GetConsentHistory handles GET /v1/me/consents/history - the user's
// consent log, newest first.
func (h *MeHandler) GetConsentHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	entries, err := h.consents.GetConsentHistory(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]models.ConsentLogEntry, 0, len(entries))
	for _, e := range entries {
		items = append(items, models.ConsentLogFromDomain(e))
	}

	response.JSON(w, r, http.StatusOK, map[string][]models.ConsentLogEntry{"entries": items})
}
