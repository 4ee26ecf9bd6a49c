package handler

import (
	"errors"
	"net/http"

	"github.com/guildboard/guildboard/internal/account"
	"github.com/guildboard/guildboard/internal/api/response"
	"github.com/guildboard/guildboard/internal/audit"
	"github.com/guildboard/guildboard/internal/compliance"
	"github.com/guildboard/guildboard/internal/consent"
)

// respondError maps a domain error to its RFC7807 problem response.
// Unrecognized errors become a generic 500 so internals never leak.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, account.ErrNotFound):
		response.NotFound(w, r, "user")
	case errors.Is(err, compliance.ErrRequestNotFound):
		response.NotFound(w, r, "request")
	case errors.Is(err, account.ErrSelfAction):
		response.Forbidden(w, r, "action may not target your own account")
	case errors.Is(err, account.ErrProtectedTarget):
		response.Forbidden(w, r, "action may not target an admin account")
	case errors.Is(err, account.ErrAlreadyInState):
		response.Conflict(w, r, "account already in the requested state")
	case errors.Is(err, account.ErrInvalidRole):
		response.BadRequest(w, r, "unknown role", nil)
	case errors.Is(err, account.ErrMissingActor),
		errors.Is(err, compliance.ErrMissingProcessor):
		response.Unauthorized(w, r, "user not authenticated")
	case errors.Is(err, compliance.ErrDuplicateRequest):
		response.Conflict(w, r, "a pending deletion request already exists")
	case errors.Is(err, compliance.ErrEmailMismatch):
		response.BadRequest(w, r, "confirmation email does not match account", nil)
	case errors.Is(err, compliance.ErrRequestClosed):
		response.Conflict(w, r, "request is already in a final state")
	case errors.Is(err, compliance.ErrProcessingDisabled):
		response.ServiceUnavailable(w, r, "deletion processing is temporarily disabled")
	case errors.Is(err, consent.ErrUnknownCategory):
		response.BadRequest(w, r, "unknown consent category", nil)
	default:
		response.InternalError(w, r, "internal server error")
	}
}

// auditMeta captures the request context recorded alongside admin and
// compliance actions.
func auditMeta(r *http.Request) audit.Meta {
	return audit.Meta{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}
