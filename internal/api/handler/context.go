package handler

import (
	"context"

	"github.com/guildboard/guildboard/internal/api/middleware"
)

// GetUserID retrieves the authenticated user ID from the context.
// This is a convenience wrapper around middleware.GetUserID.
func GetUserID(ctx context.Context) string {
	return middleware.GetUserID(ctx)
}

// GetUserRole retrieves the authenticated user's role from the context.
// This is a convenience wrapper around middleware.GetUserRole.
func GetUserRole(ctx context.Context) string {
	return middleware.GetUserRole(ctx)
}
