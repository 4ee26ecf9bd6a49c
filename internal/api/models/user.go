package models

import (
	"github.com/guildboard/guildboard/internal/account"
)

// User represents an account as exposed by the API. Authentication
// material never appears here.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// UserFromAccount maps a domain account to its API representation.
func UserFromAccount(a *account.Account) User {
	return User{
		ID:            a.ID,
		Email:         a.Email,
		Username:      a.Username,
		Role:          string(a.Role),
		Status:        string(a.Status),
		EmailVerified: a.EmailVerified,
		CreatedAt:     Timestamp(a.CreatedAt),
		UpdatedAt:     Timestamp(a.UpdatedAt),
	}
}

// SuspendInput is the request body for suspending an account.
type SuspendInput struct {
	Reason       string `json:"reason"`
	DurationDays *int   `json:"durationDays,omitempty"`
	Permanent    bool   `json:"permanent,omitempty"`
}

// BanInput is the request body for banning an account.
type BanInput struct {
	Reason    string `json:"reason"`
	Permanent bool   `json:"permanent,omitempty"`
}

// RoleInput is the request body for changing an account's role.
type RoleInput struct {
	Role   string `json:"role"`
	Reason string `json:"reason,omitempty"`
}

// VerifyEmailInput is the request body for marking an email verified.
type VerifyEmailInput struct {
	Reason string `json:"reason,omitempty"`
}

// DeleteUserInput is the request body for deleting an account.
type DeleteUserInput struct {
	Reason     string `json:"reason,omitempty"`
	HardDelete bool   `json:"hardDelete,omitempty"`
}
