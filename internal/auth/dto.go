package auth

import (
	"time"

	"github.com/google/uuid"
)

// SignupRequest creates an account and signs it in.
type SignupRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	SessionKey string `json:"-"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	SessionKey string `json:"-"`
}

// RefreshRequest carries the refresh token issued alongside AccessToken.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	AccessToken  string `json:"-"`
	SessionKey   string `json:"-"`
}

// Identity is the authenticated account as the rest of the storefront sees it.
type Identity struct {
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
}

// TokenResponse is returned by signup, login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Identity     Identity  `json:"identity"`
}

// SessionInfo describes a live session found by Session.
type SessionInfo struct {
	Identity  Identity  `json:"identity"`
	AccessID  string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}
