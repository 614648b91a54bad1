package dto

import "time"

// LoginRequest carries the admin password.
type LoginRequest struct {
	Password string `json:"password"`
}

// SessionResponse describes an admin session.
type SessionResponse struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
