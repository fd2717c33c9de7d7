package auth

import (
	"time"

	"github.com/gastosapp/gastos-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the freshly minted session alongside the user. The
// token never appears in a response body; the controller moves it into the
// session cookie.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *users.UserDTO
}

// ValidateResponse is the shape returned by the session validation endpoint.
type ValidateResponse struct {
	Valid bool           `json:"valid"`
	User  *users.UserDTO `json:"user,omitempty"`
}
