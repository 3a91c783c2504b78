// Package types provides request and response shapes shared by the job board service and its HTTP surface.
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SignUpRequest is the sign-up form. ConfirmPassword is optional for API
// clients; when sent it must match Password. Passwords stop at 72 bytes
// because bcrypt ignores anything longer.
type SignUpRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword,omitempty" validate:"omitempty,eqfield=Password"`
}

// Normalize trims the name and email and lower-cases the email. Passwords
// are left untouched.
func (r *SignUpRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
}

// SignInRequest is the sign-in form.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *SignInRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Account is the public view of a registered user. It never carries the
// password hash.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is returned by sign-up and sign-in. The token goes in the
// Authorization header of later requests.
type Session struct {
	Account   *Account  `json:"account"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
