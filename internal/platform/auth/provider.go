package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

const MinPasswordLength = 6

// Credential is returned by sign-up and sign-in.
type Credential struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CredentialProvider owns logins: passwords, tokens and password resets.
type CredentialProvider interface {
	SignUp(ctx context.Context, email, password string) (*Credential, error)
	SignIn(ctx context.Context, email, password string) (*Credential, error)
	Verify(ctx context.Context, token string) (*Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	// Delete removes a login. Used to compensate a failed registration.
	Delete(ctx context.Context, userID string) error
}
