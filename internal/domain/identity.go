package domain

import "time"

// User is the signed-in identity as seen by the rest of the system.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type Session struct {
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	User         User      `json:"user"`
}

// Authorizer decides whether a user may use the admin review surface.
type Authorizer interface {
	CanAdminister(u User) bool
}

type AuthEventKind string

const (
	AuthSignedIn  AuthEventKind = "signed_in"
	AuthSignedUp  AuthEventKind = "signed_up"
	AuthSignedOut AuthEventKind = "signed_out"
)

type AuthEvent struct {
	Kind  AuthEventKind
	Email string
}
