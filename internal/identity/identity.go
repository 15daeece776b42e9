// Package identity authenticates users against an identity provider.
package identity

import "context"

// Session is the token set returned by a successful sign-in.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Identity is the verified owner of a session token.
type Identity struct {
	Subject string
	Email   string
}

// Gateway is implemented by every identity provider.
type Gateway interface {
	// Register creates an account and returns its subject. A taken email is a conflict.
	Register(ctx context.Context, email, password string) (string, error)
	// Authenticate exchanges credentials for a session. A mismatch is unauthorized.
	Authenticate(ctx context.Context, email, password string) (*Session, error)
	// Verify resolves a session token to its owner.
	Verify(ctx context.Context, token string) (*Identity, error)
	// Remove deletes an account. Used to undo a registration whose profile could not be stored.
	Remove(ctx context.Context, email string) error
}
