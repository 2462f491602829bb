package auth

import (
	"context"

	"github.com/brianmay/penguin-nurse/internal"
)

// Provider turns login credentials into a user.
type Provider interface {
	Authenticate(ctx context.Context, username, password string) (*internal.User, error)
}
