package auth

import (
	"context"
	"errors"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/storage"
)

var ErrInvalidCredentials = errors.New("Invalid username or password")

// LocalAuthProvider checks passwords against the bcrypt hashes in the user
// table.
type LocalAuthProvider struct {
	users  storage.UserRepository
	logger internal.Logger
}

func NewLocalAuthProvider(users storage.UserRepository, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{users: users, logger: logger}
}

func (a *LocalAuthProvider) Authenticate(ctx context.Context, username, password string) (*internal.User, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if errors.Is(err, internal.ErrNotFound) {
		a.logger.Warnf("login for unknown user: %s", username)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		a.logger.Warnf("invalid password for user: %s", username)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

var _ Provider = (*LocalAuthProvider)(nil)
