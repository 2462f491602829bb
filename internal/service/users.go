package service

import (
	"context"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/brianmay/penguin-nurse/internal/storage"
)

// UserService is account management. Every method except CreateInitial
// needs an admin actor.
type UserService struct {
	repo storage.UserRepository
}

func NewUserService(repo storage.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func requireAdmin(actor *internal.User) error {
	if actor == nil {
		return internal.ErrUnauthorized
	}
	if !actor.IsAdmin {
		return internal.ErrNotAdmin
	}
	return nil
}

func checkPassword(errs ValidationErrors, password, confirm string) {
	if password != confirm {
		errs["password_confirm"] = "does not match password"
	}
}

func (s *UserService) List(ctx context.Context, actor *internal.User) ([]internal.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, actor *internal.User, id int64) (*internal.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, actor *internal.User, n *internal.NewUser) (*internal.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.CreateInitial(ctx, n)
}

// CreateInitial creates an account without an actor. It is used by the
// command line to bootstrap the first admin.
func (s *UserService) CreateInitial(ctx context.Context, n *internal.NewUser) (*internal.User, error) {
	if err := Validate(n); err != nil {
		return nil, err
	}
	errs := ValidationErrors{}
	checkPassword(errs, n.Password, n.PasswordConfirm)
	if n.Password == "" && n.OIDCID == nil {
		errs["password"] = "is required"
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	n.PasswordHash = ""
	if n.Password != "" {
		hash, err := auth.HashPassword(n.Password)
		if err != nil {
			return nil, err
		}
		n.PasswordHash = hash
	}
	return s.repo.CreateUser(ctx, n)
}

func (s *UserService) Update(ctx context.Context, actor *internal.User, id int64, c *internal.ChangeUser) (*internal.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	errs := ValidationErrors{}
	notBlank(errs, "username", c.Username)
	notBlank(errs, "full_name", c.FullName)
	c.PasswordHash = internal.NoChange[string]()
	if password, ok := c.Password.Get(); ok {
		confirm, _ := c.PasswordConfirm.Get()
		checkPassword(errs, password, confirm)
		if password == "" {
			errs["password"] = "must not be empty"
		}
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	if password, ok := c.Password.Get(); ok {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		c.PasswordHash = internal.Set(hash)
	}
	return s.repo.UpdateUser(ctx, id, c)
}

func (s *UserService) Delete(ctx context.Context, actor *internal.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.repo.DeleteUser(ctx, id)
}
