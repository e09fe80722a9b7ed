package admin

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/crudclinic/clinic/internal/platform/apperr"
	"github.com/crudclinic/clinic/internal/platform/validate"
	"github.com/crudclinic/clinic/pkg/pagination"
)

var errInvalidCredentials = apperr.Unauthorized("invalid username or password")

type Service struct {
	users UserRepository
	cost  int
	// dummyHash is compared against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewService(users UserRepository, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	return &Service{users: users, cost: bcryptCost, dummyHash: dummy}
}

// Register creates a user with a bcrypt hash of the password.
func (s *Service) Register(ctx context.Context, cred Credentials) (*User, error) {
	cred.normalize()
	if err := validate.Struct(&cred); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsername(ctx, cred.Username); err == nil {
		return nil, apperr.Conflict("username already exists")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cred.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.BadRequest("password is too long")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{Username: cred.Username, PasswordHash: string(hash), Role: cred.Role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the password against the stored hash. Unknown users and
// wrong passwords fail with the same error.
func (s *Service) Login(ctx context.Context, cred Credentials) (*User, error) {
	cred.normalize()
	if cred.Username == "" || cred.Password == "" {
		return nil, apperr.BadRequest("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, cred.Username)
	if errors.Is(err, apperr.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(cred.Password))
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cred.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	return user, nil
}

// EnsureUser registers the user unless the username already exists. It
// reports whether a user was created.
func (s *Service) EnsureUser(ctx context.Context, cred Credentials) (bool, error) {
	_, err := s.Register(ctx, cred)
	if errors.Is(err, apperr.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, page pagination.Params) ([]*User, error) {
	return s.users.List(ctx, page)
}
