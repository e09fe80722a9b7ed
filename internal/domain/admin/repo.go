package admin

import (
	"context"

	"github.com/crudclinic/clinic/pkg/pagination"
)

// UserRepository defines the persistence interface for users. Users are
// never updated or deleted.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, page pagination.Params) ([]*User, error)
}
