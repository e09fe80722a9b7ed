package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/crudclinic/clinic/internal/platform/apperr"
	"github.com/crudclinic/clinic/internal/platform/db"
	"github.com/crudclinic/clinic/pkg/pagination"
)

type userRepoPG struct {
	pool db.Querier
}

func NewUserRepo(pool db.Querier) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

const userCols = `id, username, password_hash, role`

func (r *userRepoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, user *User) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id`,
		user.Username, user.PasswordHash, user.Role,
	).Scan(&user.ID)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("username already exists")
	}
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, db.Translate(err, "user")
	}
	return u, nil
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, db.Translate(err, "user")
	}
	return u, nil
}

func (r *userRepoPG) List(ctx context.Context, page pagination.Params) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM users ORDER BY id`+page.SQL())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
