package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/crudclinic/clinic/internal/platform/apperr"
)

// SQLSTATE codes the repositories react to.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

func IsUniqueViolation(err error) bool { return pgCode(err) == CodeUniqueViolation }

func IsForeignKeyViolation(err error) bool { return pgCode(err) == CodeForeignKeyViolation }

// Translate maps driver errors onto the application taxonomy. what names the
// record in the client-facing message ("patient", "username"). Foreign-key
// violations are left untouched; their meaning depends on the statement.
func Translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case IsNoRows(err):
		return apperr.NotFound("%s not found", what)
	case IsUniqueViolation(err):
		return apperr.Conflict("%s already exists", what)
	}
	return err
}

// ConstraintName returns the violated constraint of a PostgreSQL error, or "".
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
