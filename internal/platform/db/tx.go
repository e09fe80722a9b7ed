package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the statement surface shared by *pgxpool.Pool, *pgxpool.Conn
// and pgx.Tx. Repositories only depend on this.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Beginner starts a transaction. Begin on a pgx.Tx opens a savepoint.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type querierKey struct{}

// WithQuerier returns a context whose repository calls run on q.
func WithQuerier(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, querierKey{}, q)
}

// QuerierFrom returns the executor bound to ctx, or fallback when none is.
func QuerierFrom(ctx context.Context, fallback Querier) Querier {
	if ctx != nil {
		if q, ok := ctx.Value(querierKey{}).(Querier); ok && q != nil {
			return q
		}
	}
	return fallback
}

// Transactor runs functions inside a single transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TxRunner is the pgx-backed Transactor.
type TxRunner struct {
	b Beginner
}

func NewTxRunner(b Beginner) *TxRunner {
	return &TxRunner{b: b}
}

// InTx begins a transaction on the executor already bound to ctx when it can
// begin one (request connection or outer transaction), otherwise on the
// runner's own pool. fn receives a context bound to the transaction. The
// transaction commits when fn returns nil and rolls back on error or panic.
func (r *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	b := r.b
	if q, ok := QuerierFrom(ctx, nil).(Beginner); ok {
		b = q
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(WithQuerier(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
