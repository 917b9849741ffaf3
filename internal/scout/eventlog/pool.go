package eventlog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolAdapter wraps *pgxpool.Pool to satisfy DB. Kept separate from Store
// so tests can construct a Store against a hand-rolled fake DB instead of
// a live connection pool.
type PoolAdapter struct {
	Pool *pgxpool.Pool
}

func (p PoolAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconnCommandTag, error) {
	tag, err := p.Pool.Exec(ctx, sql, args...)
	return tag, err
}

func (p PoolAdapter) Query(ctx context.Context, sql string, args ...any) (rows, error) {
	r, err := p.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (p PoolAdapter) QueryRow(ctx context.Context, sql string, args ...any) row {
	return p.Pool.QueryRow(ctx, sql, args...)
}

func (p PoolAdapter) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return TxAdapter{Tx: tx}, nil
}

// TxAdapter wraps pgx.Tx to satisfy Tx.
type TxAdapter struct {
	Tx pgx.Tx
}

func (t TxAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconnCommandTag, error) {
	tag, err := t.Tx.Exec(ctx, sql, args...)
	return tag, err
}

func (t TxAdapter) Query(ctx context.Context, sql string, args ...any) (rows, error) {
	r, err := t.Tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (t TxAdapter) QueryRow(ctx context.Context, sql string, args ...any) row {
	return t.Tx.QueryRow(ctx, sql, args...)
}

func (t TxAdapter) Commit(ctx context.Context) error   { return t.Tx.Commit(ctx) }
func (t TxAdapter) Rollback(ctx context.Context) error { return t.Tx.Rollback(ctx) }

// Open builds a connection pool and wraps it in a PoolAdapter.
func Open(ctx context.Context, dsn string) (PoolAdapter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return PoolAdapter{}, err
	}
	return PoolAdapter{Pool: pool}, nil
}
