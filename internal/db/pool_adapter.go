package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// NewPoolAdapter exposes a maintenance-database pool to the database
// manager, which only needs a catalog lookup and a session for CREATE DATABASE.
func NewPoolAdapter(pool *pgxpool.Pool) pgdash.DBConnection {
	if pool == nil {
		panic("pool cannot be nil")
	}
	return maintenancePool{pool: pool}
}

type maintenancePool struct {
	pool *pgxpool.Pool
}

func (m maintenancePool) QueryRow(ctx context.Context, sql string, args ...any) pgdash.Row {
	return m.pool.QueryRow(ctx, sql, args...)
}

func (m maintenancePool) Acquire(ctx context.Context) (pgdash.PooledConnection, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &maintenanceConn{conn: conn}, nil
}

// maintenanceConn tolerates repeated Release calls from deferred cleanups.
type maintenanceConn struct {
	conn *pgxpool.Conn
}

func (c *maintenanceConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c *maintenanceConn) Release() {
	if c.conn != nil {
		c.conn.Release()
		c.conn = nil
	}
}

var _ pgdash.DBConnection = maintenancePool{}
