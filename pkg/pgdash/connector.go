package pgdash

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector opens a pool to the Postgres store. One implementation exists
// per AuthMethod; cloud variants mint a fresh IAM token for each new physical
// connection. Callers close the returned pool.
type Connector interface {
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
