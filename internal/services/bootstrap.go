package services

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/pgdash/internal/db"
	"github.com/vvka-141/pgdash/internal/db/manager"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// ConnectorFactory builds a connector for the given connection parameters.
type ConnectorFactory func(*pgdash.ConnectionConfig, pgdash.Logger) (pgdash.Connector, error)

type managementDBConnFunc func(ctx context.Context, connConfig *pgdash.ConnectionConfig, dbName string) (pgdash.DBConnection, func(), error)

// Bootstrapper creates the target database through the maintenance database.
type Bootstrapper struct {
	connectorFactory ConnectorFactory
	dbManager        pgdash.DatabaseManager
	logger           pgdash.Logger
	mgmtConnector    managementDBConnFunc
}

// NewBootstrapper creates a Bootstrapper. Panics on nil dependencies.
func NewBootstrapper(connectorFactory ConnectorFactory, dbManager pgdash.DatabaseManager, logger pgdash.Logger) *Bootstrapper {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if dbManager == nil {
		panic("dbManager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	b := &Bootstrapper{
		connectorFactory: connectorFactory,
		dbManager:        dbManager,
		logger:           logger,
	}
	b.mgmtConnector = b.defaultMgmtConnector
	return b
}

func (b *Bootstrapper) defaultMgmtConnector(ctx context.Context, connConfig *pgdash.ConnectionConfig, dbName string) (pgdash.DBConnection, func(), error) {
	mgmtConfig := *connConfig
	mgmtConfig.Database = dbName

	connector, err := b.connectorFactory(&mgmtConfig, b.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connector: %w", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		closeConnector(connector)
		return nil, nil, fmt.Errorf("failed to connect to maintenance database %q: %w", dbName, err)
	}

	cleanup := func() {
		pool.Close()
		closeConnector(connector)
	}
	return db.NewPoolAdapter(pool), cleanup, nil
}

// EnsureDatabase creates cfg.Connection.Database unless it already exists.
// It reports whether the database was created. Losing a creation race to
// another client counts as success.
func (b *Bootstrapper) EnsureDatabase(ctx context.Context, cfg *pgdash.RunConfig) (bool, error) {
	target := cfg.Connection.Database
	maintenance := cfg.MaintenanceDatabase
	if maintenance == "" {
		maintenance = pgdash.DefaultManagementDB
	}

	b.logger.Verbose("Checking database '%s' via '%s'", target, maintenance)

	conn, cleanup, err := b.mgmtConnector(ctx, &cfg.Connection, maintenance)
	if err != nil {
		return false, err
	}
	defer cleanup()

	exists, err := b.dbManager.Exists(ctx, conn, target)
	if err != nil {
		return false, err
	}
	if exists {
		b.logger.Info("Database '%s' already exists", target)
		return false, nil
	}

	if err := b.dbManager.Create(ctx, conn, target); err != nil {
		if manager.IsDuplicateDatabase(err) {
			b.logger.Info("Database '%s' already exists", target)
			return false, nil
		}
		return false, err
	}

	b.logger.Info("✓ Created database '%s'", target)
	return true, nil
}

// closeConnector releases connectors that hold resources beyond the pool,
// such as the Cloud SQL dialer.
func closeConnector(c pgdash.Connector) {
	if closer, ok := c.(io.Closer); ok {
		closer.Close()
	}
}
