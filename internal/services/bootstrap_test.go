package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgdash/internal/logging"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

type mockDatabaseManager struct {
	existsResult bool
	existsErr    error
	createErr    error
	created      []string
}

func (m *mockDatabaseManager) Exists(_ context.Context, _ pgdash.DBConnection, _ string) (bool, error) {
	return m.existsResult, m.existsErr
}

func (m *mockDatabaseManager) Create(_ context.Context, _ pgdash.DBConnection, dbName string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, dbName)
	return nil
}

func failingConnectorFactory(*pgdash.ConnectionConfig, pgdash.Logger) (pgdash.Connector, error) {
	return nil, errors.New("no connector in unit tests")
}

type mgmtRecorder struct {
	dbName   string
	released bool
	err      error
}

func (r *mgmtRecorder) connect(_ context.Context, _ *pgdash.ConnectionConfig, dbName string) (pgdash.DBConnection, func(), error) {
	r.dbName = dbName
	if r.err != nil {
		return nil, nil, r.err
	}
	return nil, func() { r.released = true }, nil
}

func newTestBootstrapper(dbm *mockDatabaseManager, rec *mgmtRecorder) *Bootstrapper {
	b := NewBootstrapper(failingConnectorFactory, dbm, logging.NewNullLogger())
	b.mgmtConnector = rec.connect
	return b
}

func postgresRunConfig() *pgdash.RunConfig {
	return &pgdash.RunConfig{
		Store:      pgdash.DialectPostgres,
		Connection: pgdash.ConnectionConfig{Host: "localhost", Port: 5432, Database: "olist"},
	}
}

func TestEnsureDatabase(t *testing.T) {
	tests := []struct {
		name        string
		dbm         *mockDatabaseManager
		wantCreated bool
		wantErr     string
	}{
		{name: "creates missing database", dbm: &mockDatabaseManager{}, wantCreated: true},
		{name: "existing database is left alone", dbm: &mockDatabaseManager{existsResult: true}},
		{name: "lost creation race is success", dbm: &mockDatabaseManager{createErr: &pgconn.PgError{Code: "42P04", Message: "database \"olist\" already exists"}}},
		{name: "create failure", dbm: &mockDatabaseManager{createErr: errors.New("permission denied to create database")}, wantErr: "permission denied"},
		{name: "existence check failure", dbm: &mockDatabaseManager{existsErr: errors.New("relation pg_database does not exist")}, wantErr: "pg_database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &mgmtRecorder{}
			created, err := newTestBootstrapper(tt.dbm, rec).EnsureDatabase(context.Background(), postgresRunConfig())

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, pgdash.DefaultManagementDB, rec.dbName)
			assert.True(t, rec.released, "maintenance connection must be released")
			if tt.wantCreated {
				assert.Equal(t, []string{"olist"}, tt.dbm.created)
			}
		})
	}
}

func TestEnsureDatabase_MaintenanceDatabase(t *testing.T) {
	rec := &mgmtRecorder{}
	cfg := postgresRunConfig()
	cfg.MaintenanceDatabase = "template1"

	_, err := newTestBootstrapper(&mockDatabaseManager{existsResult: true}, rec).EnsureDatabase(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "template1", rec.dbName)
}

func TestEnsureDatabase_ConnectFailure(t *testing.T) {
	rec := &mgmtRecorder{err: errors.New("connection refused")}

	created, err := newTestBootstrapper(&mockDatabaseManager{}, rec).EnsureDatabase(context.Background(), postgresRunConfig())
	assert.False(t, created)
	assert.ErrorContains(t, err, "connection refused")
}

func TestDefaultMgmtConnector_FactoryError(t *testing.T) {
	b := NewBootstrapper(failingConnectorFactory, &mockDatabaseManager{}, logging.NewNullLogger())

	_, _, err := b.defaultMgmtConnector(context.Background(), &postgresRunConfig().Connection, "postgres")
	assert.ErrorContains(t, err, "failed to create connector")
}

func TestNewBootstrapper_PanicsOnNil(t *testing.T) {
	logger := logging.NewNullLogger()
	assert.Panics(t, func() { NewBootstrapper(nil, &mockDatabaseManager{}, logger) })
	assert.Panics(t, func() { NewBootstrapper(failingConnectorFactory, nil, logger) })
	assert.Panics(t, func() { NewBootstrapper(failingConnectorFactory, &mockDatabaseManager{}, nil) })
}
