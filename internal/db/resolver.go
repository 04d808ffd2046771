package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/pgdash/internal/config"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// EnvVars holds the connection-related environment.
//
// PG_* are the names the Olist scripts used and win over the libpq PG* names.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PG_HOST string
	PG_PORT string
	PG_DB   string
	PG_USER string
	PG_PASS string

	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	PGDASH_CONNECTION_STRING string
	DATABASE_URL             string // Heroku/Rails convention

	PGDASH_AUTH_METHOD     string
	AWS_REGION             string
	PGDASH_GOOGLE_INSTANCE string

	// Azure SDK standard names
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PG_HOST:                  os.Getenv("PG_HOST"),
		PG_PORT:                  os.Getenv("PG_PORT"),
		PG_DB:                    os.Getenv("PG_DB"),
		PG_USER:                  os.Getenv("PG_USER"),
		PG_PASS:                  os.Getenv("PG_PASS"),
		PGHOST:                   os.Getenv("PGHOST"),
		PGPORT:                   os.Getenv("PGPORT"),
		PGUSER:                   os.Getenv("PGUSER"),
		PGPASSWORD:               os.Getenv("PGPASSWORD"),
		PGDATABASE:               os.Getenv("PGDATABASE"),
		PGSSLMODE:                os.Getenv("PGSSLMODE"),
		PGDASH_CONNECTION_STRING: os.Getenv("PGDASH_CONNECTION_STRING"),
		DATABASE_URL:             os.Getenv("DATABASE_URL"),
		PGDASH_AUTH_METHOD:       os.Getenv("PGDASH_AUTH_METHOD"),
		AWS_REGION:               os.Getenv("AWS_REGION"),
		PGDASH_GOOGLE_INSTANCE:   os.Getenv("PGDASH_GOOGLE_INSTANCE"),
		AZURE_TENANT_ID:          os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:          os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:      os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// connectionString returns the first non-empty full connection string.
func (e *EnvVars) connectionString() string {
	if e.PGDASH_CONNECTION_STRING != "" {
		return e.PGDASH_CONNECTION_STRING
	}
	return e.DATABASE_URL
}

// hasGranularServer reports whether any server-identifying PG_* or PG* variable is set.
// Database names are excluded: they may override the database of a connection string.
func (e *EnvVars) hasGranularServer() bool {
	return e.PG_HOST != "" || e.PG_PORT != "" || e.PG_USER != "" ||
		e.PGHOST != "" || e.PGPORT != "" || e.PGUSER != ""
}

// ResolveConnectionParams resolves connection parameters with this precedence:
//
//  1. PG_HOST, PG_PORT, PG_DB, PG_USER, PG_PASS
//  2. libpq PGHOST, PGPORT, PGDATABASE, PGUSER, PGPASSWORD, PGSSLMODE
//  3. PGDASH_CONNECTION_STRING or DATABASE_URL, used only when no server
//     variable from 1 or 2 is set
//  4. pgdash.yaml connection section
//  5. Defaults (localhost:5432, prefer SSL)
//
// The auth method comes from PGDASH_AUTH_METHOD, then pgdash.yaml; Azure
// credentials in the environment select Azure Entra ID when neither is set.
//
// Returns the connection config and the maintenance database used for
// CREATE DATABASE.
func ResolveConnectionParams(envVars *EnvVars, projectConfig *config.ProjectConfig) (*pgdash.ConnectionConfig, string, error) {
	if envVars == nil {
		envVars = &EnvVars{}
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	var cfg *pgdash.ConnectionConfig
	var err error

	if connStr := envVars.connectionString(); connStr != "" && !envVars.hasGranularServer() {
		cfg, err = resolveFromConnectionString(connStr, envVars, pc)
	} else {
		cfg, err = resolveFromGranularParams(envVars, pc)
	}
	if err != nil {
		return nil, "", err
	}

	if err := applyAuth(cfg, envVars, pc); err != nil {
		return nil, "", err
	}

	maintenanceDB := pc.ManagementDatabase
	if maintenanceDB == "" {
		maintenanceDB = pgdash.DefaultManagementDB
	}

	return cfg, maintenanceDB, nil
}

// applyAuth selects the auth method and attaches cloud settings.
func applyAuth(cfg *pgdash.ConnectionConfig, env *EnvVars, pc config.ConnectionConfig) error {
	method := firstNonEmpty(env.PGDASH_AUTH_METHOD, pc.AuthMethod)
	if method == "" && (env.AZURE_TENANT_ID != "" || env.AZURE_CLIENT_ID != "") {
		method = "azure"
	}

	auth, err := pgdash.ParseAuthMethod(method)
	if err != nil {
		return err
	}
	cfg.AuthMethod = auth

	cfg.AWSRegion = firstNonEmpty(env.AWS_REGION, pc.AWSRegion)
	cfg.GoogleInstance = firstNonEmpty(env.PGDASH_GOOGLE_INSTANCE, pc.GoogleInstance)
	if auth == pgdash.AuthMethodAzureEntraID {
		cfg.AzureTenantID = firstNonEmpty(env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(env.AZURE_CLIENT_ID, pc.AzureClientID)
		// secret only from the environment
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	return nil
}

// resolveFromConnectionString parses a connection string.
//
// PG_DB/PGDATABASE override its database and PGSSLMODE fills a missing sslmode,
// following libpq where environment variables serve as fallbacks. A string
// without a database falls back to pgdash.yaml.
func resolveFromConnectionString(connStr string, envVars *EnvVars, pc config.ConnectionConfig) (*pgdash.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", pgdash.ErrInvalidConfig, err)
	}

	if db := firstNonEmpty(envVars.PG_DB, envVars.PGDATABASE); db != "" {
		cfg.Database = db
	}
	if cfg.Database == "" {
		cfg.Database = pc.Database
	}
	if cfg.Password == "" {
		cfg.Password = firstNonEmpty(envVars.PG_PASS, envVars.PGPASSWORD)
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}
	return cfg, nil
}

// resolveFromGranularParams builds the config field by field.
func resolveFromGranularParams(envVars *EnvVars, pc config.ConnectionConfig) (*pgdash.ConnectionConfig, error) {
	cfg := &pgdash.ConnectionConfig{
		AuthMethod:       pgdash.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(envVars.PG_HOST, envVars.PGHOST, pc.Host, "localhost")

	switch {
	case envVars.PG_PORT != "":
		port, err := parsePort("PG_PORT", envVars.PG_PORT)
		if err != nil {
			return nil, err
		}
		cfg.Port = port
	case envVars.PGPORT != "":
		port, err := parsePort("PGPORT", envVars.PGPORT)
		if err != nil {
			return nil, err
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = 5432
	}

	// Username falls back to the current OS user like libpq.
	cfg.Username = firstNonEmpty(envVars.PG_USER, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = firstNonEmpty(envVars.PG_PASS, envVars.PGPASSWORD)
	cfg.Database = firstNonEmpty(envVars.PG_DB, envVars.PGDATABASE, pc.Database)
	cfg.SSLMode = firstNonEmpty(envVars.PGSSLMODE, pc.SSLMode, "prefer")

	return cfg, nil
}

func parsePort(name, value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid $%s value '%s': must be an integer: %w", name, value, pgdash.ErrInvalidConfig)
	}
	return port, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
