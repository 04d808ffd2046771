package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/vvka-141/pgdash/internal/config"
	"github.com/vvka-141/pgdash/internal/db"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// Store selection environment variables.
const (
	envStore      = "PGDASH_STORE"
	envSQLitePath = "PGDASH_SQLITE_PATH"
)

// loadProjectConfig loads .env and pgdash.yaml from dir.
// Returns nil config if pgdash.yaml does not exist (not an error).
func loadProjectConfig(dir string) (*config.ProjectConfig, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	projectCfg, err := config.Load(dir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %v: %w", config.ConfigFileName, err, pgdash.ErrInvalidConfig)
	}
	return projectCfg, nil
}

// buildRunConfig resolves the whole run configuration from the environment
// and dir/pgdash.yaml, and validates it.
func buildRunConfig(dir string, verbose bool) (*pgdash.RunConfig, error) {
	projectCfg, err := loadProjectConfig(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := resolveRunConfig(db.LoadFromEnvironment(), os.Getenv, projectCfg)
	if err != nil {
		return nil, err
	}
	cfg.Verbose = verbose

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveRunConfig merges environment and project file over the defaults.
// Environment wins over pgdash.yaml.
func resolveRunConfig(env *db.EnvVars, getenv func(string) string, projectCfg *config.ProjectConfig) (*pgdash.RunConfig, error) {
	pc := projectCfg
	if pc == nil {
		pc = &config.ProjectConfig{}
	}

	cfg := &pgdash.RunConfig{
		Store:       pgdash.Dialect(strings.ToLower(firstNonEmpty(getenv(envStore), pc.Store, string(pgdash.DialectPostgres)))),
		SQLitePath:  firstNonEmpty(getenv(envSQLitePath), pc.SQLitePath, pgdash.DefaultSQLitePath),
		DatasetsDir: firstNonEmpty(pc.Paths.Datasets, pgdash.DefaultDatasetsDir),
		ChartsDir:   firstNonEmpty(pc.Paths.Charts, pgdash.DefaultChartsDir),
		ExportsDir:  firstNonEmpty(pc.Paths.Exports, pgdash.DefaultExportsDir),
		Report:      reportSettings(pc.Report),
		RunID:       uuid.New(),
	}

	timeout, err := pc.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", config.ConfigFileName, err, pgdash.ErrInvalidConfig)
	}
	cfg.Timeout = timeout

	if cfg.Store == pgdash.DialectPostgres {
		conn, maintenanceDB, err := db.ResolveConnectionParams(env, projectCfg)
		if err != nil {
			return nil, err
		}
		cfg.Connection = *conn
		cfg.MaintenanceDatabase = maintenanceDB
	}

	return cfg, nil
}

// reportSettings overlays the non-zero values of rc on the defaults.
func reportSettings(rc config.ReportConfig) pgdash.ReportSettings {
	s := pgdash.DefaultReportSettings()
	override := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	override(&s.TopStates, rc.TopStates)
	override(&s.TopCities, rc.TopCities)
	override(&s.TopDelayStates, rc.TopDelayStates)
	override(&s.ScatterSample, rc.ScatterSample)
	override(&s.ExportRows, rc.ExportRows)
	override(&s.PreviewRows, rc.PreviewRows)
	override(&s.HistogramBins, rc.HistogramBins)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
