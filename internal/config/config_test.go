package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `connection:
  host: myhost
  port: 5433
  username: myuser
  database: olist
  sslmode: require
  auth_method: aws
  aws_region: eu-west-1

store: sqlite
sqlite_path: /tmp/olist.sqlite

paths:
  datasets: ./data
  charts: ./out/charts
  exports: ./out/exports

report:
  top_states: 5
  histogram_bins: 30

timeout: 10m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "myhost", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "myuser", cfg.Connection.Username)
	assert.Equal(t, "olist", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "aws", cfg.Connection.AuthMethod)
	assert.Equal(t, "eu-west-1", cfg.Connection.AWSRegion)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "/tmp/olist.sqlite", cfg.SQLitePath)
	assert.Equal(t, "./data", cfg.Paths.Datasets)
	assert.Equal(t, "./out/charts", cfg.Paths.Charts)
	assert.Equal(t, "./out/exports", cfg.Paths.Exports)
	assert.Equal(t, 5, cfg.Report.TopStates)
	assert.Equal(t, 0, cfg.Report.TopCities)
	assert.Equal(t, 30, cfg.Report.HistogramBins)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, timeout)
}

func TestLoad_MinimalYAML(t *testing.T) {
	dir := t.TempDir()
	content := `paths:
  datasets: ./datasets
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.Connection.Host)
	assert.Equal(t, 0, cfg.Connection.Port)
	assert.Equal(t, "./datasets", cfg.Paths.Datasets)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(""), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, ProjectConfig{}, *cfg)
}

func TestTimeoutDuration(t *testing.T) {
	var nilCfg *ProjectConfig
	d, err := nilCfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = (&ProjectConfig{Timeout: "soon"}).TimeoutDuration()
	assert.Error(t, err)
}
