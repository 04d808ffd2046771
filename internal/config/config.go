package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Username           string `yaml:"username"`
	Database           string `yaml:"database"`
	ManagementDatabase string `yaml:"management_database,omitempty"`
	SSLMode            string `yaml:"sslmode"`
	AuthMethod         string `yaml:"auth_method,omitempty"`
	AzureTenantID      string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID      string `yaml:"azure_client_id,omitempty"`
	AWSRegion          string `yaml:"aws_region,omitempty"`
	GoogleInstance     string `yaml:"google_instance,omitempty"`
}

type PathsConfig struct {
	Datasets string `yaml:"datasets"`
	Charts   string `yaml:"charts"`
	Exports  string `yaml:"exports"`
}

// ReportConfig overrides report limits. Zero values keep the defaults.
type ReportConfig struct {
	TopStates      int `yaml:"top_states,omitempty"`
	TopCities      int `yaml:"top_cities,omitempty"`
	TopDelayStates int `yaml:"top_delay_states,omitempty"`
	ScatterSample  int `yaml:"scatter_sample,omitempty"`
	ExportRows     int `yaml:"export_rows,omitempty"`
	PreviewRows    int `yaml:"preview_rows,omitempty"`
	HistogramBins  int `yaml:"histogram_bins,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Store      string           `yaml:"store"`
	SQLitePath string           `yaml:"sqlite_path"`
	Paths      PathsConfig      `yaml:"paths"`
	Report     ReportConfig     `yaml:"report"`
	Timeout    string           `yaml:"timeout"`
}

const ConfigFileName = "pgdash.yaml"

// Load reads pgdash.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	return &cfg, nil
}

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c == nil || c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}
