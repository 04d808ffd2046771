package pgdash

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunConfig contains all parameters needed for a pipeline run.
// It is built once by the CLI and passed explicitly to every stage.
type RunConfig struct {
	// Connection holds the resolved parameters for the TARGET database.
	Connection ConnectionConfig

	// MaintenanceDatabase is the database used for server-level operations
	// (existence check and CREATE DATABASE). Typically "postgres".
	MaintenanceDatabase string

	// Store selects the relational store backend.
	Store Dialect

	// SQLitePath is the database file used when Store is DialectSQLite.
	SQLitePath string

	// DatasetsDir is scanned for *.csv source files.
	DatasetsDir string

	// ChartsDir receives PNG and HTML chart artifacts.
	ChartsDir string

	// ExportsDir receives the spreadsheet report.
	ExportsDir string

	Report ReportSettings

	// Timeout bounds the whole run; zero means no limit.
	Timeout time.Duration

	Verbose bool

	// RunID identifies this run in logs and in the Postgres application_name.
	RunID uuid.UUID
}

// Validate checks if the RunConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *RunConfig) Validate() error {
	var errs []error

	if !c.Store.IsValid() {
		errs = append(errs, fmt.Errorf("store %q must be %q or %q: %w", c.Store, DialectPostgres, DialectSQLite, ErrInvalidConfig))
	}

	if c.Store == DialectPostgres {
		if c.Connection.Database == "" {
			errs = append(errs, fmt.Errorf("database name is required (set PG_DB or PGDATABASE): %w", ErrInvalidConfig))
		}
		if c.Connection.Port <= 0 || c.Connection.Port > 65535 {
			errs = append(errs, fmt.Errorf("port %d is out of range: %w", c.Connection.Port, ErrInvalidConfig))
		}
		if !c.Connection.AuthMethod.IsValid() {
			errs = append(errs, fmt.Errorf("auth method %v: %w", c.Connection.AuthMethod, ErrUnsupportedAuthMethod))
		}
	}

	if c.Store == DialectSQLite && c.SQLitePath == "" {
		errs = append(errs, fmt.Errorf("SQLitePath is required for the sqlite store: %w", ErrInvalidConfig))
	}

	if c.DatasetsDir == "" {
		errs = append(errs, fmt.Errorf("DatasetsDir is required: %w", ErrInvalidConfig))
	}
	if c.ChartsDir == "" {
		errs = append(errs, fmt.Errorf("ChartsDir is required: %w", ErrInvalidConfig))
	}
	if c.ExportsDir == "" {
		errs = append(errs, fmt.Errorf("ExportsDir is required: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if err := c.Report.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ReportSettings tunes the aggregation catalogue.
type ReportSettings struct {
	TopStates      int
	TopCities      int
	TopDelayStates int
	ScatterSample  int
	ExportRows     int
	PreviewRows    int
	HistogramBins  int
}

// DefaultReportSettings returns the settings used when nothing is configured.
func DefaultReportSettings() ReportSettings {
	return ReportSettings{
		TopStates:      DefaultTopStates,
		TopCities:      DefaultTopCities,
		TopDelayStates: DefaultTopDelayStates,
		ScatterSample:  DefaultScatterSample,
		ExportRows:     DefaultExportRows,
		PreviewRows:    DefaultPreviewRows,
		HistogramBins:  DefaultHistogramBins,
	}
}

// Validate rejects non-positive limits. PreviewRows may be zero.
func (s ReportSettings) Validate() error {
	var errs []error
	check := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("report.%s must be positive, got %d: %w", name, v, ErrInvalidConfig))
		}
	}
	check("top_states", s.TopStates)
	check("top_cities", s.TopCities)
	check("top_delay_states", s.TopDelayStates)
	check("scatter_sample", s.ScatterSample)
	check("export_rows", s.ExportRows)
	check("histogram_bins", s.HistogramBins)
	if s.PreviewRows < 0 {
		errs = append(errs, fmt.Errorf("report.preview_rows cannot be negative: %w", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string

	// Azure Entra ID parameters. If all three are provided, Service Principal
	// authentication is used; otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS RDS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps the configuration spelling (standard, aws, azure, google)
// to an AuthMethod. An empty string selects AuthMethodStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "gcp", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}
