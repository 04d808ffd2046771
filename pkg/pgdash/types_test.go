package pgdash_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

func validRunConfig() pgdash.RunConfig {
	return pgdash.RunConfig{
		Connection: pgdash.ConnectionConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "olist",
		},
		MaintenanceDatabase: "postgres",
		Store:               pgdash.DialectPostgres,
		DatasetsDir:         "datasets",
		ChartsDir:           "charts",
		ExportsDir:          "exports",
		Report:              pgdash.DefaultReportSettings(),
	}
}

func TestRunConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *pgdash.RunConfig)
		wantErr bool
	}{
		{"valid postgres", func(c *pgdash.RunConfig) {}, false},
		{"valid sqlite without database", func(c *pgdash.RunConfig) {
			c.Store = pgdash.DialectSQLite
			c.SQLitePath = "x.sqlite"
			c.Connection = pgdash.ConnectionConfig{}
		}, false},
		{"unknown store", func(c *pgdash.RunConfig) { c.Store = "mysql" }, true},
		{"missing database", func(c *pgdash.RunConfig) { c.Connection.Database = "" }, true},
		{"bad port", func(c *pgdash.RunConfig) { c.Connection.Port = 70000 }, true},
		{"sqlite without path", func(c *pgdash.RunConfig) {
			c.Store = pgdash.DialectSQLite
			c.SQLitePath = ""
		}, true},
		{"missing datasets dir", func(c *pgdash.RunConfig) { c.DatasetsDir = "" }, true},
		{"negative timeout", func(c *pgdash.RunConfig) { c.Timeout = -time.Second }, true},
		{"zero top states", func(c *pgdash.RunConfig) { c.Report.TopStates = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRunConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, pgdash.ErrInvalidConfig))
		})
	}
}

func TestRunConfig_Validate_ReportsEveryProblem(t *testing.T) {
	cfg := pgdash.RunConfig{Store: pgdash.DialectSQLite, Report: pgdash.DefaultReportSettings()}
	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "SQLitePath")
	assert.Contains(t, msg, "DatasetsDir")
	assert.Contains(t, msg, "ChartsDir")
	assert.Contains(t, msg, "ExportsDir")
}

func TestParseAuthMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    pgdash.AuthMethod
		wantErr bool
	}{
		{"", pgdash.AuthMethodStandard, false},
		{"standard", pgdash.AuthMethodStandard, false},
		{"AWS", pgdash.AuthMethodAWSIAM, false},
		{"azure", pgdash.AuthMethodAzureEntraID, false},
		{" google ", pgdash.AuthMethodGoogleIAM, false},
		{"kerberos", pgdash.AuthMethodStandard, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := pgdash.ParseAuthMethod(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, pgdash.ErrUnsupportedAuthMethod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthMethod_String(t *testing.T) {
	assert.Equal(t, "AWS IAM", pgdash.AuthMethodAWSIAM.String())
	assert.Equal(t, "Unknown(42)", pgdash.AuthMethod(42).String())
	assert.False(t, pgdash.AuthMethod(42).IsValid())
}

func TestLoadReport_Partitions(t *testing.T) {
	r := pgdash.LoadReport{Outcomes: []pgdash.LoadOutcome{
		{Table: "a", RowCount: 3},
		{Table: "b", Err: errors.New("bad")},
		{Table: "c", RowCount: 1},
	}}
	assert.Len(t, r.Succeeded(), 2)
	require.Len(t, r.Failed(), 1)
	assert.Equal(t, "b", r.Failed()[0].Table)
}

func TestReportSummary_Produced(t *testing.T) {
	s := pgdash.ReportSummary{Outcomes: []pgdash.ArtifactOutcome{
		{Name: "pie"},
		{Name: "bar", Skipped: true},
		{Name: "hbar", Err: errors.New("boom")},
	}}
	assert.Equal(t, 1, s.Produced())
	assert.Len(t, s.Failed(), 1)
}
