package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

func rdsConfig() *pgdash.ConnectionConfig {
	return &pgdash.ConnectionConfig{
		Host:       "olist.abc123.eu-west-1.rds.amazonaws.com",
		Port:       5432,
		Username:   "etl",
		AWSRegion:  "eu-west-1",
		AuthMethod: pgdash.AuthMethodAWSIAM,
	}
}

func TestNewAWSIAMTokenProvider_Validation(t *testing.T) {
	_, err := NewAWSIAMTokenProvider(&pgdash.ConnectionConfig{Port: 5432})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$PG_HOST")
	assert.Contains(t, err.Error(), "$AWS_REGION")
	assert.Contains(t, err.Error(), "$PG_USER")

	cfg := rdsConfig()
	cfg.AWSRegion = ""
	_, err = NewAWSIAMTokenProvider(cfg)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "$PG_HOST")
	assert.Contains(t, err.Error(), "$AWS_REGION")
}

func TestAWSIAMTokenProvider_GetToken(t *testing.T) {
	p, err := NewAWSIAMTokenProvider(rdsConfig())
	require.NoError(t, err)
	p.credentials = func(_ context.Context, region string) (aws.CredentialsProvider, error) {
		assert.Equal(t, "eu-west-1", region)
		return credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""), nil
	}

	before := time.Now()
	token, expiresOn, err := p.GetToken(context.Background())
	require.NoError(t, err)

	assert.Contains(t, token, "olist.abc123.eu-west-1.rds.amazonaws.com:5432")
	assert.Contains(t, token, "Action=connect")
	assert.Contains(t, token, "DBUser=etl")
	assert.Contains(t, token, "X-Amz-Signature=")
	assert.WithinDuration(t, before.Add(rdsTokenLifetime), expiresOn, time.Minute)
	assert.Equal(t, "AWS IAM (etl@olist.abc123.eu-west-1.rds.amazonaws.com:5432, eu-west-1)", p.String())
}

func TestAWSIAMTokenProvider_CredentialsError(t *testing.T) {
	p, err := NewAWSIAMTokenProvider(rdsConfig())
	require.NoError(t, err)
	boom := errors.New("no credential source")
	p.credentials = func(context.Context, string) (aws.CredentialsProvider, error) { return nil, boom }

	_, _, err = p.GetToken(context.Background())
	assert.ErrorIs(t, err, boom)
}
