package db

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// credentialsLoader resolves AWS credentials for a region.
type credentialsLoader func(ctx context.Context, region string) (aws.CredentialsProvider, error)

// AWSIAMTokenProvider signs RDS IAM auth tokens for the store endpoint.
type AWSIAMTokenProvider struct {
	endpoint    string // host:port
	region      string
	username    string
	credentials credentialsLoader
}

// NewAWSIAMTokenProvider builds a provider from the resolved connection.
// Host, AWSRegion and Username are required; credentials come from the default
// AWS chain (env, shared config, instance role).
func NewAWSIAMTokenProvider(cfg *pgdash.ConnectionConfig) (*AWSIAMTokenProvider, error) {
	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "host ($PG_HOST)")
	}
	if cfg.AWSRegion == "" {
		missing = append(missing, "region ($AWS_REGION or connection.aws_region)")
	}
	if cfg.Username == "" {
		missing = append(missing, "database user ($PG_USER)")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("AWS IAM auth requires %s", strings.Join(missing, ", "))
	}

	return &AWSIAMTokenProvider{
		endpoint:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		region:      cfg.AWSRegion,
		username:    cfg.Username,
		credentials: defaultAWSCredentials,
	}, nil
}

func defaultAWSCredentials(ctx context.Context, region string) (aws.CredentialsProvider, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return awsCfg.Credentials, nil
}

// GetToken returns a presigned "connect" token valid for 15 minutes.
func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	creds, err := p.credentials(ctx, p.region)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS credentials: %w", err)
	}

	issued := time.Now()
	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, creds)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign RDS auth token for %s@%s: %w", p.username, p.endpoint, err)
	}
	return token, issued.Add(rdsTokenLifetime), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWS IAM (%s@%s, %s)", p.username, p.endpoint, p.region)
}
