package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// rdsTokenLifetime is how long RDS accepts an IAM auth token.
const rdsTokenLifetime = 15 * time.Minute

// AWSIAMTokenProvider builds RDS IAM auth tokens from the default AWS
// credential chain.
type AWSIAMTokenProvider struct {
	endpoint string
	region   string
	username string
}

// NewAWSIAMTokenProvider validates its inputs; endpoint is host:port.
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	switch {
	case endpoint == "" || endpoint == ":0":
		return nil, fmt.Errorf("AWS IAM auth requires the RDS endpoint: %w", pulse.ErrInvalidConfig)
	case region == "":
		return nil, fmt.Errorf("AWS IAM auth requires a region (--aws-region or $AWS_REGION): %w", pulse.ErrInvalidConfig)
	case username == "":
		return nil, fmt.Errorf("AWS IAM auth requires a database username: %w", pulse.ErrInvalidConfig)
	}
	return &AWSIAMTokenProvider{endpoint: endpoint, region: region, username: username}, nil
}

func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}
	return token, time.Now().Add(rdsTokenLifetime), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAMTokenProvider(endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}
