package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pulseload/internal/retry"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// TokenProvider acquires short-lived tokens used as the PostgreSQL password.
type TokenProvider interface {
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider without secrets.
	String() string
}

// tokenExpiryWarning is the remaining lifetime below which a token is reported.
const tokenExpiryWarning = 5 * time.Minute

// TokenConnector authenticates with a token fetched for every attempt.
type TokenConnector struct {
	config        *pulse.ConnectionConfig
	provider      TokenProvider
	providerName  string
	logger        pulse.Logger
	dialer        *retry.Dialer
}

// NewTokenConnector creates a TokenConnector. providerName appears in diagnostics.
// Panics if config, provider or logger is nil.
func NewTokenConnector(config *pulse.ConnectionConfig, provider TokenProvider, providerName string, logger pulse.Logger) *TokenConnector {
	if config == nil {
		panic("config cannot be nil")
	}
	if provider == nil {
		panic("provider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &TokenConnector{
		config:        config,
		provider:      provider,
		providerName:  providerName,
		logger:        logger,
		dialer:        retry.PostgresDialer(logger),
	}
}

func (c *TokenConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.dialer.Dial(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.provider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token from %s: %w", c.providerName, c.provider, err)
		}
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Warn("%s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		withToken := *c.config
		withToken.Password = token
		pool, err = openPool(ctx, c.config, BuildConnectionString(&withToken), c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

var _ pulse.Connector = (*TokenConnector)(nil)
