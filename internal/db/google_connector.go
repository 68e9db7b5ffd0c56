package db

import (
	"context"
	"fmt"
	"net"
	"sync"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// GoogleCloudSQLConnector connects through the Cloud SQL Go connector with
// IAM database authentication. Close releases the dialer after the pool
// returned by Connect has been closed.
type GoogleCloudSQLConnector struct {
	config *pulse.ConnectionConfig
	logger pulse.Logger

	mu     sync.Mutex
	dialer *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector creates a connector for config.GoogleInstance.
func NewGoogleCloudSQLConnector(config *pulse.ConnectionConfig, logger pulse.Logger) *GoogleCloudSQLConnector {
	if config == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &GoogleCloudSQLConnector{config: config, logger: logger}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}

	instance := c.config.GoogleInstance
	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable", instance, c.config.Username, c.config.Database)
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("failed to parse connection config: %v: %w", err, pulse.ErrInvalidConfig)
	}
	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}
	configurePool(poolConfig, c.logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		dialer.Close()
		return nil, wrapConnectionError(err, instance, 0, c.config.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		dialer.Close()
		return nil, wrapConnectionError(err, instance, 0, c.config.Database)
	}

	c.mu.Lock()
	c.dialer = dialer
	c.mu.Unlock()
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialer == nil {
		return nil
	}
	err := c.dialer.Close()
	c.dialer = nil
	return err
}

var _ pulse.Connector = (*GoogleCloudSQLConnector)(nil)
