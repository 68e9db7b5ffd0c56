package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pulseload/internal/retry"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// Pool sizing. A run holds one connection for its transaction; the second
// covers schema bootstrap and pings.
const (
	DefaultMaxConns        = 2
	DefaultMinConns        = 1
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger pulse.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("postgres %s: %s", strings.ToLower(notice.Severity), notice.Message)
	}
}

// openPool parses connStr, opens a pool and pings it.
func openPool(ctx context.Context, cfg *pulse.ConnectionConfig, connStr string, logger pulse.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %v: %w", err, pulse.ErrInvalidConfig)
	}
	configurePool(poolConfig, logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}
	return pool, nil
}

// StandardConnector authenticates with username and password and retries
// transient failures.
type StandardConnector struct {
	config        *pulse.ConnectionConfig
	logger        pulse.Logger
	dialer        *retry.Dialer
}

// NewStandardConnector creates a StandardConnector. Panics if config or logger is nil.
func NewStandardConnector(config *pulse.ConnectionConfig, logger pulse.Logger) *StandardConnector {
	if config == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StandardConnector{
		config:        config,
		logger:        logger,
		dialer:        retry.PostgresDialer(logger),
	}
}

func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.dialer.Dial(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, c.config, connStr, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnector returns the Connector matching config.AuthMethod.
func NewConnector(config *pulse.ConnectionConfig, logger pulse.Logger) (pulse.Connector, error) {
	switch config.AuthMethod {
	case pulse.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case pulse.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case pulse.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case pulse.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("auth method %v: %w", config.AuthMethod, pulse.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError adds a hint for common connection failures.
// The result always matches pulse.ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf("connection refused to %s (is PostgreSQL running? try: pg_isready -h %s -p %d)", addr, host, port)
	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		hint = fmt.Sprintf("cannot resolve host %q", host)
	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf("password authentication failed for database %q (check $PGPASSWORD or the connection string)", database)
	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf("database %q does not exist (create it with: createdb %s)", database, database)
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf("connection timed out to %s", addr)
	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = "SSL/TLS connection error (check --sslmode)"
	case strings.Contains(errStr, "too many connections"):
		hint = fmt.Sprintf("too many connections to database %q", database)
	default:
		hint = "failed to connect to database"
	}
	return fmt.Errorf("%s: %w: %w", hint, pulse.ErrConnectionFailed, err)
}

func newAWSConnector(config *pulse.ConnectionConfig, logger pulse.Logger) (pulse.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)
	provider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, err
	}
	return NewTokenConnector(config, provider, "AWS IAM", logger), nil
}

func newGoogleConnector(config *pulse.ConnectionConfig, logger pulse.Logger) (pulse.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", pulse.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Cloud SQL IAM auth requires a username: %w", pulse.ErrInvalidConfig)
	}
	return NewGoogleCloudSQLConnector(config, logger), nil
}

// newAzureConnector uses a service principal when tenant, client and secret
// are all set, and the default credential chain otherwise.
func newAzureConnector(config *pulse.ConnectionConfig, logger pulse.Logger) (pulse.Connector, error) {
	var provider TokenProvider
	var err error
	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		provider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
	} else {
		provider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, err
	}
	return NewTokenConnector(config, provider, "Azure", logger), nil
}

var _ pulse.Connector = (*StandardConnector)(nil)
