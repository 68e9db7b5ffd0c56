// Package testinfra starts throwaway PostgreSQL servers for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "pulse"

	// ConnEnvVar points integration tests at an existing server instead of a container.
	ConnEnvVar = "PULSE_TEST_CONN"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartPostgres runs a PostgreSQL container and waits until it accepts connections.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}

var (
	containerOnce sync.Once
	containerConn string
	containerErr  error
)

// RequireDatabase returns a connection string for integration tests.
// It skips the test under -short, and when neither $PULSE_TEST_CONN is set
// nor Docker is available. The container is shared by the whole test binary.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if connString := os.Getenv(ConnEnvVar); connString != "" {
		return connString
	}

	containerOnce.Do(func() {
		ctr, err := StartPostgres(context.Background())
		if err != nil {
			containerErr = err
			return
		}
		containerConn = ctr.ConnString
	})
	if containerErr != nil {
		t.Skipf("%s not set and Docker unavailable: %v", ConnEnvVar, containerErr)
	}
	return containerConn
}
