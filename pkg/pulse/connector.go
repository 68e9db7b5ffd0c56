package pulse

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector establishes a PostgreSQL connection pool. Implementations
// differ by authentication method (password, cloud IAM tokens).
type Connector interface {
	// Connect returns a pool that the caller closes when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
