// Package retry repeats store connection attempts that fail transiently.
//
//	err := retry.PostgresDialer(logger).Dial(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// Classifiers exist for PostgreSQL (pgconn error codes) and MySQL
// (server error numbers); both treat network-level failures as transient.
package retry
