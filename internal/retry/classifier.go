package retry

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// PostgreSQL error codes for transient conditions outside the fully transient classes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
)

// Classes 08 (connection), 53 (resources) and 57 (operator intervention) are always transient.
var pgTransientClasses = []string{"08", "53", "57"}

// MySQL server error numbers for transient conditions.
const (
	mysqlTooManyConnections = 1040
	mysqlLockWaitTimeout    = 1205
	mysqlDeadlock           = 1213
	mysqlServerShutdown     = 1053
)

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"connection failure",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"connection pool exhausted",
	"context deadline exceeded",
}

// PostgreSQLErrorClassifier implements ErrorClassifier for PostgreSQL-specific errors.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, class := range pgTransientClasses {
			if strings.HasPrefix(pgErr.Code, class) {
				return true
			}
		}
		switch pgErr.Code {
		case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
			return true
		}
		return false
	}

	return isNetworkError(err) || matchesTransientPattern(err)
}

// MySQLErrorClassifier implements ErrorClassifier for go-sql-driver/mysql errors.
type MySQLErrorClassifier struct{}

// NewMySQLErrorClassifier creates a new MySQL error classifier.
func NewMySQLErrorClassifier() *MySQLErrorClassifier {
	return &MySQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *MySQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlTooManyConnections, mysqlLockWaitTimeout, mysqlDeadlock, mysqlServerShutdown:
			return true
		}
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	return isNetworkError(err) || matchesTransientPattern(err)
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		return errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ENETUNREACH) ||
			errors.Is(opErr.Err, syscall.EHOSTUNREACH)
	}

	return false
}

func matchesTransientPattern(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

var (
	_ pulse.ErrorClassifier = (*PostgreSQLErrorClassifier)(nil)
	_ pulse.ErrorClassifier = (*MySQLErrorClassifier)(nil)
)
