package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pulseload/internal/config"
	"github.com/vvka-141/pulseload/internal/db"
	"github.com/vvka-141/pulseload/internal/store/postgres"
	"github.com/vvka-141/pulseload/internal/store/sqlstore"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// storeFlags holds the store-selecting flag values shared by ingest and schema.
type storeFlags struct {
	driver         string
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	authMethod     string
	awsRegion      string
	googleInstance string
	azureTenantID  string
	azureClientID  string
	mysqlDSN       string
	sqlitePath     string
}

func registerStoreFlags(cmd *cobra.Command, f *storeFlags) {
	cmd.Flags().StringVar(&f.driver, "store", "",
		"Store driver: postgres|mysql|sqlite (default: store.driver in the config file, else postgres)")

	// Connection string flag (mutually exclusive with granular flags)
	cmd.Flags().StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or key=value format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username).\n"+
			"Alternative: Use PULSE_CONNECTION_STRING or DATABASE_URL environment variable.\n"+
			"Example: postgresql://loader@localhost:5432/pulse")

	// Granular connection flags (PostgreSQL standard)
	// Precedence: flag > environment variable > config file > default
	cmd.Flags().StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > localhost")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > 5432")
	cmd.Flags().StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	cmd.Flags().StringVarP(&f.database, "database", "d", "",
		"Target database name (overrides the database of a connection string)")
	cmd.Flags().StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")

	cmd.Flags().StringVar(&f.authMethod, "auth-method", "",
		"PostgreSQL authentication: standard|aws-iam|azure|google")
	cmd.Flags().StringVar(&f.awsRegion, "aws-region", "",
		"AWS region for IAM authentication (overrides $AWS_REGION)")
	cmd.Flags().StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")
	cmd.Flags().StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	cmd.Flags().StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")

	cmd.Flags().StringVar(&f.mysqlDSN, "mysql-dsn", "",
		"MySQL DSN, e.g. loader:secret@tcp(localhost:3306)/pulse (or $PULSE_MYSQL_DSN)")
	cmd.Flags().StringVar(&f.sqlitePath, "sqlite-path", "",
		"SQLite database file (created when missing)")
}

// storeTarget is a resolved store: its dialect and how to open it.
type storeTarget struct {
	dialect  pulse.Dialect
	describe string
	open     pulse.StoreOpener
}

func parseDriver(name string) (pulse.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "postgres", "postgresql", "pg":
		return pulse.DialectPostgres, nil
	case "mysql":
		return pulse.DialectMySQL, nil
	case "sqlite", "sqlite3":
		return pulse.DialectSQLite, nil
	default:
		return pulse.DialectPostgres, fmt.Errorf("%q: %w", name, pulse.ErrUnsupportedDriver)
	}
}

// resolveStore merges flags, environment and the store section of the
// config file. Nothing is dialed until open is called.
func resolveStore(f storeFlags, sc config.StoreConfig, logger pulse.Logger) (*storeTarget, error) {
	dialect, err := parseDriver(firstNonEmpty(f.driver, sc.Driver))
	if err != nil {
		return nil, err
	}

	switch dialect {
	case pulse.DialectMySQL:
		dsn := firstNonEmpty(f.mysqlDSN, os.Getenv("PULSE_MYSQL_DSN"), sc.MySQLDSN)
		if dsn == "" {
			return nil, fmt.Errorf("mysql store needs --mysql-dsn, $PULSE_MYSQL_DSN or store.mysql_dsn: %w", pulse.ErrInvalidConfig)
		}
		return &storeTarget{
			dialect:  dialect,
			describe: "mysql",
			open: func(ctx context.Context) (pulse.Store, error) {
				return sqlstore.OpenMySQL(ctx, dsn, logger)
			},
		}, nil

	case pulse.DialectSQLite:
		path := firstNonEmpty(f.sqlitePath, sc.SQLitePath)
		if path == "" {
			return nil, fmt.Errorf("sqlite store needs --sqlite-path or store.sqlite_path: %w", pulse.ErrInvalidConfig)
		}
		return &storeTarget{
			dialect:  dialect,
			describe: "sqlite " + path,
			open: func(ctx context.Context) (pulse.Store, error) {
				return sqlstore.OpenSQLite(ctx, path, logger)
			},
		}, nil
	}

	connConfig, err := db.ResolveConnectionParams(
		f.connection,
		&db.GranularConnFlags{
			Host:     f.host,
			Port:     f.port,
			Username: f.username,
			Database: f.database,
			SSLMode:  f.sslMode,
		},
		&db.CloudFlags{
			AuthMethod:     f.authMethod,
			AWSRegion:      f.awsRegion,
			GoogleInstance: f.googleInstance,
			AzureTenantID:  f.azureTenantID,
			AzureClientID:  f.azureClientID,
		},
		db.LoadFromEnvironment(),
		&sc,
	)
	if err != nil {
		return nil, err
	}
	logConnectionVerbose(logger, connConfig)

	return &storeTarget{
		dialect:  dialect,
		describe: fmt.Sprintf("postgres %s:%d/%s", connConfig.Host, connConfig.Port, connConfig.Database),
		open: func(ctx context.Context) (pulse.Store, error) {
			connector, err := db.NewConnector(connConfig, logger)
			if err != nil {
				return nil, err
			}
			return postgres.Open(ctx, connector, logger)
		},
	}, nil
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(logger pulse.Logger, connConfig *pulse.ConnectionConfig) {
	logger.Verbose("Connection resolved:")
	logger.Verbose("  Host: %s", connConfig.Host)
	logger.Verbose("  Port: %d", connConfig.Port)
	logger.Verbose("  User: %s", connConfig.Username)
	logger.Verbose("  Database: %s", connConfig.Database)
	logger.Verbose("  SSL Mode: %s", connConfig.SSLMode)
	logger.Verbose("  Auth Method: %s", connConfig.AuthMethod)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
