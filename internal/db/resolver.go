package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/pulseload/internal/config"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// GranularConnFlags holds the libpq-style connection flags (-h, -p, -U, -d).
// There is no password flag; use $PGPASSWORD or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-selecting flag was given. Database is
// excluded because it may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g == nil || (g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == "")
}

// CloudFlags selects and parameterizes cloud IAM authentication.
// The Azure client secret is only read from $AZURE_CLIENT_SECRET.
type CloudFlags struct {
	AuthMethod     string
	AWSRegion      string
	GoogleInstance string
	AzureTenantID  string
	AzureClientID  string
}

// EnvVars is a snapshot of the environment variables the resolver reads.
type EnvVars struct {
	PULSE_CONNECTION_STRING string
	DATABASE_URL            string

	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	AWS_REGION string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PULSE_CONNECTION_STRING: os.Getenv("PULSE_CONNECTION_STRING"),
		DATABASE_URL:            os.Getenv("DATABASE_URL"),
		PGHOST:                  os.Getenv("PGHOST"),
		PGPORT:                  os.Getenv("PGPORT"),
		PGUSER:                  os.Getenv("PGUSER"),
		PGPASSWORD:              os.Getenv("PGPASSWORD"),
		PGDATABASE:              os.Getenv("PGDATABASE"),
		PGSSLMODE:               os.Getenv("PGSSLMODE"),
		AWS_REGION:              os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:         os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:         os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:     os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

func (e *EnvVars) hasGranular() bool {
	return e.PGHOST != "" || e.PGPORT != "" || e.PGUSER != "" || e.PGDATABASE != ""
}

// ResolveConnectionParams resolves PostgreSQL connection parameters.
//
// Connection strings are taken from, in order: --connection,
// $PULSE_CONNECTION_STRING, $DATABASE_URL, and store.connection in the
// config file. The environment and config strings are ignored when
// granular flags are given, and the config string also when PG* variables
// are set. Without a connection string each parameter falls back from flag
// to PG* variable to config file to default.
//
// Giving both --connection and granular flags is an error.
func ResolveConnectionParams(
	connStringFlag string,
	granular *GranularConnFlags,
	cloud *CloudFlags,
	env *EnvVars,
	storeCfg *config.StoreConfig,
) (*pulse.ConnectionConfig, error) {
	if granular == nil {
		granular = &GranularConnFlags{}
	}
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	if storeCfg == nil {
		storeCfg = &config.StoreConfig{}
	}

	if connStringFlag != "" && !granular.IsEmpty() {
		return nil, fmt.Errorf("cannot combine --connection with -h, -p, -U or --sslmode: %w", pulse.ErrInvalidConfig)
	}

	connStr := connStringFlag
	if connStr == "" && granular.IsEmpty() {
		switch {
		case env.PULSE_CONNECTION_STRING != "":
			connStr = env.PULSE_CONNECTION_STRING
		case env.DATABASE_URL != "":
			connStr = env.DATABASE_URL
		case storeCfg.Connection != "" && !env.hasGranular():
			connStr = storeCfg.Connection
		}
	}

	var cfg *pulse.ConnectionConfig
	var err error
	if connStr != "" {
		cfg, err = ParseConnectionString(connStr)
		if err != nil {
			return nil, fmt.Errorf("invalid connection string: %w", err)
		}
		if granular.Database != "" {
			cfg.Database = granular.Database
		}
		if cfg.SSLMode == "" {
			cfg.SSLMode = firstNonEmpty(env.PGSSLMODE, "prefer")
		}
	} else {
		cfg, err = resolveFromGranular(granular, env, storeCfg)
		if err != nil {
			return nil, err
		}
	}

	if err := applyAuth(cfg, cloud, env, storeCfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromGranular(flags *GranularConnFlags, env *EnvVars, sc *config.StoreConfig) (*pulse.ConnectionConfig, error) {
	cfg := &pulse.ConnectionConfig{
		AuthMethod:       pulse.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, env.PGHOST, sc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT %q: must be an integer: %w", env.PGPORT, pulse.ErrInvalidConfig)
		}
		cfg.Port = port
	case sc.Port != 0:
		cfg.Port = sc.Port
	default:
		cfg.Port = 5432
	}

	cfg.Username = firstNonEmpty(flags.Username, env.PGUSER, sc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = env.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, env.PGDATABASE, sc.Database, pulse.DefaultDatabase)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, sc.SSLMode, "prefer")
	return cfg, nil
}

// applyAuth selects the auth method: flag, then config, then Azure
// environment credentials imply Entra ID.
func applyAuth(cfg *pulse.ConnectionConfig, cloud *CloudFlags, env *EnvVars, sc *config.StoreConfig) error {
	method, err := pulse.ParseAuthMethod(firstNonEmpty(cloud.AuthMethod, sc.AuthMethod))
	if err != nil {
		return err
	}

	tenantID := firstNonEmpty(cloud.AzureTenantID, env.AZURE_TENANT_ID, sc.AzureTenantID)
	clientID := firstNonEmpty(cloud.AzureClientID, env.AZURE_CLIENT_ID, sc.AzureClientID)
	if method == pulse.AuthMethodStandard && cloud.AuthMethod == "" && sc.AuthMethod == "" &&
		(tenantID != "" || clientID != "") {
		method = pulse.AuthMethodAzureEntraID
	}

	cfg.AuthMethod = method
	switch method {
	case pulse.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(cloud.AWSRegion, env.AWS_REGION, sc.AWSRegion)
	case pulse.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(cloud.GoogleInstance, sc.GoogleInstance)
	case pulse.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
