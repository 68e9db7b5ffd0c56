package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pulseload/internal/config"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

func TestResolveConnectionParams_ConnectionStringPrecedence(t *testing.T) {
	env := &EnvVars{
		PULSE_CONNECTION_STRING: "postgresql://env-pulse/pulse",
		DATABASE_URL:            "postgresql://env-url/pulse",
	}
	sc := &config.StoreConfig{Connection: "postgresql://from-config/pulse"}

	tests := []struct {
		name     string
		flag     string
		env      *EnvVars
		wantHost string
	}{
		{"flag wins", "postgresql://from-flag/pulse", env, "from-flag"},
		{"PULSE_CONNECTION_STRING before DATABASE_URL", "", env, "env-pulse"},
		{"DATABASE_URL", "", &EnvVars{DATABASE_URL: env.DATABASE_URL}, "env-url"},
		{"config connection last", "", &EnvVars{}, "from-config"},
		{"PG variables shadow config connection", "", &EnvVars{PGHOST: "pghost"}, "pghost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ResolveConnectionParams(tt.flag, nil, nil, tt.env, sc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, cfg.Host)
		})
	}
}

func TestResolveConnectionParams_GranularFallbacks(t *testing.T) {
	sc := &config.StoreConfig{Host: "cfg-host", Port: 6000, Username: "cfg-user", Database: "cfg-db", SSLMode: "require"}

	cfg, err := ResolveConnectionParams("", &GranularConnFlags{Host: "flag-host"}, nil,
		&EnvVars{PGPORT: "5544", PGPASSWORD: "secret", DATABASE_URL: "postgresql://ignored/db"}, sc)
	require.NoError(t, err)

	assert.Equal(t, "flag-host", cfg.Host)
	assert.Equal(t, 5544, cfg.Port)
	assert.Equal(t, "cfg-user", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "cfg-db", cfg.Database)
	assert.Equal(t, "require", cfg.SSLMode)
	assert.Equal(t, pulse.AuthMethodStandard, cfg.AuthMethod)
}

func TestResolveConnectionParams_Defaults(t *testing.T) {
	cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{PGUSER: "loader"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "postgres", cfg.Database)
	assert.Equal(t, "prefer", cfg.SSLMode)
}

func TestResolveConnectionParams_DatabaseFlagOverridesConnectionString(t *testing.T) {
	cfg, err := ResolveConnectionParams("postgresql://db.internal/postgres", &GranularConnFlags{Database: "pulse"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "pulse", cfg.Database)
}

func TestResolveConnectionParams_Errors(t *testing.T) {
	_, err := ResolveConnectionParams("postgresql://x/db", &GranularConnFlags{Host: "y"}, nil, nil, nil)
	assert.ErrorIs(t, err, pulse.ErrInvalidConfig)

	_, err = ResolveConnectionParams("", nil, nil, &EnvVars{PGPORT: "fifty"}, nil)
	assert.ErrorIs(t, err, pulse.ErrInvalidConfig)

	_, err = ResolveConnectionParams("", nil, &CloudFlags{AuthMethod: "kerberos"}, nil, nil)
	assert.ErrorIs(t, err, pulse.ErrUnsupportedAuthMethod)
}

func TestResolveConnectionParams_CloudAuth(t *testing.T) {
	t.Run("aws region from environment", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, &CloudFlags{AuthMethod: "aws-iam"}, &EnvVars{AWS_REGION: "ap-south-1"}, nil)
		require.NoError(t, err)
		assert.Equal(t, pulse.AuthMethodAWSIAM, cfg.AuthMethod)
		assert.Equal(t, "ap-south-1", cfg.AWSRegion)
	})

	t.Run("google instance from config", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, nil, nil,
			&config.StoreConfig{AuthMethod: "google", GoogleInstance: "proj:asia-south1:pulse"})
		require.NoError(t, err)
		assert.Equal(t, pulse.AuthMethodGoogleIAM, cfg.AuthMethod)
		assert.Equal(t, "proj:asia-south1:pulse", cfg.GoogleInstance)
	})

	t.Run("azure implied by environment", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, &CloudFlags{AzureClientID: "flag-client"},
			&EnvVars{AZURE_TENANT_ID: "tenant", AZURE_CLIENT_ID: "env-client", AZURE_CLIENT_SECRET: "s"}, nil)
		require.NoError(t, err)
		assert.Equal(t, pulse.AuthMethodAzureEntraID, cfg.AuthMethod)
		assert.Equal(t, "tenant", cfg.AzureTenantID)
		assert.Equal(t, "flag-client", cfg.AzureClientID)
		assert.Equal(t, "s", cfg.AzureClientSecret)
	})

	t.Run("explicit standard ignores azure environment", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, &CloudFlags{AuthMethod: "standard"},
			&EnvVars{AZURE_TENANT_ID: "tenant"}, nil)
		require.NoError(t, err)
		assert.Equal(t, pulse.AuthMethodStandard, cfg.AuthMethod)
	})
}
