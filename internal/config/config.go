package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path"
	"slices"
	"time"

	"github.com/vvka-141/pulseload/pkg/pulse"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type StoreConfig struct {
	Driver         string `yaml:"driver"`
	Connection     string `yaml:"connection,omitempty"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	MySQLDSN       string `yaml:"mysql_dsn,omitempty"`
	SQLitePath     string `yaml:"sqlite_path,omitempty"`
}

type CorpusConfig struct {
	// Root is a directory or an s3://bucket/prefix URI.
	Root        string `yaml:"root"`
	S3Region    string `yaml:"s3_region,omitempty"`
	S3Endpoint  string `yaml:"s3_endpoint,omitempty"`
	S3PathStyle bool   `yaml:"s3_path_style,omitempty"`
}

type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Corpus CorpusConfig `yaml:"corpus"`

	// Categories maps a category name to its path below the corpus root.
	Categories map[string]string `yaml:"categories"`

	BatchSize    int    `yaml:"batch_size"`
	CommitEvery  int    `yaml:"commit_every"`
	Workers      int    `yaml:"workers"`
	EnsureSchema bool   `yaml:"ensure_schema"`
	MetricsFile  string `yaml:"metrics_file,omitempty"`
	Timeout      string `yaml:"timeout"`
}

// Load reads the config file at configPath.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", configPath, err, pulse.ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	seen := make(map[pulse.Category]string, len(c.Categories))
	for _, name := range slices.Sorted(maps.Keys(c.Categories)) {
		cat, err := pulse.ParseCategory(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("categories: %w", err))
			continue
		}
		if prev, dup := seen[cat]; dup {
			errs = append(errs, fmt.Errorf("categories: %q and %q both name %s: %w", prev, name, cat, pulse.ErrInvalidConfig))
			continue
		}
		seen[cat] = name
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("timeout %q: %v: %w", c.Timeout, err, pulse.ErrInvalidConfig))
		}
	}
	if c.BatchSize < 0 || c.CommitEvery < 0 || c.Workers < 0 {
		errs = append(errs, fmt.Errorf("batch_size, commit_every and workers cannot be negative: %w", pulse.ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// CategoryRoot returns where category c lives below corpusRoot.
// Overrides from the categories section win over the default layout.
func (c *Config) CategoryRoot(corpusRoot string, cat pulse.Category) string {
	rel := cat.DefaultPath()
	if c != nil {
		for name, p := range c.Categories {
			if parsed, err := pulse.ParseCategory(name); err == nil && parsed == cat {
				rel = p
				break
			}
		}
	}
	if path.IsAbs(rel) || corpusRoot == "" {
		return rel
	}
	return path.Join(corpusRoot, rel)
}

// TimeoutOr returns the configured timeout, or fallback when unset.
func (c *Config) TimeoutOr(fallback time.Duration) time.Duration {
	if c == nil || c.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fallback
	}
	return d
}
