package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pulseload/internal/config"
	"github.com/vvka-141/pulseload/internal/files/filesystem"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// loadConfig reads the file named by --config. A missing file is only an
// error when --config was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil || configPath == "" {
		configPath = pulse.DefaultConfigFile
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			if cmd.Flags().Changed("config") {
				return nil, fmt.Errorf("%s: %w: %w", configPath, err, pulse.ErrInvalidConfig)
			}
			return &config.Config{}, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", configPath, err)
	}
	return cfg, nil
}

// resolveEffectiveTimeout returns the effective timeout, preferring the
// config file when --timeout wasn't set.
func resolveEffectiveTimeout(cmd *cobra.Command, cfg *config.Config, flagTimeout time.Duration) time.Duration {
	if cmd.Flags().Changed("timeout") {
		return flagTimeout
	}
	return cfg.TimeoutOr(flagTimeout)
}

// intSetting returns the flag value when set, else the config value when
// positive, else fallback.
func intSetting(cmd *cobra.Command, flag string, flagValue, configValue, fallback int) int {
	switch {
	case cmd.Flags().Changed(flag):
		return flagValue
	case configValue > 0:
		return configValue
	default:
		return fallback
	}
}

// newCorpusFileSystem returns the provider for a corpus root and the root
// path to walk within it. s3://bucket/prefix roots are read from S3.
func newCorpusFileSystem(ctx context.Context, root string, corpus config.CorpusConfig) (filesystem.FileSystemProvider, string, error) {
	bucket, prefix, isS3 := filesystem.ParseS3URI(root)
	if !isS3 {
		return filesystem.NewOSFileSystem(), root, nil
	}
	fsProvider, err := filesystem.NewS3FileSystem(ctx, filesystem.S3Config{
		Bucket:    bucket,
		Region:    corpus.S3Region,
		Endpoint:  corpus.S3Endpoint,
		PathStyle: corpus.S3PathStyle,
	})
	if err != nil {
		return nil, "", fmt.Errorf("corpus %s: %v: %w", root, err, pulse.ErrFatalConfiguration)
	}
	return fsProvider, prefix, nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
