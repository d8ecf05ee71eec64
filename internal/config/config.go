// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jarnest/jarnest/internal/issue"
	"github.com/jarnest/jarnest/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "jarnest"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. JARNEST_WORKERS.
	EnvPrefix = "JARNEST"
	// DotEnvFile is the env file loaded from the working directory when present.
	DotEnvFile = ".env"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the jarnest configuration directory: $XDG_CONFIG_HOME/jarnest when
// set, otherwise the platform user config directory.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// ResolvedCacheDir returns the configured cache root, or the jarnest directory inside the
// user cache directory when unset.
func ResolvedCacheDir(cfg *Config) (string, error) {
	if cfg != nil && cfg.CacheDir != "" {
		return filepath.Abs(string(cfg.CacheDir))
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// LoadWithSource loads configuration and also returns the config file that was used,
// or "" when only defaults and environment were applied.
func LoadWithSource(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}

func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := loadDotEnv(opts.EnvFile); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("load environment file").
			WithIssue(issue.ConfigLoadFailedId).
			WithResource(opts.EnvFile).
			WithSuggestion("Check that the file uses KEY=value lines").
			Wrap(err).
			BuildError()
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("cache_dir", string(defaults.CacheDir))
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("build_file", defaults.BuildFile)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))

	resolvedPath, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithIssue(issue.ConfigLoadFailedId).
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Use 'jarnest config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithResource(resolvedPath).
			WithSuggestion("Check the " + EnvPrefix + "_* environment variables").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// findConfigFile returns the config file to load, or "" to use defaults.
// An explicit ConfigFilePath must exist.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithIssue(issue.ConfigLoadFailedId).
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'jarnest config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		cfgDir = dir
	}

	name := ConfigFileName + "." + ConfigFileExt
	if p := filepath.Join(cfgDir, name); fileExists(p) {
		return p, nil
	}
	if p := filepath.Join(opts.BaseDir, name); fileExists(p) {
		return p, nil
	}
	return "", nil
}

// loadDotEnv loads path, or DotEnvFile when path is empty. Existing environment
// variables win. A missing default file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return godotenv.Load(path)
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// Unset optional fields keep viper defaults, hence the non-concrete validation.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	result, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
