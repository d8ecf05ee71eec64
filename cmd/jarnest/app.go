// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/jarnest/jarnest/internal/build"
	"github.com/jarnest/jarnest/internal/config"
)

type (
	// App wires CLI services and shared dependencies. All Cobra command handlers receive
	// an App reference and load configuration through its ConfigProvider.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer

		// flags bound by the root command
		verbose    bool
		configPath string
		// cfg is the configuration loaded for the running command.
		cfg *config.Config
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Locate(opts config.LoadOptions) (string, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// loadConfig loads configuration once per command and applies the verbose setting.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		a.verbose = true
	}
	a.cfg = cfg
	return cfg, nil
}

// colorScheme returns the glamour style for issue guidance.
func (a *App) colorScheme() string {
	if a.cfg == nil {
		return config.ColorSchemeAuto.GlamourStyle()
	}
	return a.cfg.UI.ColorScheme.GlamourStyle()
}

// logger returns the logger handed to the bundling packages.
func (a *App) logger() *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix: "jarnest",
	})
	if a.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// loadBuild loads the build description at path, or the configured default.
func (a *App) loadBuild(ctx context.Context, path string) (*build.Build, error) {
	if path == "" {
		cfg, err := a.loadConfig(ctx)
		if err != nil {
			return nil, err
		}
		path = cfg.BuildFile
	}
	return build.Load(path)
}
