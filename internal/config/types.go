// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultWorkers is the default bound on concurrent descriptor synthesis.
	DefaultWorkers = 4
	// MaxWorkers is the largest accepted workers value.
	MaxWorkers = 64
	// DefaultBuildFile is the build description used when none is given.
	DefaultBuildFile = "nestbuild.cue"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidWorkers is the sentinel error wrapped by InvalidWorkersError.
	ErrInvalidWorkers = errors.New("invalid workers")
	// ErrInvalidCacheDirPath is returned when a CacheDirPath value is whitespace-only.
	ErrInvalidCacheDirPath = errors.New("invalid cache dir path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the terminal rendering style.
	ColorScheme string

	// CacheDirPath is the build-owned cache root. Empty means the user cache directory.
	CacheDirPath string

	// Config is the effective jarnest configuration.
	Config struct {
		// CacheDir is the cache root; staged copies live under temp/modprocessing.
		CacheDir CacheDirPath `json:"cache_dir,omitempty" mapstructure:"cache_dir" toml:"cache_dir,omitempty"`
		// Workers bounds concurrent descriptor synthesis.
		Workers int `json:"workers" mapstructure:"workers" toml:"workers"`
		// BuildFile is the build description used when --build is not given.
		BuildFile string `json:"build_file" mapstructure:"build_file" toml:"build_file"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
		// ColorScheme selects the glamour style used for issue guidance.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
	}

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidWorkersError is returned when workers is outside 1..MaxWorkers.
	InvalidWorkersError struct {
		Value int
	}

	// InvalidCacheDirPathError is returned when a CacheDirPath is whitespace-only.
	InvalidCacheDirPathError struct {
		Value CacheDirPath
	}

	// InvalidConfigError collects Config field errors.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers:   DefaultWorkers,
		BuildFile: DefaultBuildFile,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// IsValid returns whether every Config field is valid.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.CacheDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Workers < 1 || c.Workers > MaxWorkers {
		errs = append(errs, &InvalidWorkersError{Value: c.Workers})
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// GlamourStyle returns the glamour style name for the scheme. Auto maps to "auto".
func (cs ColorScheme) GlamourStyle() string {
	if cs == "" {
		return string(ColorSchemeAuto)
	}
	return string(cs)
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Error implements the error interface for InvalidWorkersError.
func (e *InvalidWorkersError) Error() string {
	return fmt.Sprintf("invalid workers %d (valid: 1..%d)", e.Value, MaxWorkers)
}

// Unwrap returns ErrInvalidWorkers for errors.Is() compatibility.
func (e *InvalidWorkersError) Unwrap() error { return ErrInvalidWorkers }

// String returns the string representation of the CacheDirPath.
func (p CacheDirPath) String() string { return string(p) }

// IsValid returns whether the CacheDirPath is valid.
// The zero value is valid; non-zero values must not be whitespace-only.
func (p CacheDirPath) IsValid() (bool, []error) {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidCacheDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidCacheDirPathError.
func (e *InvalidCacheDirPathError) Error() string {
	return fmt.Sprintf("invalid cache dir path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidCacheDirPath for errors.Is() compatibility.
func (e *InvalidCacheDirPathError) Unwrap() error { return ErrInvalidCacheDirPath }
