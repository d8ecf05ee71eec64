// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// FormatCUE renders configuration as a config.cue document.
	FormatCUE Format = "cue"
	// FormatJSON renders configuration as indented JSON.
	FormatJSON Format = "json"
	// FormatTOML renders configuration as TOML.
	FormatTOML Format = "toml"
)

type (
	// Format is an output format for Encode.
	Format string

	// UnsupportedFormatError is returned by Encode for an unknown format.
	UnsupportedFormatError struct {
		Value Format
	}
)

// Error implements the error interface for UnsupportedFormatError.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q (valid: cue, json, toml)", e.Value)
}

// Encode renders cfg in the given format.
func Encode(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatCUE, "":
		return []byte(GenerateCUE(cfg)), nil
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatTOML:
		return toml.Marshal(cfg)
	default:
		return nil, &UnsupportedFormatError{Value: format}
	}
}

// GenerateCUE generates a config.cue document for cfg. The output validates against
// the config schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// jarnest configuration file\n\n")
	if cfg.CacheDir != "" {
		fmt.Fprintf(&sb, "cache_dir:  %q\n", cfg.CacheDir)
	}
	fmt.Fprintf(&sb, "workers:    %d\n", cfg.Workers)
	fmt.Fprintf(&sb, "build_file: %q\n", cfg.BuildFile)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}
