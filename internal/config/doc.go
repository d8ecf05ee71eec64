// SPDX-License-Identifier: MPL-2.0

// Package config handles jarnest configuration using Viper with CUE as the file format.
//
// Sources, lowest precedence first: built-in defaults, the config file, a .env file in
// the working directory, and JARNEST_* environment variables (JARNEST_WORKERS,
// JARNEST_UI_VERBOSE, ...). The config file is the --config path when given, otherwise
// config.cue in the user config directory ($XDG_CONFIG_HOME/jarnest on Linux), otherwise
// config.cue in the working directory.
//
// Files are validated against the embedded config_schema.cue before being merged.
package config
