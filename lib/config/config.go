// Copyright 2026 The mtx Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for mtx.
//
// Options are resolved in three layers, later layers winning:
//
//  1. An optional YAML config file ($MTX_CONFIG, or
//     ~/.config/mtx/config.yaml if present).
//  2. MTX_* environment variables.
//  3. Command-line flags, whose defaults are seeded from the previous
//     layers so an unset flag leaves the resolved value alone.
//
// The password deliberately has no config-file key — it comes from the
// environment, a flag, or a password file only.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Options holds the global mtx options shared by every subcommand.
type Options struct {
	// HomeserverURL is the base URL of the Matrix homeserver
	// (e.g., "https://matrix.example.org").
	HomeserverURL string `yaml:"homeserver_url" env:"MTX_HOMESERVER_URL"`

	// Username is the Matrix username for fresh logins. Ignored when a
	// session file is restored.
	Username string `yaml:"username" env:"MTX_USERNAME"`

	// Password is the login password. Never read from the config file.
	Password string `yaml:"-" env:"MTX_PASSWORD"`

	// PasswordFile is a path to a file containing the password, or "-"
	// to prompt on the terminal.
	PasswordFile string `yaml:"password_file" env:"MTX_PASSWORD_FILE"`

	// SessionFile is where the login session is persisted and restored
	// from. Empty means no persistence across runs.
	SessionFile string `yaml:"session_file" env:"MTX_SESSION_FILE"`

	// StorePath is a directory for client-owned local state (sync
	// position). Empty disables it.
	StorePath string `yaml:"store_path" env:"MTX_STORE_PATH"`

	// DryRun makes mutating commands print the would-be request
	// instead of issuing it.
	DryRun bool `yaml:"-" env:"MTX_DRY_RUN"`
}

// DefaultPath returns the config file path: $MTX_CONFIG if set,
// otherwise ~/.config/mtx/config.yaml (honoring $XDG_CONFIG_HOME).
func DefaultPath() string {
	if envPath := os.Getenv("MTX_CONFIG"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "mtx", "config.yaml")
}

// Load resolves the config file and environment layers. A missing
// config file is not an error; an unparsable one is.
func Load() (*Options, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom is Load with an explicit config file path. An empty path
// skips the file layer entirely.
func LoadFrom(path string) (*Options, error) {
	options := &Options{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No config file — environment and flags only.
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			decoder := yaml.NewDecoder(bytes.NewReader(data))
			decoder.KnownFields(true)
			if err := decoder.Decode(options); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(options); err != nil {
		return nil, fmt.Errorf("parsing MTX_* environment: %w", err)
	}

	return options, nil
}

// AddFlags registers the global flags on the given flag set, with
// defaults taken from the already-resolved option values.
func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.HomeserverURL, "homeserver", o.HomeserverURL, "Matrix homeserver URL (env MTX_HOMESERVER_URL)")
	flagSet.StringVar(&o.Username, "username", o.Username, "Matrix username for login (env MTX_USERNAME)")
	flagSet.StringVar(&o.Password, "password", o.Password, "Matrix password for login (env MTX_PASSWORD)")
	flagSet.StringVar(&o.PasswordFile, "password-file", o.PasswordFile, "path to file containing the password, or - to prompt (env MTX_PASSWORD_FILE)")
	flagSet.StringVar(&o.SessionFile, "session-file", o.SessionFile, "use or store the session here (env MTX_SESSION_FILE)")
	flagSet.StringVar(&o.StorePath, "store-path", o.StorePath, "directory for local client state (env MTX_STORE_PATH)")
	flagSet.BoolVar(&o.DryRun, "dry-run", o.DryRun, "print the would-be request instead of issuing it (env MTX_DRY_RUN)")
}
