// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/conredirdev/conredir/pkg/base"
)

const ConfigFileName = "conredir.json"

// LoadConfig resolves configuration from the environment and filesystem:
// inline JSON env var first, then an explicit config file env var, then
// conredir.json walking up from the working directory. Returns nil with no
// error when nothing is found.
func LoadConfig() (*Config, error) {
	if configJson := os.Getenv(base.ConfigJsonEnvName); configJson != "" {
		var cfg Config
		if err := json.Unmarshal([]byte(configJson), &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if configFile := os.Getenv(base.ConfigFileEnvName); configFile != "" {
		cfg, err := tryLoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			return cfg, nil
		}
		// If explicitly set but file doesn't exist, that's an error
		return nil, os.ErrNotExist
	}

	return findConfigInParents()
}

func findConfigInParents() (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	homeDir, _ := os.UserHomeDir()

	for {
		cfg, err := tryLoadConfig(filepath.Join(dir, ConfigFileName))
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			return cfg, nil
		}

		// Stop at project root markers
		if hasProjectRoot(dir) {
			break
		}

		// Stop at home directory
		if homeDir != "" && dir == homeDir {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return nil, nil
}

func tryLoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func hasProjectRoot(dir string) bool {
	for _, marker := range []string{"go.mod", ".git"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
