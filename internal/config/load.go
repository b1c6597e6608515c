package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration file at path, or the default location under
// the user's home directory when path is empty. A missing file is not an
// error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if strings.TrimSpace(path) == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".booktoc", "config.yaml")
		}
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// ResolveAPIKey returns the refinement API key: the explicit value when
// set, otherwise the environment variable the config names.
func (c *Config) ResolveAPIKey() string {
	if k := strings.TrimSpace(c.Refine.APIKey); k != "" {
		return k
	}
	return strings.TrimSpace(os.Getenv(c.Refine.APIKeyEnv))
}
