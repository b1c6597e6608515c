// Package config loads the tool's YAML configuration. The refinement
// credentials live here so the extraction core never reads process
// environment state itself.
package config

import "strings"

type Config struct {
	LogMode   string                    `yaml:"log_mode"`
	Refine    RefineConfig              `yaml:"refine"`
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// RefineConfig selects and authenticates the outline refinement backend.
type RefineConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	APIKeyEnv  string `yaml:"api_key_env"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

type ProviderConfig struct {
	BaseURLs []string `yaml:"base_urls"`
	Model    string   `yaml:"model"`
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.LogMode) == "" {
		c.LogMode = "production"
	}
	if strings.TrimSpace(c.Refine.Provider) == "" {
		c.Refine.Provider = "deepseek"
	}
	if strings.TrimSpace(c.Refine.APIKeyEnv) == "" {
		c.Refine.APIKeyEnv = "DEEPSEEK_API_KEY"
	}
	if c.Refine.TimeoutSec <= 0 {
		c.Refine.TimeoutSec = 300
	}
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	if _, ok := c.Providers["deepseek"]; !ok {
		c.Providers["deepseek"] = ProviderConfig{
			BaseURLs: []string{"https://api.deepseek.com"},
			Model:    "deepseek-chat",
		}
	}
}

// Provider returns the active provider's endpoints and model.
func (c *Config) Provider() ProviderConfig {
	return c.Providers[c.Refine.Provider]
}
