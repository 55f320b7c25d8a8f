package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/curate/config.yml.
type GlobalConfig struct {
	NeurostoreURL   string `yaml:"neurostore_url,omitempty"`
	NeurostoreToken string `yaml:"neurostore_token,omitempty"`
	NCBIAPIKey      string `yaml:"ncbi_api_key,omitempty"`
	NCBIEmail       string `yaml:"ncbi_email,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "curate"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/curate/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// globalValue returns the environment variable if set, else the value
// picked from the global config file.
func globalValue(env string, pick func(*GlobalConfig) string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return pick(cfg)
}

// GetNeurostoreURL returns the neurostore base URL. Empty means the
// client default.
func GetNeurostoreURL() string {
	return globalValue("NEUROSTORE_URL", func(c *GlobalConfig) string { return c.NeurostoreURL })
}

// GetNeurostoreToken returns the neurostore token. NEUROSTORE_TOKEN wins
// over the config file.
func GetNeurostoreToken() string {
	return globalValue("NEUROSTORE_TOKEN", func(c *GlobalConfig) string { return c.NeurostoreToken })
}

// GetNCBIAPIKey returns the NCBI API key.
func GetNCBIAPIKey() string {
	return globalValue("NCBI_API_KEY", func(c *GlobalConfig) string { return c.NCBIAPIKey })
}

// GetNCBIEmail returns the contact email sent to NCBI.
func GetNCBIEmail() string {
	return globalValue("NCBI_EMAIL", func(c *GlobalConfig) string { return c.NCBIEmail })
}
