// Package config handles project and global configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// Config represents project configuration stored in .curate/config.json.
type Config struct {
	Name       string `json:"name,omitempty"`        // Project name
	StudysetID string `json:"studyset_id,omitempty"` // Studyset updated by imports
	// Cached lookups older than this many days are refetched. Zero keeps them forever.
	CacheMaxAgeDays int `json:"cache_max_age_days,omitempty"`
	// Concurrent bibliographic lookups per upload.
	Concurrency int `json:"concurrency,omitempty"`
}

const (
	CurateDir  = ".curate"
	ConfigFile = "config.json"
	StubsFile  = "stubs.jsonl"
	CacheDir   = "cache"
	DBFile     = "lookup.db"

	// DefaultConcurrency is used when the config leaves concurrency unset.
	DefaultConcurrency = 4
)

// ErrNotRepository is returned when no .curate directory is found.
var ErrNotRepository = errors.New("not in a curate project (no .curate directory found)")

// CuratePath returns the path to the .curate directory from a root path.
func CuratePath(root string) string {
	return filepath.Join(root, CurateDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, CurateDir, ConfigFile)
}

// StubsPath returns the path to stubs.jsonl from a root path.
func StubsPath(root string) string {
	return filepath.Join(root, CurateDir, StubsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, CurateDir, CacheDir)
}

// DBPath returns the path to lookup.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, CurateDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a curate project.
func IsRepository(root string) bool {
	info, err := os.Stat(CuratePath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a curate project.
// Returns the project root path or ErrNotRepository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotRepository
		}
		abs = parent
	}
}

// Init creates the project layout at root. It fails if one already exists.
func Init(root string, cfg Config) error {
	if IsRepository(root) {
		return fmt.Errorf("curate project already exists at %s", root)
	}
	if err := os.MkdirAll(CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", CurateDir, err)
	}
	f, err := os.OpenFile(StubsPath(root), os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("creating stubs file: %w", err)
	}
	f.Close()

	// The cache is rebuildable and stays out of version control.
	gitignore := filepath.Join(CuratePath(root), ".gitignore")
	if err := os.WriteFile(gitignore, []byte(CacheDir+"/\n"), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return cfg.Save(root)
}

// Load reads configuration from the project at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the project at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// CacheMaxAge returns the lookup cache expiry as a duration.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.CacheMaxAgeDays) * 24 * time.Hour
}

// LookupConcurrency returns the configured concurrency or the default.
func (c *Config) LookupConcurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return DefaultConcurrency
}

// Keys lists the config keys accepted by Get and Set.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

var fields = map[string]field{
	"name": {
		get: func(c *Config) string { return c.Name },
		set: func(c *Config, v string) error { c.Name = v; return nil },
	},
	"studyset_id": {
		get: func(c *Config) string { return c.StudysetID },
		set: func(c *Config, v string) error { c.StudysetID = v; return nil },
	},
	"cache_max_age_days": {
		get: func(c *Config) string { return strconv.Itoa(c.CacheMaxAgeDays) },
		set: func(c *Config, v string) error { return setNonNegative(&c.CacheMaxAgeDays, v) },
	},
	"concurrency": {
		get: func(c *Config) string { return strconv.Itoa(c.Concurrency) },
		set: func(c *Config, v string) error { return setNonNegative(&c.Concurrency, v) },
	},
}

func setNonNegative(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("expected a non-negative integer, got %q", v)
	}
	*dst = n
	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys())
	}
	return f.get(c), nil
}

// Set parses and assigns a config key.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys())
	}
	if err := f.set(c, value); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
