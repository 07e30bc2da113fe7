// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Archive   ArchiveConfig   `toml:"archive"`
	Providers ProvidersConfig `toml:"providers"`
	Import    ImportConfig    `toml:"import"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ArchiveConfig points at the public media archive gateway.
type ArchiveConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type ProvidersConfig struct {
	TMDB      *TMDBConfig      `toml:"tmdb"`
	OMDb      *OMDbConfig      `toml:"omdb"`
	Wikipedia *WikipediaConfig `toml:"wikipedia"`
}

// Provider URL fields override each provider's default endpoint; empty
// means the provider's built-in default.
type TMDBConfig struct {
	APIKey   string `toml:"api_key"`
	URL      string `toml:"url"`
	MinScore int    `toml:"min_score"`
}

type OMDbConfig struct {
	APIKey string `toml:"api_key"`
	URL    string `toml:"url"`
}

type WikipediaConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
}

type ImportConfig struct {
	Workers                 int  `toml:"workers"`
	Retries                 int  `toml:"retries"`
	AllowSecondaryContainer bool `toml:"allow_secondary_container"`
}

// Load reads, parses, and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, applying
// defaults but skipping validation.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8787
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/reelarr.db"
	}
	if c.Archive.URL == "" {
		c.Archive.URL = "https://archive.org"
	}
	if c.Archive.TimeoutSeconds == 0 {
		c.Archive.TimeoutSeconds = 8
	}
	if c.Import.Workers == 0 {
		c.Import.Workers = 4
	}
	if c.Import.Retries == 0 {
		c.Import.Retries = 2
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// ${VAR_NAME:-default} falls back to default when the variable is unset or
// empty. Unresolved names are returned so the caller can report them
// together. Comment lines are left untouched: the commented-out samples in
// the default config must not demand their variables.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) (string, []string) {
	var missing []string
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines[i] = envVarPattern.ReplaceAllStringFunc(line, func(match string) string {
			inner := match[2 : len(match)-1] // Strip ${ and }
			if name, def, ok := strings.Cut(inner, ":-"); ok {
				if value := os.Getenv(name); value != "" {
					return value
				}
				return def
			}
			if value, ok := os.LookupEnv(inner); ok {
				return value
			}
			missing = append(missing, inner)
			return match
		})
	}
	return strings.Join(lines, "\n"), missing
}
