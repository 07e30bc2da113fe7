// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	// Archive validation
	if c.Archive.URL == "" {
		errs = append(errs, "archive.url: required")
	} else if u, err := url.Parse(c.Archive.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("archive.url: not a valid URL: %q", c.Archive.URL))
	}
	if c.Archive.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Sprintf("archive.timeout_seconds: must not be negative, got %d", c.Archive.TimeoutSeconds))
	}

	// Provider validation
	if c.Providers.TMDB != nil && c.Providers.TMDB.APIKey == "" {
		errs = append(errs, "providers.tmdb.api_key: required when tmdb is configured")
	}
	if c.Providers.OMDb != nil && c.Providers.OMDb.APIKey == "" {
		errs = append(errs, "providers.omdb.api_key: required when omdb is configured")
	}

	// Import validation
	if c.Import.Workers < 1 || c.Import.Workers > 16 {
		errs = append(errs, fmt.Sprintf("import.workers: must be between 1 and 16, got %d", c.Import.Workers))
	}
	if c.Import.Retries < 0 {
		errs = append(errs, fmt.Sprintf("import.retries: must not be negative, got %d", c.Import.Retries))
	}

	return errs
}
