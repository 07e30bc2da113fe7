package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	tmp := t.TempDir()

	// 1. Write default config
	cfgPath := filepath.Join(tmp, "reelarr", "config.toml")
	if err := WriteDefault(cfgPath); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	// 2. Load without validation and without any provider env vars: the
	// commented-out api_key samples must not block first-run startup.
	cfg, err := LoadWithoutValidation(cfgPath)
	if err != nil {
		t.Fatalf("LoadWithoutValidation: %v", err)
	}

	// 3. Verify defaults applied
	if cfg.Server.Port != 8787 {
		t.Errorf("expected default port 8787, got %d", cfg.Server.Port)
	}
	if cfg.Archive.URL != "https://archive.org" {
		t.Errorf("expected default archive url, got %q", cfg.Archive.URL)
	}
	if cfg.Providers.Wikipedia == nil || !cfg.Providers.Wikipedia.Enabled {
		t.Error("expected wikipedia provider enabled in default config")
	}

	// 4. Full load validates cleanly
	if _, err := Load(cfgPath); err != nil {
		t.Errorf("Load: %v", err)
	}

	// 5. Enable a provider and verify env substitution (t.Setenv
	// auto-restores on cleanup)
	t.Setenv("OMDB_API_KEY", "test-omdb-key")
	extra := "\n[providers.omdb]\napi_key = \"${OMDB_API_KEY}\"\n"
	f, err := os.OpenFile(cfgPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	if _, err := f.WriteString(extra); err != nil {
		t.Fatalf("append provider section: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close config: %v", err)
	}

	cfg, err = Load(cfgPath)
	if err != nil {
		t.Fatalf("Load with provider: %v", err)
	}
	if cfg.Providers.OMDb == nil {
		t.Fatal("expected omdb provider configured")
	}
	if cfg.Providers.OMDb.APIKey != "test-omdb-key" {
		t.Errorf("expected omdb key substituted, got %q", cfg.Providers.OMDb.APIKey)
	}
}
