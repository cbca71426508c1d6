package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
	"github.com/snyk-tech-services/snyk-sync/pkg/quota"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
[snyk]
token = "snyk-token"
base_url = "https://api.eu.snyk.io/v3"
retry_attempts = 3
retry_delay = "2s"
retry_backoff = 1.5
max_pages = 50

[github]
token = "gh-token"

[quota]
page_size = 50
categories = ["core"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Snyk.Token != "snyk-token" || cfg.Snyk.BaseURL != "https://api.eu.snyk.io/v3" {
		t.Errorf("snyk = %+v", cfg.Snyk)
	}
	if cfg.Snyk.RetryAttempts != 3 || cfg.Snyk.RetryDelay != 2*time.Second || cfg.Snyk.RetryBackoff != 1.5 {
		t.Errorf("retry = %d/%v/%v", cfg.Snyk.RetryAttempts, cfg.Snyk.RetryDelay, cfg.Snyk.RetryBackoff)
	}
	if cfg.Snyk.MaxPages != 50 {
		t.Errorf("max_pages = %d, want 50", cfg.Snyk.MaxPages)
	}
	if cfg.GitHub.Token != "gh-token" {
		t.Errorf("github token = %q", cfg.GitHub.Token)
	}
	if cfg.Quota.PageSize != 50 {
		t.Errorf("page_size = %d, want 50", cfg.Quota.PageSize)
	}
	cats := cfg.QuotaCategories()
	if len(cats) != 1 || cats[0] != quota.Core {
		t.Errorf("categories = %v, want [core]", cats)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeFile(t, "[snyk]\ntokn = \"typo\"\n")
	_, err := Load(path)
	if !apierrors.Is(err, apierrors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !apierrors.Is(err, apierrors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Snyk.Token != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
	if got := cfg.QuotaCategories(); len(got) != 2 {
		t.Errorf("default categories = %v", got)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	if want := filepath.Join(dir, "snyk-sync", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
