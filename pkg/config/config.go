// Package config loads snyk-sync settings from a TOML file.
//
// The default location follows the XDG convention:
// $XDG_CONFIG_HOME/snyk-sync/config.toml, falling back to
// ~/.config/snyk-sync/config.toml.
//
//	[snyk]
//	token = "..."
//	retry_attempts = 3
//	retry_delay = "2s"
//
//	[github]
//	token = "..."
//
//	[quota]
//	page_size = 100
//	categories = ["core", "search"]
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
	"github.com/snyk-tech-services/snyk-sync/pkg/integrations/snyk"
	"github.com/snyk-tech-services/snyk-sync/pkg/quota"
)

const (
	appName  = "snyk-sync"
	fileName = "config.toml"
)

// Config is the on-disk configuration.
type Config struct {
	Snyk   snyk.Config `toml:"snyk"`
	GitHub GitHub      `toml:"github"`
	Quota  Quota       `toml:"quota"`
}

// GitHub configures the rate-limit source.
type GitHub struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

// Quota configures the governor.
type Quota struct {
	PageSize   int      `toml:"page_size"`
	Categories []string `toml:"categories"`
}

// QuotaCategories returns the configured categories, or the defaults.
func (c *Config) QuotaCategories() []quota.Category {
	if len(c.Quota.Categories) == 0 {
		return quota.DefaultCategories
	}
	out := make([]quota.Category, 0, len(c.Quota.Categories))
	for _, s := range c.Quota.Categories {
		out = append(out, quota.Category(strings.TrimSpace(s)))
	}
	return out
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config at path. An empty path means [DefaultPath], and a
// missing default file yields an empty Config. An explicitly named file
// must exist. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return &Config{}, nil
		}
		path = p
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "load %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, apierrors.New(apierrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &cfg, nil
}
