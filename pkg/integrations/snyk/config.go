package snyk

import (
	"time"

	"github.com/snyk-tech-services/snyk-sync/pkg/buildinfo"
	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
	"github.com/snyk-tech-services/snyk-sync/pkg/httputil"
	"github.com/snyk-tech-services/snyk-sync/pkg/integrations"
)

const (
	// DefaultBaseURL is the v3 REST API root.
	DefaultBaseURL = "https://api.snyk.io/v3"

	// DefaultV1BaseURL is the legacy v1 API root.
	DefaultV1BaseURL = "https://snyk.io/api/v1"

	// DefaultVersion is the v3 API version tag sent when the caller gives none.
	DefaultVersion = "2021-08-20~beta"

	// DefaultMaxPages bounds a single pagination walk.
	DefaultMaxPages = 10000

	// DefaultPageSizeParam and DefaultPageSize are used by the v1 header walk.
	DefaultPageSizeParam = "perPage"
	DefaultPageSize      = 100
)

// Config holds the settings shared by the v1 and v3 clients. Zero values
// fall back to the defaults above; a Config is copied into each client and
// never modified afterwards.
type Config struct {
	BaseURL   string `toml:"base_url"`
	V1BaseURL string `toml:"v1_base_url"`
	Token     string `toml:"token"`
	Version   string `toml:"version"`
	UserAgent string `toml:"user_agent"`

	RetryAttempts int           `toml:"retry_attempts"`
	RetryDelay    time.Duration `toml:"retry_delay"`
	RetryBackoff  float64       `toml:"retry_backoff"`

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	MaxPages          int     `toml:"max_pages"`
}

// DefaultUserAgent identifies this build to the API.
func DefaultUserAgent() string {
	return "snyk-sync/" + buildinfo.Version
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.V1BaseURL == "" {
		c.V1BaseURL = DefaultV1BaseURL
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent()
	}
	if c.RetryAttempts < 1 {
		c.RetryAttempts = httputil.DefaultPolicy.Attempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = httputil.DefaultPolicy.Delay
	}
	if c.RetryBackoff < 1 {
		c.RetryBackoff = httputil.DefaultPolicy.Multiplier
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	return c
}

func (c Config) validate() error {
	if c.Token == "" {
		return apierrors.New(apierrors.ErrCodeInvalidConfig, "API token is required")
	}
	if err := apierrors.ValidateURL(c.BaseURL); err != nil {
		return apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "base_url")
	}
	if err := apierrors.ValidateURL(c.V1BaseURL); err != nil {
		return apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "v1_base_url")
	}
	return nil
}

// Policy returns the retry policy described by the config.
func (c Config) Policy() httputil.Policy {
	c = c.withDefaults()
	return httputil.Policy{
		Attempts:   c.RetryAttempts,
		Delay:      c.RetryDelay,
		Multiplier: c.RetryBackoff,
	}
}

// newAPI builds the executor for cfg. Caller options are applied after the
// ones derived from cfg so tests can swap the transport or sleep.
func newAPI(cfg Config, opts []integrations.Option) *integrations.Client {
	headers := map[string]string{
		"Authorization": "token " + cfg.Token,
		"User-Agent":    cfg.UserAgent,
	}
	base := []integrations.Option{
		integrations.WithRetryPolicy(cfg.Policy()),
		integrations.WithRateLimit(cfg.RequestsPerSecond, 1),
	}
	return integrations.NewClient(headers, append(base, opts...)...)
}
