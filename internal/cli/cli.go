package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/snyk-tech-services/snyk-sync/pkg/buildinfo"
	"github.com/snyk-tech-services/snyk-sync/pkg/config"
	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
	"github.com/snyk-tech-services/snyk-sync/pkg/integrations"
	"github.com/snyk-tech-services/snyk-sync/pkg/integrations/github"
	"github.com/snyk-tech-services/snyk-sync/pkg/integrations/snyk"
	"github.com/snyk-tech-services/snyk-sync/pkg/quota"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "snyk-sync"

// Environment variables that override the config file.
const (
	envSnykToken   = "SNYK_TOKEN"
	envGitHubToken = "GITHUB_TOKEN"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	getenv     func(string) string

	// clientOpts are passed to every Snyk client. Tests use them to point
	// the clients at a fake server.
	clientOpts []integrations.Option
	githubOpts []github.Option
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		getenv: os.Getenv,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "snyk-sync walks the Snyk API within GitHub rate limits",
		Long:         `snyk-sync fetches paginated collections from the Snyk v1 and v3 APIs with retry and rate-limit handling, and tracks GitHub API quota so large syncs pause before running out.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/snyk-sync/config.toml)")

	root.AddCommand(c.getCommand())
	root.AddCommand(c.v1Command())
	root.AddCommand(c.quotaCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Client Factories
// =============================================================================

// loadConfig reads the config file and applies environment overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if v := c.getenv(envSnykToken); v != "" {
		cfg.Snyk.Token = v
	}
	if v := c.getenv(envGitHubToken); v != "" {
		cfg.GitHub.Token = v
	}
	return cfg, nil
}

func (c *CLI) snykOptions(ctx context.Context) []integrations.Option {
	opts := []integrations.Option{integrations.WithLogger(loggerFromContext(ctx))}
	return append(opts, c.clientOpts...)
}

func (c *CLI) newV3Client(ctx context.Context, cfg *config.Config) (*snyk.Client, error) {
	if cfg.Snyk.Token == "" {
		return nil, apierrors.New(apierrors.ErrCodeInvalidConfig, "no Snyk token: set %s or [snyk] token", envSnykToken)
	}
	return snyk.NewClient(cfg.Snyk, c.snykOptions(ctx)...)
}

func (c *CLI) newV1Client(ctx context.Context, cfg *config.Config) (*snyk.V1Client, error) {
	if cfg.Snyk.Token == "" {
		return nil, apierrors.New(apierrors.ErrCodeInvalidConfig, "no Snyk token: set %s or [snyk] token", envSnykToken)
	}
	return snyk.NewV1Client(cfg.Snyk, c.snykOptions(ctx)...)
}

func (c *CLI) newGovernor(ctx context.Context, cfg *config.Config) (*quota.Governor, error) {
	opts := c.githubOpts
	if cfg.GitHub.BaseURL != "" {
		opts = append([]github.Option{github.WithBaseURL(cfg.GitHub.BaseURL)}, opts...)
	}
	src, err := github.NewClient(cfg.GitHub.Token, opts...)
	if err != nil {
		return nil, err
	}
	return quota.New(ctx, src,
		quota.WithLogger(loggerFromContext(ctx)),
		quota.WithPageSize(cfg.Quota.PageSize),
		quota.WithCategories(cfg.QuotaCategories()...),
	)
}
