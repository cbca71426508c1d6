package cli

import (
	"github.com/spf13/cobra"

	"github.com/snyk-tech-services/snyk-sync/pkg/config"
)

// configCommand creates the config command with subcommands.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(c.configPathCommand())
	return cmd
}

// configPathCommand creates the path subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := c.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			printInfo(out, "%s", path)

			if _, err := c.loadConfig(); err != nil {
				printDetail(out, "%v", err)
			}
			return nil
		},
	}
}
