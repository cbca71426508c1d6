package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/snyk-tech-services/snyk-sync/pkg/quota"
)

// quotaCommand creates the quota command.
func (c *CLI) quotaCommand() *cobra.Command {
	var (
		planned  int
		category string
	)

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Show GitHub API rate-limit usage",
		Long: `Show GitHub API rate-limit usage per category.

The calls already spent when the command starts are reported as the tare.
With --planned, the command first checks whether that many items fit in
the remaining quota and sleeps until the window resets if they do not.

Examples:
  snyk-sync quota
  snyk-sync quota --planned 12000 --category core`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			gov, err := c.newGovernor(ctx, cfg)
			if err != nil {
				return err
			}

			if planned > 0 {
				gov.AddCalls(planned)
				wait, err := gov.CheckPlanned(ctx, quota.Category(category))
				if err != nil {
					return err
				}
				if wait > 0 {
					printWarning(out, "Waited %s for the %s window to reset", wait, category)
				} else {
					printSuccess(out, "%d items fit in the remaining %s quota", planned, category)
				}
			}

			if err := gov.Update(ctx, true); err != nil {
				return err
			}
			now := time.Now()
			for _, s := range gov.Snapshots() {
				printSnapshot(out, s, now)
			}
			gov.Total()
			return nil
		},
	}

	cmd.Flags().IntVar(&planned, "planned", 0, "number of items about to be processed")
	cmd.Flags().StringVar(&category, "category", string(quota.Core), "quota category to check")

	return cmd
}
