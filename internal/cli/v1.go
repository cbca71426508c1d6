package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snyk-tech-services/snyk-sync/pkg/integrations/snyk"
)

// v1Command creates the v1 command, which walks a Link-header paginated collection.
func (c *CLI) v1Command() *cobra.Command {
	var (
		listField  string
		perPage    int
		perPageKey string
	)

	cmd := &cobra.Command{
		Use:   "v1 <path>",
		Short: "Fetch every page of a v1 collection",
		Long: `Fetch every page of a v1 collection by following rel="next" Link headers.

The list named by --list is concatenated across pages. Every other field
in the printed object comes from the last page.

Examples:
  snyk-sync v1 org/<org-id>/projects --list projects
  snyk-sync v1 "reporting/issues?from=2024-01-01" --list results --per-page 1000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			client, err := c.newV1Client(ctx, cfg)
			if err != nil {
				return err
			}
			pager, err := snyk.PaginatorFor(snyk.V1, client, nil)
			if err != nil {
				return err
			}

			prog := newProgress(loggerFromContext(ctx))
			col, err := pager.Collect(ctx, snyk.PageRequest{
				Path:          args[0],
				ListField:     listField,
				PageSizeParam: perPageKey,
				PageSize:      perPage,
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Fetched %d %s", len(col.Records), listField))

			return writeJSON(cmd.OutOrStdout(), col.Object)
		},
	}

	cmd.Flags().StringVar(&listField, "list", "", "name of the list field to merge across pages (required)")
	cmd.Flags().IntVar(&perPage, "per-page", snyk.DefaultPageSize, "page size")
	cmd.Flags().StringVar(&perPageKey, "per-page-param", snyk.DefaultPageSizeParam, "query parameter carrying the page size")
	_ = cmd.MarkFlagRequired("list")

	return cmd
}
