package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
)

// getCommand creates the get command, which walks a v3 collection.
func (c *CLI) getCommand() *cobra.Command {
	var (
		params []string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Fetch every page of a v3 collection",
		Long: `Fetch every page of a v3 collection by following links.next and print
the merged data array as JSON.

Examples:
  snyk-sync get /orgs
  snyk-sync get /orgs/<org-id>/projects --param origin=github --limit 50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if limit <= 0 {
				return apierrors.New(apierrors.ErrCodeInvalidInput, "--limit must be positive")
			}
			p, err := parseParams(params)
			if err != nil {
				return err
			}
			p["limit"] = limit

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			client, err := c.newV3Client(ctx, cfg)
			if err != nil {
				return err
			}

			prog := newProgress(loggerFromContext(ctx))
			records, err := client.GetAllPages(ctx, args[0], p)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Fetched %d records", len(records)))

			if records == nil {
				records = []json.RawMessage{}
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 100, "page size, sent on every request")

	return cmd
}

// parseParams turns key=value flags into request parameters. The values
// "true" and "false" become booleans; repeated keys become lists.
func parseParams(raw []string) (map[string]any, error) {
	out := make(map[string]any, len(raw)+1)
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, apierrors.New(apierrors.ErrCodeInvalidInput, "invalid --param %q: want key=value", kv)
		}

		var val any = v
		switch v {
		case "true":
			val = true
		case "false":
			val = false
		}

		switch prev := out[k].(type) {
		case nil:
			out[k] = val
		case []any:
			out[k] = append(prev, val)
		default:
			out[k] = []any{prev, val}
		}
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
