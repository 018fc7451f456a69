package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Install and resolve the configured bundles and print their wiring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			reports, err := c.app.Resolve(cmd.Context(), path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tBUNDLE\tSTATE\tWIRES")
			for _, r := range reports {
				wires := "-"
				if len(r.Wires) > 0 {
					wires = strings.Join(r.Wires, ", ")
				}
				_, _ = fmt.Fprintf(w, "%d\t%s:%s\t%s\t%s\n", r.ID, r.Name, r.Version, r.State, wires)
			}
			return w.Flush()
		},
	}
}
