package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kern/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	var once, watch bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot the framework and start the configured bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			return c.app.Run(cmd.Context(), path, app.RunOptions{Once: once, Watch: watch})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Shut down right after boot instead of waiting for a signal")
	cmd.Flags().BoolVar(&watch, "watch", false, "Update and refresh bundles when their content changes")
	return cmd
}
