package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"psitool/internal/acquire"
	"psitool/internal/core"
	"psitool/internal/logger"
)

func newDownloadCommand(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "download <pool>",
		Short: "Fill a pool from its configured Wikimedia Commons queries",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return invalidInvocationf("download takes exactly one pool name, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(cmd); err != nil {
				return err
			}
			log := app.logger()
			pool, ok := app.cfg.Pool(args[0])
			if !ok {
				log.Warn("pool not configured", logger.String("pool", args[0]), logger.Strings("pools", app.cfg.PoolNames()))
				return core.NotFoundf("pool %q not found", args[0])
			}
			var override *int
			if cmd.Flags().Changed("limit") {
				if limit < 0 {
					return invalidInvocationf("--limit must be >= 0")
				}
				override = &limit
			}

			client := acquire.NewClient(app.Acquire, log)
			sum, err := client.Run(cmd.Context(), pool, override)
			fmt.Fprintf(app.Out, "%s: %d queries, %d results, %d saved (%d new), %d skipped, %d failed\n",
				pool.Name, sum.Queries, sum.Results, sum.Saved, sum.Downloaded, sum.Skipped, sum.Failed)
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "override every query's limit")
	return cmd
}
