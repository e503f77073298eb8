package cli

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"psitool/internal/core"
	"psitool/internal/ledger"
)

func newPoolsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List configured pools with their target counts",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(cmd); err != nil {
				return err
			}
			log := app.logger()
			cache, err := core.LoadHashCache(app.settings.CachePath, log)
			if err != nil {
				return err
			}
			book, err := ledger.Load(app.settings.LedgerPath, log)
			if err != nil {
				return err
			}
			engine := core.NewEngine(cache, log)
			exclusion := book.ExclusionSet(false)

			t := table.NewWriter()
			t.SetOutputMirror(app.Out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Path", "Labels", "Targets", "Eligible", "Queries"})
			var total, eligible int
			for _, p := range app.cfg.Pools() {
				all, err := engine.CountEligible(p.Path, nil)
				if err != nil {
					return err
				}
				left, err := engine.CountEligible(p.Path, exclusion)
				if err != nil {
					return err
				}
				total += all
				eligible += left
				t.AppendRow(table.Row{p.Name, p.Path, strings.Join(p.Labels, ", "), all, left, len(p.Queries(nil))})
			}
			t.AppendFooter(table.Row{"", "", "Total", total, eligible, ""})
			t.Render()

			saveCache(cache, app.settings.CachePath, log)
			return nil
		},
	}
}
