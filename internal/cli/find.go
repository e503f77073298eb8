package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"psitool/internal/core"
	"psitool/internal/rvuid"
)

func newFindCommand(app *App) *cobra.Command {
	var findDupes bool
	cmd := &cobra.Command{
		Use:   "find <rvuid>...",
		Short: "Locate targets by identifier across every pool",
		Long: `Search every configured pool for the given identifiers. Abbreviated
identifiers (R-XXXX-YYYY) match any target sharing their prefix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return nil
			}
			ids := make([]rvuid.Identifier, 0, len(args))
			for _, a := range args {
				id, err := rvuid.Parse(a)
				if err != nil {
					return invalidInvocationf("%v", err)
				}
				ids = append(ids, id)
			}
			if err := app.load(cmd); err != nil {
				return err
			}
			log := app.logger()
			cache, err := core.LoadHashCache(app.settings.CachePath, log)
			if err != nil {
				return err
			}

			engine := core.NewEngine(cache, log)
			missing, err := engine.Find(app.cfg.Pools(), ids, findDupes, func(f core.Found) {
				fmt.Fprintf(app.Out, "%s found at: %s\n", f.Target.ID, f.Target.Path)
			})
			saveCache(cache, app.settings.CachePath, log)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, id := range missing {
					names = append(names, id.String())
				}
				return core.NotFoundf("missing: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&findDupes, "find-dupes", "D", false, "keep searching even if every identifier was found (find potential dupes)")
	return cmd
}
