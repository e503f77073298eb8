package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"psitool/internal/core"
	"psitool/internal/logger"
	"psitool/internal/rvuid"
)

func newGenCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "gen <path>...",
		Short: "Print the identifier of each file",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := app.logger()
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return core.IOError("stat", path, err)
				}
				if info.IsDir() {
					log.Debug("skipping directory", logger.String("path", path))
					continue
				}
				id, err := rvuid.FromFile(path)
				if err != nil {
					return core.IOError("hash", path, err)
				}
				fmt.Fprintf(app.Out, "%s = %s\n", path, id)
			}
			return nil
		},
	}
}
