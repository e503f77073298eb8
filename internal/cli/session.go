package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"psitool/internal/core"
	"psitool/internal/fsutil"
	"psitool/internal/ledger"
	"psitool/internal/logger"
	"psitool/internal/trace"
)

type poolOptions struct {
	filter    core.PoolFilter
	reuse     bool
	seed      uint64
	tracePath string
	open      bool
}

func newPoolCommand(app *App) *cobra.Command {
	var opts poolOptions
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Draw an unseen target and record the session",
		Long: `Draw a target uniformly at random from every eligible target in the
selected pools. Targets already in the completed ledger are skipped unless
--reuse is given. After the reveal the outcome is appended to the ledger.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				return runSession(cmd, app, opts, &opts.seed)
			}
			return runSession(cmd, app, opts, nil)
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&opts.filter.Names, "pool", "p", nil, "the named target pool to read from (repeatable; included unless excluded via label)")
	f.StringVarP(&opts.filter.IncludeLabel, "include-label", "i", "", "include pools carrying this label")
	f.StringVarP(&opts.filter.ExcludeLabel, "exclude-label", "x", "", "exclude pools carrying this label")
	f.BoolVar(&opts.reuse, "reuse", false, "allow targets that were already completed")
	f.Uint64Var(&opts.seed, "seed", 0, "seed the random draw for a reproducible selection")
	f.StringVar(&opts.tracePath, "trace", "", "write the selection decisions as JSON to this file")
	f.BoolVar(&opts.open, "open", false, "open the target in the system viewer after the reveal")
	return cmd
}

func runSession(cmd *cobra.Command, app *App, opts poolOptions, seed *uint64) error {
	if err := app.load(cmd); err != nil {
		return err
	}
	log := app.logger()

	pools, err := core.FilterPools(app.cfg.Pools(), opts.filter, log)
	if err != nil {
		return err
	}
	cache, err := core.LoadHashCache(app.settings.CachePath, log)
	if err != nil {
		return err
	}
	book, err := ledger.Load(app.settings.LedgerPath, log)
	if err != nil {
		return err
	}

	engine := core.NewEngine(cache, log)
	if seed != nil {
		engine.Rand = core.NewSeededRand(*seed)
	}
	var rec *trace.Recorder
	if opts.tracePath != "" {
		rec = trace.NewRecorder()
		engine.Trace = rec
	}

	sel, selErr := engine.Select(pools, book.ExclusionSet(opts.reuse))
	if rec != nil {
		if err := writeTrace(opts.tracePath, rec.Trace()); err != nil {
			log.Warn("could not write trace", logger.String("path", opts.tracePath), logger.Error(err))
		}
	}
	if selErr != nil {
		if errors.Is(selErr, core.ErrEmptyPool) {
			saveCache(cache, app.settings.CachePath, log)
		}
		return selErr
	}

	pres := newPresenter(app.Out, app.NoColor)
	ask := newPrompter(app.In, app.Out, app.NoColor)

	pres.counts(sel)
	pres.announce(sel)
	if _, err := ask.ask(""); err != nil {
		return err
	}
	pres.target(sel)
	if opts.open && app.Open != nil {
		if err := app.Open(sel.Target.Path); err != nil {
			log.Warn("could not open target", logger.String("path", sel.Target.Path), logger.Error(err))
		}
	}

	done := ledger.FromTarget(sel.Target)
	answer, err := ask.ask("Was it a hit ([y]es, [n]o, otherwise not saved/recorded)? ")
	if err != nil {
		return err
	}
	done.Hit = ledger.ParseHit(answer)
	if answer, err = ask.ask("Score out of 100 (0 to 100 or otherwise not saved/recorded)? "); err != nil {
		return err
	}
	done.Score = ledger.ParseScore(answer)
	if answer, err = ask.ask("Any notes? Press enter to end (or blank to not save anything): "); err != nil {
		return err
	}
	done.Notes = ledger.ParseNotes(answer)

	if err := book.AppendAndSave(done, app.settings.LedgerPath); err != nil {
		return err
	}
	log.Info("recorded session", logger.Stringer("target", done))
	if err := cache.Save(app.settings.CachePath); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Recorded %s\n", done.ID)
	return nil
}

func saveCache(cache *core.HashCache, path string, log logger.Logger) {
	if !cache.Dirty() {
		return
	}
	if err := cache.Save(path); err != nil {
		log.Warn("could not save hash cache", logger.String("path", path), logger.Error(err))
	}
}

func writeTrace(path string, t trace.SelectionTrace) error {
	b, err := t.CanonicalJSON()
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, append(b, '\n'), 0o644)
}

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) != 0 {
		return invalidInvocationf("unexpected positional arguments: %q", args)
	}
	return nil
}
