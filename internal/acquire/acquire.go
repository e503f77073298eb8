package acquire

import (
	"context"

	"psitool/internal/core"
	"psitool/internal/logger"
)

// Summary counts the outcome of one Run.
type Summary struct {
	Queries    int
	Results    int
	Saved      int
	Downloaded int
	Skipped    int
	Failed     int
}

// Run executes every acquisition query of pool, saving results into the
// pool's directory. limitOverride, when set, replaces every query's limit.
//
// A failed search aborts the run; a failed download is logged, counted and
// skipped.
func (c *Client) Run(ctx context.Context, pool core.TargetPool, limitOverride *int) (Summary, error) {
	var sum Summary
	log := c.log.With(logger.String("pool", pool.Name))
	for _, q := range pool.Queries(limitOverride) {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Queries++
		log.Info("running query", logger.String("query", q.Text), logger.Int("limit", q.Limit))

		pages, err := c.Search(ctx, q.Text, q.Limit)
		if err != nil {
			return sum, err
		}
		sum.Results += len(pages)

		for _, page := range pages {
			saved, ok, err := c.Save(ctx, q.Text, page, pool.Path)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return sum, ctx.Err()
				}
				sum.Failed++
				log.Warn("failed to save page", logger.Stringer("page", page), logger.Error(err))
			case !ok:
				sum.Skipped++
				log.Warn("nothing saved for page", logger.Stringer("page", page))
			default:
				sum.Saved++
				if saved.Downloaded {
					sum.Downloaded++
				}
				log.Info("saved target", logger.String("path", saved.Path), logger.String("meta", saved.MetaPath))
			}
		}
	}
	return sum, nil
}
