package core

import (
	"slices"

	"psitool/internal/logger"
)

// DefaultQueryLimit applies when neither the query nor the pool sets a limit.
const DefaultQueryLimit = 10

// TargetPool is a named directory of targets.
type TargetPool struct {
	// Name is the key the pool is defined under.
	Name string `yaml:"-"`

	Path   string   `yaml:"path"`
	Labels []string `yaml:"labels"`

	Wiki             *WikiConfig `yaml:"wiki,omitempty"`
	WikiDefaultLimit *int        `yaml:"wiki_default_limit,omitempty"`
}

// WikiConfig lists the acquisition queries used to populate a pool.
type WikiConfig struct {
	DefaultLimit *int          `yaml:"default_limit,omitempty"`
	Queries      []QueryConfig `yaml:"queries"`
}

// QueryConfig is one configured acquisition query. A nil Limit defers to the
// pool defaults.
type QueryConfig struct {
	Query string `yaml:"query"`
	Limit *int   `yaml:"limit,omitempty"`
}

// Query is an acquisition query with its resolved limit.
type Query struct {
	Text  string
	Limit int
}

// HasLabel reports whether the pool carries label.
func (p TargetPool) HasLabel(label string) bool {
	return slices.Contains(p.Labels, label)
}

// Queries resolves every acquisition query's limit. Precedence, highest
// first: override, the query's own limit, wiki.default_limit,
// wiki_default_limit, DefaultQueryLimit.
func (p TargetPool) Queries(override *int) []Query {
	if p.Wiki == nil {
		return nil
	}
	fallback := DefaultQueryLimit
	if p.WikiDefaultLimit != nil {
		fallback = *p.WikiDefaultLimit
	}
	if p.Wiki.DefaultLimit != nil {
		fallback = *p.Wiki.DefaultLimit
	}

	out := make([]Query, 0, len(p.Wiki.Queries))
	for _, q := range p.Wiki.Queries {
		limit := fallback
		if q.Limit != nil {
			limit = *q.Limit
		}
		if override != nil {
			limit = *override
		}
		out = append(out, Query{Text: q.Query, Limit: limit})
	}
	return out
}

// PoolFilter narrows the configured pools for one selection.
type PoolFilter struct {
	Names        []string
	IncludeLabel string
	ExcludeLabel string
}

func (f PoolFilter) empty() bool {
	return len(f.Names) == 0 && f.IncludeLabel == "" && f.ExcludeLabel == ""
}

// FilterPools applies f to pools, preserving their order. Rules, first match
// wins: a pool carrying the exclude label is dropped; a pool named in
// f.Names is kept; a pool carrying the include label is kept; with no filter
// at all every pool is kept. Naming a pool that does not exist is an error.
func FilterPools(pools []TargetPool, f PoolFilter, log logger.Logger) ([]TargetPool, error) {
	if log == nil {
		log = logger.NewNop()
	}
	for _, name := range f.Names {
		if !slices.ContainsFunc(pools, func(p TargetPool) bool { return p.Name == name }) {
			return nil, notFoundf("pool %q is not configured", name)
		}
	}

	var out []TargetPool
	for _, p := range pools {
		switch {
		case f.ExcludeLabel != "" && p.HasLabel(f.ExcludeLabel):
			log.Info("excluding pool by label", logger.String("pool", p.Name), logger.String("label", f.ExcludeLabel))
		case slices.Contains(f.Names, p.Name):
			log.Info("including pool by name", logger.String("pool", p.Name))
			out = append(out, p)
		case f.IncludeLabel != "" && p.HasLabel(f.IncludeLabel):
			log.Info("including pool by label", logger.String("pool", p.Name), logger.String("label", f.IncludeLabel))
			out = append(out, p)
		case f.empty():
			log.Debug("including pool, no filters given", logger.String("pool", p.Name))
			out = append(out, p)
		}
	}
	log.Info("matched target pools", logger.Int("count", len(out)))
	return out, nil
}
