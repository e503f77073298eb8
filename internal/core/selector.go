package core

import (
	"math/rand/v2"

	"psitool/internal/logger"
	"psitool/internal/rvuid"
	"psitool/internal/trace"
)

// Rand is the random source used for every draw. *rand.Rand satisfies it.
type Rand interface {
	// IntN returns a uniform value in [0, n). n is always positive.
	IntN(n int) int
}

// NewRand returns a source seeded from the runtime's entropy.
func NewRand() Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSeededRand returns a reproducible source.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// PoolCount is one pool's eligible-target count.
type PoolCount struct {
	Pool  TargetPool
	Count int
}

// Selection is the result of Select.
type Selection struct {
	Pool   TargetPool
	Target TargetRecord
	Counts []PoolCount
}

// Total sums the eligible counts over every pool considered.
func (s Selection) Total() int {
	total := 0
	for _, c := range s.Counts {
		total += c.Count
	}
	return total
}

type poolListing struct {
	pool    TargetPool
	targets []TargetRecord
}

// ChoosePool draws a pool with probability proportional to its eligible
// count. Pools with nothing eligible never win; if every pool is empty the
// result is ErrEmptyPool.
func (e *Engine) ChoosePool(pools []TargetPool, exclusion *rvuid.Set) (TargetPool, error) {
	listings, err := e.listAll(pools, exclusion)
	if err != nil {
		return TargetPool{}, err
	}
	chosen, err := e.choose(listings)
	if err != nil {
		return TargetPool{}, err
	}
	return chosen.pool, nil
}

// Select chooses a pool as ChoosePool does and then a target inside it as
// PickRandom does, scanning each pool once.
func (e *Engine) Select(pools []TargetPool, exclusion *rvuid.Set) (Selection, error) {
	listings, err := e.listAll(pools, exclusion)
	if err != nil {
		return Selection{}, err
	}
	sel := Selection{Counts: make([]PoolCount, 0, len(listings))}
	for _, l := range listings {
		sel.Counts = append(sel.Counts, PoolCount{Pool: l.pool, Count: len(l.targets)})
	}

	chosen, err := e.choose(listings)
	if err != nil {
		return sel, err
	}
	target, err := e.pick(poolLabel(chosen.pool), chosen.pool.Path, chosen.targets)
	if err != nil {
		return sel, err
	}
	sel.Pool = chosen.pool
	sel.Target = target
	e.Log.Info("chose target", logger.String("pool", poolLabel(chosen.pool)), logger.Stringer("rvuid", target.ID))
	return sel, nil
}

func (e *Engine) listAll(pools []TargetPool, exclusion *rvuid.Set) ([]poolListing, error) {
	out := make([]poolListing, 0, len(pools))
	for _, p := range pools {
		targets, err := e.list(poolLabel(p), p.Path, exclusion)
		if err != nil {
			return nil, err
		}
		e.Log.Info("counted pool", logger.String("pool", poolLabel(p)), logger.String("path", p.Path), logger.Int("eligible", len(targets)))
		e.record(trace.Event{Kind: trace.EventPoolCounted, Pool: poolLabel(p), Path: p.Path, Count: len(targets)})
		out = append(out, poolListing{pool: p, targets: targets})
	}
	return out, nil
}

func (e *Engine) choose(listings []poolListing) (poolListing, error) {
	weights := make([]int, len(listings))
	total := 0
	for i, l := range listings {
		weights[i] = len(l.targets)
		total += weights[i]
	}
	if total == 0 {
		return poolListing{}, emptyPoolError("")
	}
	idx := weightedIndex(weights, total, e.rand())
	chosen := listings[idx]
	e.record(trace.Event{Kind: trace.EventPoolChosen, Pool: poolLabel(chosen.pool), Path: chosen.pool.Path, Count: total})
	return chosen, nil
}

// weightedIndex draws d uniformly in [0, total) and returns the first index
// whose cumulative weight exceeds d. total must be the positive sum of
// weights.
func weightedIndex(weights []int, total int, r Rand) int {
	d := r.IntN(total)
	cum := 0
	for i, w := range weights {
		cum += w
		if d < cum {
			return i
		}
	}
	return len(weights) - 1
}

func poolLabel(p TargetPool) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Path
}
