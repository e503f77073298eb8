package core

import (
	"psitool/internal/logger"
	"psitool/internal/rvuid"
)

// Found is one target matching a searched identifier.
type Found struct {
	Query  rvuid.Identifier
	Pool   TargetPool
	Target TargetRecord
}

// Find searches pools, in order, for targets Equal to any of ids. Each match
// is passed to onFound as it is discovered. Unless all is set the search
// stops once every id has matched at least once.
//
// The ids never matched are returned; pools are scanned without exclusion.
func (e *Engine) Find(pools []TargetPool, ids []rvuid.Identifier, all bool, onFound func(Found)) ([]rvuid.Identifier, error) {
	matched := make([]bool, len(ids))
	remaining := len(ids)
	if remaining == 0 {
		return nil, nil
	}

scan:
	for _, p := range pools {
		targets, err := e.list(poolLabel(p), p.Path, nil)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			for i, id := range ids {
				if !id.Equal(t.ID) {
					continue
				}
				if onFound != nil {
					onFound(Found{Query: id, Pool: p, Target: t})
				}
				if !matched[i] {
					matched[i] = true
					remaining--
				}
			}
			if remaining == 0 && !all {
				break scan
			}
		}
	}

	var missing []rvuid.Identifier
	for i, id := range ids {
		if !matched[i] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		e.Log.Debug("identifiers not found", logger.Int("missing", len(missing)))
	}
	return missing, nil
}
