package core

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"psitool/internal/logger"
	"psitool/internal/rvuid"
	"psitool/internal/trace"
)

// Engine scans pools and draws targets. It is single-threaded; one Engine
// serves one invocation.
type Engine struct {
	Cache *HashCache
	Log   logger.Logger

	// Rand drives every random draw. Defaults to an entropy-seeded source.
	Rand Rand

	// Trace receives selection decisions. Defaults to trace.NopSink.
	Trace trace.Sink
}

// NewEngine returns an engine backed by cache.
func NewEngine(cache *HashCache, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	if cache == nil {
		cache = NewHashCache(log)
	}
	return &Engine{
		Cache: cache,
		Log:   log,
		Rand:  NewRand(),
		Trace: trace.NopSink{},
	}
}

// ListTargets returns the eligible targets directly inside root, sorted by
// file name. Targets whose identifier Equals a member of exclusion are
// dropped; a nil exclusion excludes nothing.
//
// Unreadable individual files and malformed sidecars drop only the affected
// target. Failure to read root itself is an ErrIO.
func (e *Engine) ListTargets(root string, exclusion *rvuid.Set) ([]TargetRecord, error) {
	return e.list("", root, exclusion)
}

// CountEligible returns len(ListTargets(root, exclusion)).
func (e *Engine) CountEligible(root string, exclusion *rvuid.Set) (int, error) {
	targets, err := e.ListTargets(root, exclusion)
	if err != nil {
		return 0, err
	}
	return len(targets), nil
}

// PickRandom draws one eligible target from root uniformly at random.
func (e *Engine) PickRandom(root string, exclusion *rvuid.Set) (TargetRecord, error) {
	targets, err := e.ListTargets(root, exclusion)
	if err != nil {
		return TargetRecord{}, err
	}
	return e.pick("", root, targets)
}

func (e *Engine) pick(pool, root string, targets []TargetRecord) (TargetRecord, error) {
	if len(targets) == 0 {
		return TargetRecord{}, emptyPoolError(root)
	}
	t := targets[e.rand().IntN(len(targets))]
	e.record(trace.Event{Kind: trace.EventTargetChosen, Pool: pool, Target: t.ID.String(), Path: t.Path})
	return t, nil
}

func (e *Engine) list(pool, root string, exclusion *rvuid.Set) ([]TargetRecord, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, ioError("resolve pool", root, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, ioError("read pool", abs, err)
	}

	var out []TargetRecord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(abs, name)
		kind := Classify(name)
		if !kind.IsTarget() {
			switch {
			case kind == EntrySidecar:
			case filepath.Ext(name) == "":
				e.Log.Warn("skipping file without extension", logger.String("path", path))
			default:
				e.Log.Debug("ignoring non-target file", logger.String("path", path))
			}
			continue
		}

		id, err := e.Cache.GetOrCompute(path)
		if err != nil {
			e.Log.Warn("skipping unreadable target", logger.String("path", path), logger.Error(err))
			continue
		}
		if exclusion.Contains(id) {
			e.Log.Debug("excluding completed target", logger.Stringer("rvuid", id), logger.String("path", path))
			e.record(trace.Event{Kind: trace.EventTargetExcluded, Pool: pool, Target: id.String(), Path: path, Reason: "InLedger"})
			continue
		}

		rec := TargetRecord{
			ID:   id,
			Path: path,
			Type: kind,
			Meta: map[string]string{},
		}
		sp := SidecarPath(path)
		sc, err := LoadSidecar(sp)
		switch {
		case err == nil:
			rec.MetaPath = sp
			rec.Sidecar = sc
			rec.Frontloading = sc.Frontloading
			rec.Meta = sc.Meta()
		case errors.Is(err, fs.ErrNotExist):
			e.Log.Debug("no metadata for target", logger.String("path", path))
		default:
			e.Log.Warn("dropping target with unusable metadata", logger.String("path", path), logger.Error(err))
			e.record(trace.Event{Kind: trace.EventSidecarRejected, Pool: pool, Target: id.String(), Path: sp, Reason: "SidecarInvalid"})
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (e *Engine) rand() Rand {
	if e.Rand == nil {
		e.Rand = NewRand()
	}
	return e.Rand
}

func (e *Engine) record(ev trace.Event) {
	trace.SafeRecord(e.Trace, ev)
}
