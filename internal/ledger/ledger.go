// Package ledger persists completed sessions. The ledger's identifiers form
// the exclusion set that keeps a viewer from being shown a target twice.
package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"psitool/internal/core"
	"psitool/internal/fsutil"
	"psitool/internal/logger"
	"psitool/internal/rvuid"
)

// Ledger is the in-memory sequence of completed targets, in the order they
// were appended.
//
// The file is rewritten whole on every save. Two processes appending to the
// same ledger race and the last writer wins.
type Ledger struct {
	entries []CompletedTarget
	log     logger.Logger
}

// New returns an empty ledger.
func New(log logger.Logger) *Ledger {
	if log == nil {
		log = logger.NewNop()
	}
	return &Ledger{log: log}
}

// Load reads the ledger at path. A missing file is an empty ledger; an
// unparsable file or a record without rvuid or path is a core.ErrFormat. A
// score outside 0..MaxScore loads as unset.
func Load(path string, log logger.Logger) (*Ledger, error) {
	l := New(log)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Debug("no ledger yet", logger.String("path", path))
			return l, nil
		}
		return nil, core.IOError("read ledger", path, err)
	}

	var entries []CompletedTarget
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, core.FormatError("parse ledger", path, err)
	}
	for i := range entries {
		e := &entries[i]
		if e.Score != nil && !validScore(*e.Score) {
			l.log.Warn("dropping out-of-range score",
				logger.Stringer("rvuid", e.ID), logger.Int("score", *e.Score))
			e.Score = nil
		}
		if err := e.Validate(); err != nil {
			return nil, core.FormatError("parse ledger", path, fmt.Errorf("entry %d: %w", i, err))
		}
	}
	l.entries = entries
	l.log.Debug("loaded ledger", logger.String("path", path), logger.Int("entries", len(entries)))
	return l, nil
}

// Entries returns a copy of the records.
func (l *Ledger) Entries() []CompletedTarget {
	out := make([]CompletedTarget, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Len() int { return len(l.entries) }

// ExclusionSet returns the identifiers of every completed target. With reuse
// set the result is empty so completed targets become eligible again.
func (l *Ledger) ExclusionSet(reuse bool) *rvuid.Set {
	set := rvuid.NewSet()
	if reuse {
		return set
	}
	for _, e := range l.entries {
		set.Add(e.ID)
	}
	return set
}

// Append adds rec after validating it.
func (l *Ledger) Append(rec CompletedTarget) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid completed target: %w", err)
	}
	l.entries = append(l.entries, rec)
	return nil
}

// Save writes the full sequence to path, replacing the file atomically.
func (l *Ledger) Save(path string) error {
	entries := l.entries
	if entries == nil {
		entries = []CompletedTarget{}
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return core.FormatError("encode ledger", path, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return core.IOError("write ledger", path, err)
	}
	l.log.Info("wrote completed targets", logger.String("path", path), logger.Int("count", len(entries)))
	return nil
}

// AppendAndSave appends rec and persists the whole ledger.
func (l *Ledger) AppendAndSave(rec CompletedTarget, path string) error {
	if err := l.Append(rec); err != nil {
		return err
	}
	return l.Save(path)
}
