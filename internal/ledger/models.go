package ledger

import (
	"errors"
	"fmt"
	"strings"

	"psitool/internal/core"
	"psitool/internal/rvuid"
)

// MaxScore is the highest score a session may record.
const MaxScore = 100

// CompletedTarget is one finished session.
//
// Hit, Score and Notes are optional: nil means the viewer chose not to record
// that answer.
type CompletedTarget struct {
	ID       rvuid.Identifier `yaml:"rvuid"`
	Path     string           `yaml:"path"`
	MetaPath *string          `yaml:"meta_path,omitempty"`
	Hit      *bool            `yaml:"hit,omitempty"`
	Score    *int             `yaml:"score,omitempty"`
	Notes    *string          `yaml:"notes,omitempty"`
}

// FromTarget starts a record for a target that is about to be revealed.
func FromTarget(t core.TargetRecord) CompletedTarget {
	rec := CompletedTarget{ID: t.ID, Path: t.Path}
	if t.MetaPath != "" {
		mp := t.MetaPath
		rec.MetaPath = &mp
	}
	return rec
}

func (c CompletedTarget) Validate() error {
	var errs []error
	if c.ID.IsZero() {
		errs = append(errs, errors.New("rvuid is required"))
	}
	if strings.TrimSpace(c.Path) == "" {
		errs = append(errs, errors.New("path is required"))
	}
	if c.Score != nil && !validScore(*c.Score) {
		errs = append(errs, fmt.Errorf("score %d out of range 0..%d", *c.Score, MaxScore))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func validScore(score int) bool {
	return score >= 0 && score <= MaxScore
}

func (c CompletedTarget) String() string {
	if c.Hit != nil {
		return fmt.Sprintf("CompletedTarget[%s, %t]", c.ID, *c.Hit)
	}
	return fmt.Sprintf("CompletedTarget[%s]", c.ID)
}
