// Package trace records the logical decisions taken while selecting a target:
// which pools were counted, which targets were excluded or rejected, which
// pool won the weighted draw and which target was drawn from it.
//
// A trace never contains timestamps, so two selections made with the same
// seed over the same files encode to identical bytes.
package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// EventKind is the stable discriminator of an Event. The string values are
// part of the encoded bytes; do not rename.
type EventKind string

const (
	EventPoolCounted     EventKind = "PoolCounted"
	EventTargetExcluded  EventKind = "TargetExcluded"
	EventSidecarRejected EventKind = "SidecarRejected"
	EventPoolChosen      EventKind = "PoolChosen"
	EventTargetChosen    EventKind = "TargetChosen"
)

// Event is a single decision.
type Event struct {
	Kind EventKind

	// Pool names the pool the event refers to, when there is one.
	Pool string

	// Target is the display form of the target identifier.
	Target string

	// Path is the file the event refers to.
	Path string

	// Count carries the eligible-target count for PoolCounted and the
	// cumulative weight total for PoolChosen.
	Count int

	// Reason is a short stable code such as "InLedger" or "SidecarInvalid".
	Reason string
}

// SelectionTrace is the ordered record of one selection. Events stay in the
// order they were recorded; selection is single-threaded so that order is the
// order of the decisions.
type SelectionTrace struct {
	Events []Event
}

// Validate checks that every event names its kind and, for target events,
// the target.
func (t *SelectionTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	for i, e := range t.Events {
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		switch e.Kind {
		case EventTargetExcluded, EventTargetChosen:
			if e.Target == "" {
				return fmt.Errorf("events[%d].target is required for kind %q", i, e.Kind)
			}
		case EventPoolCounted, EventPoolChosen:
			if e.Pool == "" {
				return fmt.Errorf("events[%d].pool is required for kind %q", i, e.Kind)
			}
		}
	}
	return nil
}

// CanonicalJSON returns the stable encoding of the trace.
func (t SelectionTrace) CanonicalJSON() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(t)
}

// Digest returns the hex sha256 of the canonical encoding.
func (t SelectionTrace) Digest() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeDigest(b), nil
}

// MarshalJSON fixes field order.
func (t SelectionTrace) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"events":[`)
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// MarshalJSON fixes field order and omits empty optional fields.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeField(&buf, "kind", string(e.Kind), true)
	writeField(&buf, "pool", e.Pool, false)
	writeField(&buf, "target", e.Target, false)
	writeField(&buf, "path", e.Path, false)
	if e.Count != 0 {
		fmt.Fprintf(&buf, `,"count":%d`, e.Count)
	}
	writeField(&buf, "reason", e.Reason, false)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key, val string, first bool) {
	if val == "" && !first {
		return
	}
	if !first {
		buf.WriteByte(',')
	}
	kb, _ := json.Marshal(key)
	vb, _ := json.Marshal(val)
	buf.Write(kb)
	buf.WriteByte(':')
	buf.Write(vb)
}
