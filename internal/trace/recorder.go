package trace

// Sink is what the selection engine records into.
//
// Record must be inert: it must not panic and cannot fail. Callers must
// assume Record may be a no-op.
type Sink interface {
	Record(event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(Event) {}

// SafeRecord records event and swallows any panic from a buggy sink.
func SafeRecord(s Sink, event Event) {
	if s == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.Record(event)
}

// Recorder collects events in memory.
type Recorder struct {
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(event Event) {
	if r == nil {
		return
	}
	r.events = append(r.events, event)
}

// Trace returns a copy of everything recorded so far.
func (r *Recorder) Trace() SelectionTrace {
	if r == nil {
		return SelectionTrace{}
	}
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return SelectionTrace{Events: out}
}
