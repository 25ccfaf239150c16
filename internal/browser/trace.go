package browser

import (
	"sync"
	"time"
)

// TraceEntry records one automation action.
type TraceEntry struct {
	Action   string        `json:"action"`
	Target   string        `json:"target,omitempty"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// Tracer collects action entries when enabled.
type Tracer struct {
	mu      sync.Mutex
	enabled bool
	entries []TraceEntry
}

// NewTracer returns a tracer that records only when enabled is true.
func NewTracer(enabled bool) *Tracer {
	return &Tracer{enabled: enabled}
}

// Record appends an entry if tracing is on.
func (t *Tracer) Record(action, target string, start time.Time, err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}

	entry := TraceEntry{
		Action:   action,
		Target:   target,
		Start:    start,
		Duration: time.Since(start),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	t.entries = append(t.entries, entry)
}

// Entries returns a copy of the recorded actions.
func (t *Tracer) Entries() []TraceEntry {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
