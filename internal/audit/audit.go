// Package audit keeps a bounded, in-memory record of operations performed
// through the HTTP layer.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is used when a Log is created with a non-positive capacity
const DefaultCapacity = 1000

// Outcome of an audited operation
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
)

// Event is a single audit record
type Event struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Action   string    `json:"action"`
	Subject  string    `json:"subject,omitempty"`
	Outcome  string    `json:"outcome"`
	Degraded bool      `json:"degraded"`
	Detail   string    `json:"detail,omitempty"`
}

// Filter narrows a Query. Zero values match everything.
type Filter struct {
	Action  string
	Subject string
	Outcome string
	Since   time.Time
	Limit   int
}

func (f Filter) matches(e Event) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Subject != "" && e.Subject != f.Subject {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if !f.Since.IsZero() && e.Time.Before(f.Since) {
		return false
	}
	return true
}

// Log is a fixed-capacity ring buffer of events. Once full, each Append
// overwrites the oldest event. Safe for concurrent use.
type Log struct {
	mu     sync.RWMutex
	events []Event
	next   int
	full   bool
	now    func() time.Time
}

// New creates a Log holding at most capacity events
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		events: make([]Event, capacity),
		now:    time.Now,
	}
}

// Append records an event, filling in ID and Time when unset, and returns
// the stored copy.
func (l *Log) Append(e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e.Time.IsZero() {
		e.Time = l.now().UTC()
	}
	l.events[l.next] = e
	l.next = (l.next + 1) % len(l.events)
	if l.next == 0 {
		l.full = true
	}
	return e
}

// Len returns the number of events currently held
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.full {
		return len(l.events)
	}
	return l.next
}

// Capacity returns the maximum number of events held
func (l *Log) Capacity() int {
	return len(l.events)
}

// Query returns matching events, newest first
func (l *Log) Query(f Filter) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := l.next
	if l.full {
		n = len(l.events)
	}

	out := make([]Event, 0, min(n, max(f.Limit, 0)))
	for i := 0; i < n; i++ {
		idx := (l.next - 1 - i + len(l.events)) % len(l.events)
		e := l.events[idx]
		if !f.matches(e) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}
