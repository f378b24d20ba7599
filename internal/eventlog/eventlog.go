// Package eventlog keeps the in-memory history of fan state changes.
package eventlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies an entry for presentation
type Kind string

const (
	KindAction            Kind = "action"
	KindThresholdExceeded Kind = "threshold_exceeded"
	KindThresholdNormal   Kind = "threshold_normal"
)

// Entry is immutable once appended
type Entry struct {
	ID      string    `json:"id"`
	FanID   string    `json:"fan_id"`
	Message string    `json:"message"`
	Kind    Kind      `json:"kind"`
	Time    time.Time `json:"time"`
}

// Subscriber is called after every append, outside the log's lock
type Subscriber func(Entry)

// Log is an unbounded, most-recent-first list of entries
type Log struct {
	mu      sync.RWMutex
	entries []Entry // oldest first; reversed on read
	subs    []Subscriber
	now     func() time.Time
}

type Option func(*Log)

// WithClock overrides the entry timestamp source
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

func New(opts ...Option) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Subscribe registers fn for future appends
func (l *Log) Subscribe(fn Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.subs = append(l.subs, fn)
}

// Append records a new entry and returns it
func (l *Log) Append(fanID string, kind Kind, message string) Entry {
	e := Entry{
		ID:      uuid.NewString(),
		FanID:   fanID,
		Message: message,
		Kind:    kind,
		Time:    l.now(),
	}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	subs := l.subs
	l.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}

	return e
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}

// Entries returns every entry, newest first
func (l *Log) Entries() []Entry {
	return l.filter("", 0)
}

// ForFan returns the newest limit entries of one fan; limit <= 0 means all
func (l *Log) ForFan(fanID string, limit int) []Entry {
	return l.filter(fanID, limit)
}

func (l *Log) filter(fanID string, limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0, min(len(l.entries), max(limit, 0)))
	for i := len(l.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if fanID != "" && l.entries[i].FanID != fanID {
			continue
		}
		out = append(out, l.entries[i])
	}

	return out
}
