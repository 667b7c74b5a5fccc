package eventlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
	LevelSuccess Level = "SUCCESS"
)

// Entry is immutable once appended.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
}

const defaultCapacity = 100

// Sink is a bounded, newest-first ring of dashboard event records.
// Oldest entries are evicted once the capacity is exceeded.
type Sink struct {
	mu      sync.RWMutex
	cap     int
	entries []Entry
	now     func() time.Time
}

func NewSink() *Sink {
	return &Sink{
		cap: defaultCapacity,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithNow injects deterministic time for tests.
func (s *Sink) WithNow(now func() time.Time) *Sink {
	s.now = now
	return s
}

func (s *Sink) Append(level Level, message string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: s.now(),
		Level:     level,
		Message:   message,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append([]Entry{entry}, s.entries...)
	if len(s.entries) > s.cap {
		s.entries = s.entries[:s.cap]
	}
	return entry
}

func (s *Sink) Appendf(level Level, format string, args ...interface{}) Entry {
	return s.Append(level, fmt.Sprintf(format, args...))
}

// List returns entries newest first. Callers needing chronological order
// must reverse the result themselves.
func (s *Sink) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
