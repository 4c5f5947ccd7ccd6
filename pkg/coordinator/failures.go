package coordinator

import (
	"errors"
	"sync"
	"time"
)

type FailureEntry struct {
	Time    time.Time
	Op      Op
	Index   int
	Message string
}

// FailureLog keeps the most recent failures reported by a coordinator.
type FailureLog struct {
	lock     sync.Mutex
	entries  []FailureEntry
	capacity int

	now func() time.Time
}

func NewFailureLog(capacity int) *FailureLog {
	if capacity < 1 {
		capacity = 1
	}

	return &FailureLog{
		entries:  []FailureEntry{},
		capacity: capacity,

		now: time.Now,
	}
}

// Add can be used as a coordinator's failure hook.
func (l *FailureLog) Add(err error) {
	entry := FailureEntry{
		Index:   -1,
		Message: err.Error(),
	}

	var f *Failure
	if errors.As(err, &f) {
		entry.Op = f.Op
		entry.Index = f.Index
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	entry.Time = l.now()

	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = append([]FailureEntry{}, l.entries[len(l.entries)-l.capacity:]...)
	}
}

// List returns the failures, oldest first.
func (l *FailureLog) List() []FailureEntry {
	l.lock.Lock()
	defer l.lock.Unlock()

	return append([]FailureEntry{}, l.entries...)
}
