package libclock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by explicit Advance calls. Callbacks fire
// synchronously inside Advance, in due-time order (schedule order breaks
// ties), so tests observe deterministic interleavings.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []manualEntry
}

type manualEntry struct {
	due time.Time
	seq int
	fn  func()
}

func NewManual() *Manual {
	return &Manual{now: time.Unix(0, 0)}
}

func (m *Manual) Schedule(delay time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.pending = append(m.pending, manualEntry{due: m.now.Add(delay), seq: m.seq, fn: fn})
}

// Advance moves the clock forward by d and fires every callback whose due
// time has been reached. Callbacks may schedule further callbacks; those
// fire too if they fall within the advanced window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()

	for {
		fn, ok := m.popDue()
		if !ok {
			return
		}
		fn()
	}
}

// Pending reports how many callbacks are still scheduled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *Manual) popDue() (func(), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].due.Equal(m.pending[j].due) {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].due.Before(m.pending[j].due)
	})

	if len(m.pending) == 0 || m.pending[0].due.After(m.now) {
		return nil, false
	}
	entry := m.pending[0]
	m.pending = m.pending[1:]
	return entry.fn, true
}
