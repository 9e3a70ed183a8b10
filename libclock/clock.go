// Package libclock abstracts delayed callback scheduling so the chat core's
// simulated thinking delays can run on real timers in production and on a
// manually advanced clock in tests. There is no cancellation: once
// scheduled, a callback always fires.
package libclock

import "time"

// Scheduler runs fn once after delay has elapsed.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// System schedules on real timers; each callback fires on its own goroutine.
type System struct{}

func NewSystem() *System {
	return &System{}
}

func (s *System) Schedule(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}
