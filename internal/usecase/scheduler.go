package usecase

import "time"

// Timer is a pending callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Scheduler runs f on its own goroutine once d has elapsed
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler schedules on the runtime timer heap
type SystemScheduler struct{}

// AfterFunc wraps time.AfterFunc
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
