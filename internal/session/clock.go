// ABOUTME: Clock abstraction for the expiry scheduler
// ABOUTME: The system clock wraps time.AfterFunc; tests inject a manual clock

package session

import "time"

// Timer is a pending one-shot callback
type Timer interface {
	Stop() bool
}

// Clock supplies the current time and one-shot timers
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
