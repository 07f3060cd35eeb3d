// Package clock abstracts wall time so engine and hold logic can be
// exercised in tests with a controlled clock.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type system struct{}

func (system) Now() time.Time { return time.Now() }

// System returns a Clock backed by time.Now.
func System() Clock {
	return system{}
}
