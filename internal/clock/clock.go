// Package clock supplies the current instant to the components that need it.
// Nothing in the engine reads time.Now directly; it asks a Clock.
package clock

import "time"

// Clock reports the instant markers are classified against.
type Clock interface {
	Now() time.Time
}

// Func turns a plain function into a Clock. Tests use it to move time.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// NewSystem reads the wall clock, in the local zone.
func NewSystem() Clock { return Func(time.Now) }

// NewFixed is stuck at t.
func NewFixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
