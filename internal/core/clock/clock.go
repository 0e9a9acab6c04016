// Package clock abstracts "now" so services can be tested at fixed dates.
package clock

import "time"

// Clock returns the current time.
type Clock func() time.Time

// System returns the wall clock in UTC.
func System() Clock {
	return func() time.Time { return time.Now().UTC() }
}

// Fixed always returns t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// Now calls c, falling back to the wall clock when c is nil.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
