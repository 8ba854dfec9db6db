// Package clock provides the time source injected into the credential core so
// expiry decisions are testable.
package clock

import "time"

// Clock supplies the current time. Implementations must be safe for concurrent use.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the wall clock. Times are returned in UTC.
type System struct{}

// Now returns the current wall-clock time in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}
