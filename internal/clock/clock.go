// Package clock provides the time source injected into components that stamp
// or compute dates, so tests can pin "now".
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System returns the wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }
