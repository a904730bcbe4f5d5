// Package clock provides an injectable time source so services never read the
// wall clock directly. Production code uses Real; tests pin time with Fixed.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

// Now returns the current wall-clock time.
func (Real) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

// Now returns the pinned instant.
func (f Fixed) Now() time.Time {
	return f.T
}

// At returns a Fixed clock pinned to t.
func At(t time.Time) Fixed {
	return Fixed{T: t}
}
