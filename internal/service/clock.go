package service

import "time"

// Clock abstracts the current time so services stay deterministic under
// test. Every derived computation takes its "now" from here exactly once
// per request.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystemClock returns a Clock backed by the wall clock, in UTC.
func NewSystemClock() Clock {
	return systemClock{}
}
