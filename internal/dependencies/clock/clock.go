package clock

import "time"

// Clock abstracts time so timestamps (room activity, player last-seen,
// chat ordering) are controllable in tests
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}
