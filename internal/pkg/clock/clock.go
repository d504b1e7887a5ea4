package clock

import "time"

type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the system clock in UTC.
type TimeClocker struct{}

func New() *TimeClocker {
	return &TimeClocker{}
}

func (*TimeClocker) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
