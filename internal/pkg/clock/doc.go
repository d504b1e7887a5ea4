// Package clock hides time.Now behind Clocker so event timestamps and token
// expiries can be pinned in tests with Fixed.
package clock
