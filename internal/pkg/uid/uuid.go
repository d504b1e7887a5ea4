// Package uid generates identifiers for entities and correlation ids.
package uid

import "github.com/google/uuid"

// StringID generates unique, string-encoded identifiers.
type StringID interface {
	Generate() string
}

// UUID generates time-ordered RFC 9562 UUIDv7 strings.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUIDv7, or a random UUIDv4 if the clock source fails.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Sequence is a deterministic StringID for tests.
type Sequence struct {
	ids  []string
	next int
}

// NewSequence returns a generator yielding ids in order, then repeating the last one.
func NewSequence(ids ...string) *Sequence {
	return &Sequence{ids: ids}
}

// Generate returns the next id of the sequence.
func (s *Sequence) Generate() string {
	if len(s.ids) == 0 {
		return ""
	}
	if s.next >= len(s.ids) {
		return s.ids[len(s.ids)-1]
	}
	id := s.ids[s.next]
	s.next++
	return id
}
