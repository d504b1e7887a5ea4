package entity

import (
	"errors"
	"slices"
)

// Filter is a set of investment criteria. Nil criteria are not applied.
type Filter struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty" validate:"omitempty,max=100"`
	MinIRR      *float64 `json:"min_irr,omitempty" validate:"omitempty,gte=0"`
	MaxIRR      *float64 `json:"max_irr,omitempty" validate:"omitempty,gte=0"`
	MinDuration *int     `json:"min_duration,omitempty" validate:"omitempty,gte=0"`
	MaxDuration *int     `json:"max_duration,omitempty" validate:"omitempty,gte=0"`
	MinAmount   *int     `json:"min_amount,omitempty" validate:"omitempty,gte=0"`
	MinScore    *float64 `json:"min_score,omitempty" validate:"omitempty,gte=0"`
	CreditTypes []string `json:"credit_types,omitempty" validate:"omitempty,dive,required,max=64"`
	IgnoreDicom bool     `json:"ignore_dicom"`
}

// Normalize sorts and dedupes CreditTypes so equal criteria compare equal.
func (f Filter) Normalize() Filter {
	if len(f.CreditTypes) == 0 {
		f.CreditTypes = nil
		return f
	}
	ct := slices.Clone(f.CreditTypes)
	slices.Sort(ct)
	f.CreditTypes = slices.Compact(ct)
	return f
}

// CheckRanges reports a min above its max.
func (f Filter) CheckRanges() error {
	if f.MinIRR != nil && f.MaxIRR != nil && *f.MinIRR > *f.MaxIRR {
		return &FieldError{Field: "max_irr", Err: errors.New("must be greater than or equal to min_irr")}
	}
	if f.MinDuration != nil && f.MaxDuration != nil && *f.MinDuration > *f.MaxDuration {
		return &FieldError{Field: "max_duration", Err: errors.New("must be greater than or equal to min_duration")}
	}
	return nil
}

// Equal reports value equality, ignoring ID.
func (f Filter) Equal(o Filter) bool {
	return f.Name == o.Name && f.SameCriteria(o)
}

// SameCriteria is Equal without Name.
func (f Filter) SameCriteria(o Filter) bool {
	return ptrEqual(f.MinIRR, o.MinIRR) &&
		ptrEqual(f.MaxIRR, o.MaxIRR) &&
		ptrEqual(f.MinDuration, o.MinDuration) &&
		ptrEqual(f.MaxDuration, o.MaxDuration) &&
		ptrEqual(f.MinAmount, o.MinAmount) &&
		ptrEqual(f.MinScore, o.MinScore) &&
		slices.Equal(f.CreditTypes, o.CreditTypes) &&
		f.IgnoreDicom == o.IgnoreDicom
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
