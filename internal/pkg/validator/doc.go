// Package validator validates request and domain structs through struct tags.
//
// Callers depend on the Validator interface; V10Validator is backed by
// go-playground/validator v10 with English messages keyed by snake_case
// field names.
package validator

// Validator validates a struct value.
type Validator interface {
	Validate(data any) error
}
