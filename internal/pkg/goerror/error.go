package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by repositories when a document does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned by repositories when a document already exists.
	ErrConflict = errors.New("resource conflict")
)

// Type classifies errors into the buckets the transport layer cares about.
type Type int

const (
	// TypeServer represents failures of the service or its upstreams.
	TypeServer Type = iota
	// TypeBusiness represents business rule violations.
	TypeBusiness
	// TypeValidation represents malformed or missing input.
	TypeValidation
)

var typeNames = map[Type]string{
	TypeServer:     "ERROR_TYPE_SERVER",
	TypeBusiness:   "ERROR_TYPE_BUSINESS",
	TypeValidation: "ERROR_TYPE_VALIDATION",
}

// String returns the string representation of the error type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code is a stable identifier used for mapping errors to HTTP status codes.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeTooManyRequest
	CodeUnauthorized
	CodeForbidden
	CodeTimeout
	CodeBadGateway
)

type codeInfo struct {
	name   string
	status int
}

var codes = map[Code]codeInfo{
	CodeInternal:       {"ERROR_CODE_INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat:  {"ERROR_CODE_INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:   {"ERROR_CODE_INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeNotFound:       {"ERROR_CODE_NOT_FOUND", http.StatusNotFound},
	CodeConflict:       {"ERROR_CODE_CONFLICT", http.StatusConflict},
	CodeTooManyRequest: {"ERROR_CODE_TOO_MANY_REQUESTS", http.StatusTooManyRequests},
	CodeUnauthorized:   {"ERROR_CODE_UNAUTHORIZED", http.StatusUnauthorized},
	CodeForbidden:      {"ERROR_CODE_FORBIDDEN", http.StatusForbidden},
	CodeTimeout:        {"ERROR_CODE_TIMEOUT", http.StatusRequestTimeout},
	CodeBadGateway:     {"ERROR_CODE_BAD_GATEWAY", http.StatusBadGateway},
}

// String returns the string representation of the error code.
func (c Code) String() string {
	if info, ok := codes[c]; ok {
		return info.name
	}
	return codes[CodeInternal].name
}

// Error is the structured error returned by usecases.
//
// It may wrap an underlying error while carrying a user-facing message,
// a type, a code and optional per-field validation messages.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	case e.errType == TypeValidation:
		return "Validation violation"
	case e.errType == TypeBusiness:
		return "Business rule violation"
	default:
		return "Internal error"
	}
}

// String returns a verbose representation for logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q err=%v", e.errType, e.code, e.msg, e.err)
}

// Msg returns the user-facing message.
func (e *Error) Msg() string { return e.msg }

// Type returns the error type.
func (e *Error) Type() Type { return e.errType }

// Code returns the error code.
func (e *Error) Code() Code { return e.code }

// Fields returns per-field validation messages, if any.
func (e *Error) Fields() map[string]string { return e.fields }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	if info, ok := codes[e.code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func newError(err error, msg string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer wraps an unexpected failure of the service itself.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewUpstream wraps a failure of an external system the request depends on.
func NewUpstream(msg string, err error) error {
	return newError(err, msg, TypeServer, CodeBadGateway)
}

// NewBusiness creates a business rule violation with the given message and code.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewInvalidInput creates a validation error.
//
// When err is nil the kv pairs are used as field/message pairs.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	e := newError(nil, "Validation error", TypeValidation, CodeInvalidInput)
	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidFormat creates an error for a request body that cannot be decoded.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return newError(nil, msg, TypeValidation, CodeInvalidFormat)
}

// CodeOf returns the code carried by err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.code == code
}
