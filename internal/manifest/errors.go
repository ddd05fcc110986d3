// Where: internal/manifest/errors.go
// What: Tagged compile errors for configuration validation.
// Why: Let callers branch on the failure kind while users still get a readable message.
package manifest

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a class of compile failure.
type ErrorKind string

const (
	KindUnsupportedOriginType    ErrorKind = "UnsupportedOriginType"
	KindMissingAddresses         ErrorKind = "MissingAddresses"
	KindInvalidWeight            ErrorKind = "InvalidWeight"
	KindInvalidOriginPath        ErrorKind = "InvalidOriginPath"
	KindInvalidExpression        ErrorKind = "InvalidExpression"
	KindUnknownOriginReference   ErrorKind = "UnknownOriginReference"
	KindOriginTypeMismatch       ErrorKind = "OriginTypeMismatch"
	KindInvalidRunFunctionTarget ErrorKind = "InvalidRunFunctionTarget"
	KindInvalidCertificate       ErrorKind = "InvalidCertificate"
	KindInvalidMtlsVerification  ErrorKind = "InvalidMtlsVerification"
	KindMissingScheme            ErrorKind = "MissingScheme"
	KindMissingWildcard          ErrorKind = "MissingWildcard"
	KindInvalidPropertyFound     ErrorKind = "InvalidPropertyFound"
	KindMissingField             ErrorKind = "MissingField"
	KindInvalidBehaviorValue     ErrorKind = "InvalidBehaviorValue"
	KindSchemaViolation          ErrorKind = "SchemaViolation"
)

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrUnsupportedOriginType    = &Error{Kind: KindUnsupportedOriginType}
	ErrMissingAddresses         = &Error{Kind: KindMissingAddresses}
	ErrInvalidWeight            = &Error{Kind: KindInvalidWeight}
	ErrInvalidOriginPath        = &Error{Kind: KindInvalidOriginPath}
	ErrInvalidExpression        = &Error{Kind: KindInvalidExpression}
	ErrUnknownOriginReference   = &Error{Kind: KindUnknownOriginReference}
	ErrOriginTypeMismatch       = &Error{Kind: KindOriginTypeMismatch}
	ErrInvalidRunFunctionTarget = &Error{Kind: KindInvalidRunFunctionTarget}
	ErrInvalidCertificate       = &Error{Kind: KindInvalidCertificate}
	ErrInvalidMtlsVerification  = &Error{Kind: KindInvalidMtlsVerification}
	ErrMissingScheme            = &Error{Kind: KindMissingScheme}
	ErrMissingWildcard          = &Error{Kind: KindMissingWildcard}
	ErrInvalidPropertyFound     = &Error{Kind: KindInvalidPropertyFound}
	ErrMissingField             = &Error{Kind: KindMissingField}
	ErrInvalidBehaviorValue     = &Error{Kind: KindInvalidBehaviorValue}
	ErrSchemaViolation          = &Error{Kind: KindSchemaViolation}
)

// Error is a fatal compile error. Field is a config path such as
// "rules.request[2].behavior.setOrigin" and may be empty.
type Error struct {
	Kind    ErrorKind
	Field   string
	Value   any
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError builds an *Error with a formatted message.
func NewError(kind ErrorKind, field string, value any, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// withField fills in Field on errors raised without location context.
func withField(err error, field string) error {
	var e *Error
	if !errors.As(err, &e) || e.Field != "" {
		return err
	}
	located := *e
	located.Field = field
	return &located
}
