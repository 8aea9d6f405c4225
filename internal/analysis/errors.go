package analysis

import (
	"errors"
	"fmt"
)

// ErrorKind classifies whole-operation analysis failures.
type ErrorKind string

const (
	// KindInvalidMask covers undecodable masks and dimension mismatches.
	KindInvalidMask ErrorKind = "INVALID_MASK"
	// KindNoLesionFound means a lesion mask had no outer contours.
	KindNoLesionFound ErrorKind = "NO_LESION_FOUND"
	// KindNoTeethFound means the tooth mask listing was empty.
	KindNoTeethFound ErrorKind = "NO_TEETH_FOUND"
	// KindUnsupportedMethod means an unrecognized replacement method.
	KindUnsupportedMethod ErrorKind = "UNSUPPORTED_METHOD"
	// KindDegenerateGeometry documents zero-area denominators. The engine
	// reports 0 in that case instead of returning this kind.
	KindDegenerateGeometry ErrorKind = "DEGENERATE_GEOMETRY"
)

// Sentinel errors for errors.Is matching against an *Error of the same kind.
var (
	ErrInvalidMask        = &Error{Kind: KindInvalidMask}
	ErrNoLesionFound      = &Error{Kind: KindNoLesionFound}
	ErrNoTeethFound       = &Error{Kind: KindNoTeethFound}
	ErrUnsupportedMethod  = &Error{Kind: KindUnsupportedMethod}
	ErrDegenerateGeometry = &Error{Kind: KindDegenerateGeometry}
)

// Error is a typed analysis failure. It is reported to the caller, never
// fatal: the orchestrator decides whether to retry or surface it.
type Error struct {
	Kind   ErrorKind
	Op     string // operation that failed, e.g. "analyze_lesion"
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so errors.Is(err, ErrNoLesionFound)
// works regardless of Op or Detail.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// ToMap converts the error to a key/value record for reports and task state.
func (e *Error) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Kind),
		"message":    e.Error(),
	}
	if e.Op != "" {
		result["operation"] = e.Op
	}
	if e.Err != nil {
		result["cause"] = e.Err.Error()
	}
	return result
}

// KindOf returns the ErrorKind of err, or "" when err is not an analysis error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// NewInvalidMaskError reports an undecodable or mismatched mask.
func NewInvalidMaskError(op, detail string, cause error) *Error {
	return &Error{Kind: KindInvalidMask, Op: op, Detail: detail, Err: cause}
}

// NewNoLesionFoundError reports a lesion mask without contours.
func NewNoLesionFoundError(op string) *Error {
	return &Error{Kind: KindNoLesionFound, Op: op, Detail: "lesion mask has no contours"}
}

// NewNoTeethFoundError reports an empty or unmatched tooth mask listing.
func NewNoTeethFoundError(op, detail string) *Error {
	return &Error{Kind: KindNoTeethFound, Op: op, Detail: detail}
}

// NewUnsupportedMethodError reports an unrecognized replacement method.
func NewUnsupportedMethodError(op, method string) *Error {
	return &Error{Kind: KindUnsupportedMethod, Op: op, Detail: fmt.Sprintf("unknown replacement method %q", method)}
}
