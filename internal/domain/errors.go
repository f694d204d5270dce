package domain

import (
	"errors"
	"strings"
)

// Error kinds. A failure may match more than one through errors.Is when it
// wraps another kind as its cause (Initialization over InvalidPath); KindOf
// reports the single outermost kind.
var (
	ErrInitialization       = errors.New("failed to create OSRM instance")
	ErrInvalidPath          = errors.New("invalid path parameter")
	ErrInvalidTableArgument = errors.New("sources or destinations are invalid")
	ErrAPI                  = errors.New("OSRM API error")
	ErrJSONParse            = errors.New("failed to parse OSRM response")
	ErrFFI                  = errors.New("internal FFI error")
)

var kinds = []error{
	ErrInitialization,
	ErrInvalidPath,
	ErrInvalidTableArgument,
	ErrAPI,
	ErrJSONParse,
	ErrFFI,
}

// Error carries a kind, the operation that failed, an optional message and
// an optional underlying cause.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

func InitializationError(op string, cause error) error {
	return newError(ErrInitialization, op, "", cause)
}

func InvalidPathError(op, msg string) error {
	return newError(ErrInvalidPath, op, msg, nil)
}

func InvalidTableArgumentError(op, msg string) error {
	return newError(ErrInvalidTableArgument, op, msg, nil)
}

func APIError(op, msg string) error {
	return newError(ErrAPI, op, msg, nil)
}

func JSONParseError(op string, cause error) error {
	return newError(ErrJSONParse, op, "", cause)
}

func FFIError(op, msg string) error {
	return newError(ErrFFI, op, msg, nil)
}

// KindOf reports the first taxonomy kind err matches, or nil.
//
// Initialization wraps its cause, so an Initialization caused by an invalid
// path reports ErrInitialization.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// KindName is a short machine-friendly name for a kind, used in API bodies
// and metric labels.
func KindName(kind error) string {
	switch kind {
	case ErrInitialization:
		return "initialization"
	case ErrInvalidPath:
		return "invalid_path"
	case ErrInvalidTableArgument:
		return "invalid_table_argument"
	case ErrAPI:
		return "api_error"
	case ErrJSONParse:
		return "json_parse"
	case ErrFFI:
		return "ffi_error"
	default:
		return "unknown"
	}
}
