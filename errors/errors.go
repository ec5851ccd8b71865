package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode     Phase = "decode"     // type encoding to Go type
	PhaseIntrospect Phase = "introspect" // method list queries
	PhaseLookup     Phase = "lookup"     // class and selector lookup
	PhaseBuild      Phase = "build"      // call thunk construction
	PhaseCoerce     Phase = "coerce"     // Go argument to foreign value
	PhaseDispatch   Phase = "dispatch"   // dynamic message send
	PhaseLifetime   Phase = "lifetime"   // handle retain/release
	PhaseLoad       Phase = "load"       // runtime library loading
	PhaseConfig     Phase = "config"     // configuration parsing
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidEncoding Kind = "invalid_encoding"
	KindTypeMismatch    Kind = "type_mismatch"
	KindOverflow        Kind = "overflow"
	KindInvalidData     Kind = "invalid_data"
	KindInvalidInput    Kind = "invalid_input"
	KindUnsupported     Kind = "unsupported"
	KindNotFound        Kind = "not_found"
	KindNilHandle       Kind = "nil_handle"
	KindReleased        Kind = "released"
	KindNotInitialized  Kind = "not_initialized"
	KindForeign         Kind = "foreign"
)

// Sentinel targets for errors.Is. They match any Error with the same phase and kind.
var (
	ErrDecode         = &Error{Phase: PhaseDecode, Kind: KindInvalidEncoding}
	ErrClassNotFound  = &Error{Phase: PhaseLookup, Kind: KindNotFound}
	ErrMethodNotFound = &Error{Phase: PhaseDispatch, Kind: KindNotFound}
	ErrReleased       = &Error{Phase: PhaseLifetime, Kind: KindReleased}
	ErrNilHandle      = &Error{Phase: PhaseLifetime, Kind: KindNilHandle}
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Class    string
	Selector string
	GoType   string
	Encoding string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Class != "" || e.Selector != "" {
		b.WriteString(" at ")
		switch {
		case e.Class != "" && e.Selector != "":
			b.WriteString(e.Class)
			b.WriteByte(' ')
			b.WriteString(e.Selector)
		case e.Class != "":
			b.WriteString(e.Class)
		default:
			b.WriteString(e.Selector)
		}
	}

	if e.GoType != "" || e.Encoding != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Encoding != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", encoding ")
			b.WriteString(e.Encoding)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("encoding ")
			b.WriteString(e.Encoding)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Encoding != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Class sets the foreign class name
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// Selector sets the selector text
func (b *Builder) Selector(sel string) *Builder {
	b.err.Selector = sel
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Encoding sets the foreign type encoding
func (b *Builder) Encoding(enc string) *Builder {
	b.err.Encoding = enc
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidEncoding creates a decode error naming the offending substring
func InvalidEncoding(enc, unit string) *Error {
	return &Error{
		Phase:    PhaseDecode,
		Kind:     KindInvalidEncoding,
		Encoding: enc,
		Detail:   fmt.Sprintf("unrecognized type unit %q", unit),
		Value:    unit,
	}
}

// TypeMismatch creates a coercion error for a Go value that cannot fill a slot
func TypeMismatch(phase Phase, goType, encoding string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		GoType:   goType,
		Encoding: encoding,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, value any, encoding string, cause error) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		Encoding: encoding,
		Detail:   fmt.Sprintf("value %v does not fit %s", value, encoding),
		Value:    value,
		Cause:    cause,
	}
}

// ClassNotFound creates a lookup error for an unknown class name
func ClassNotFound(name string) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindNotFound,
		Class:  name,
		Detail: fmt.Sprintf("class %q not found", name),
	}
}

// MethodNotFound creates a dispatch error naming the attempted method and the class
func MethodNotFound(method, class string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindNotFound,
		Class:  class,
		Detail: fmt.Sprintf("method %s not found on %s", method, class),
		Value:  method,
	}
}

// ArgumentCount creates an invalid input error for a call with the wrong arity
func ArgumentCount(selector string, want, got int) *Error {
	return &Error{
		Phase:    PhaseDispatch,
		Kind:     KindInvalidInput,
		Selector: selector,
		Detail:   fmt.Sprintf("expected %d arguments, got %d", want, got),
		Value:    got,
	}
}

// Released creates a lifetime error for use of a released handle
func Released(class string, handle uintptr) *Error {
	return &Error{
		Phase:  PhaseLifetime,
		Kind:   KindReleased,
		Class:  class,
		Detail: fmt.Sprintf("use after release of 0x%x", handle),
		Value:  handle,
	}
}

// NilHandle creates a lifetime error for wrapping a null foreign handle
func NilHandle(what string) *Error {
	return &Error{
		Phase:  PhaseLifetime,
		Kind:   KindNilHandle,
		Detail: fmt.Sprintf("cannot wrap null %s", what),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotInitialized creates a not-initialized error for a missing component
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Load creates a runtime loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindNotFound,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IntrospectionFault creates the error carried by the panic raised when a live
// class reports no method list.
func IntrospectionFault(class string, handle uintptr) *Error {
	return &Error{
		Phase:  PhaseIntrospect,
		Kind:   KindInvalidData,
		Class:  class,
		Detail: fmt.Sprintf("no method list for class at 0x%x", handle),
		Value:  handle,
	}
}
