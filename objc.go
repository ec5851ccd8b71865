package objcruntime

import (
	"reflect"
	"unsafe"
)

// ID is an opaque reference to a foreign object. The zero ID is nil.
type ID uintptr

// Class is an opaque reference to a foreign class or metaclass.
type Class uintptr

// SEL is a registered selector token.
type SEL uintptr

// Method is an opaque reference to one entry of a class method list.
type Method uintptr

// Runtime is the set of foreign runtime entry points the bridge consumes.
// Implementations must return zero handles for "not found" and must free any
// buffers the foreign runtime allocates before returning.
type Runtime interface {
	// RegisterName registers (or looks up) the selector with the given text.
	RegisterName(name string) SEL

	// SelName returns the text of a selector.
	SelName(sel SEL) string

	// GetClass returns the class with the given name, or 0.
	GetClass(name string) Class

	// ClassName returns the name of a class.
	ClassName(cls Class) string

	// Superclass returns the superclass of cls, or 0 at the root.
	Superclass(cls Class) Class

	// ObjectClass returns the runtime class of obj. For a class object this is its metaclass.
	ObjectClass(obj ID) Class

	// ObjectClassName returns the class name of obj.
	ObjectClassName(obj ID) string

	// CopyMethodList returns the methods defined directly on cls.
	// ok is false when the runtime reports no method list at all.
	CopyMethodList(cls Class) (methods []Method, ok bool)

	// MethodName returns the selector of a method.
	MethodName(m Method) SEL

	// MethodReturnType returns the return type encoding of a method.
	MethodReturnType(m Method) string

	// MethodNumArguments returns the argument count, including self and _cmd.
	MethodNumArguments(m Method) int

	// MethodArgumentType returns the type encoding of argument index.
	MethodArgumentType(m Method, index int) string

	// MsgSend returns a function value of type fn that performs a dynamic
	// send. fn must take (ID, SEL, ...) and return zero or one value.
	MsgSend(fn reflect.Type) (reflect.Value, error)
}

// GoString copies a NUL-terminated foreign string into a Go string.
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// GoStringN copies exactly n bytes of a foreign string into a Go string.
func GoStringN(p *byte, n int) string {
	if p == nil || n <= 0 {
		return ""
	}
	return string(unsafe.Slice(p, n))
}

// CString returns a NUL-terminated copy of s. The buffer is Go memory and
// stays valid while the returned pointer is reachable.
func CString(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}
