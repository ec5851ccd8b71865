package objctest

import (
	"reflect"
	"unsafe"

	objc "github.com/wippyai/objc-runtime"
)

// Imp is the Go implementation of a simulated method. The returned value is
// converted to the send's return type; nil yields the zero value.
type Imp func(c *Call) any

// Call describes one message received by a simulated method.
type Call struct {
	Runtime  *Runtime
	Selector string
	Args     []any
	Self     objc.ID
}

// String reads argument i as text. C strings and NSString objects are both accepted.
func (c *Call) String(i int) string {
	switch v := c.Args[i].(type) {
	case *byte:
		return objc.GoString(v)
	case objc.ID:
		s, _ := c.Runtime.Value(v).(string)
		return s
	case string:
		return v
	}
	return ""
}

// ID reads argument i as an object handle.
func (c *Call) ID(i int) objc.ID {
	if id, ok := c.Args[i].(objc.ID); ok {
		return id
	}
	return 0
}

// Int reads argument i as a signed integer.
func (c *Call) Int(i int) int64 {
	rv := reflect.ValueOf(c.Args[i])
	switch {
	case rv.CanInt():
		return rv.Int()
	case rv.CanUint():
		return int64(rv.Uint())
	}
	return 0
}

// Uint reads argument i as an unsigned integer.
func (c *Call) Uint(i int) uint64 {
	rv := reflect.ValueOf(c.Args[i])
	switch {
	case rv.CanUint():
		return rv.Uint()
	case rv.CanInt():
		return uint64(rv.Int())
	}
	return 0
}

// Pointer reads argument i as a raw pointer.
func (c *Call) Pointer(i int) unsafe.Pointer {
	if p, ok := c.Args[i].(unsafe.Pointer); ok {
		return p
	}
	return nil
}

// SetOutError stores err into the out-error cell passed as argument i, if any.
func (c *Call) SetOutError(i int, err objc.ID) {
	if p := c.Pointer(i); p != nil {
		*(*objc.ID)(p) = err
	}
}

// Class returns the class handle of the receiver when the receiver is a class object.
func (c *Call) Class() objc.Class {
	return objc.Class(c.Self)
}

// ClassBuilder adds methods to a simulated class.
type ClassBuilder struct {
	rt  *Runtime
	cls *class
}

// Method adds an instance method. args lists the explicit argument encodings;
// the receiver and selector encodings are prepended automatically. Redefining
// a selector replaces the previous implementation on this class.
func (b *ClassBuilder) Method(sel, ret string, args []string, imp Imp) *ClassBuilder {
	b.rt.addMethod(b.cls, sel, ret, args, imp)
	return b
}

// ClassMethod adds a class method (a method on the metaclass).
func (b *ClassBuilder) ClassMethod(sel, ret string, args []string, imp Imp) *ClassBuilder {
	b.rt.addMethod(b.cls.meta, sel, ret, args, imp)
	return b
}

// Class returns the class handle.
func (b *ClassBuilder) Class() objc.Class {
	return b.cls.handle
}

// Meta returns the metaclass handle.
func (b *ClassBuilder) Meta() objc.Class {
	return b.cls.meta.handle
}
