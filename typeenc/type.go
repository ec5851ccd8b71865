package typeenc

import (
	"reflect"
	"strings"
	"unsafe"

	objc "github.com/wippyai/objc-runtime"
)

// Type is a decoded type encoding. Types returned by Decode are shared and
// must not be mutated.
type Type struct {
	Elem     *Type
	Name     string
	Encoding string
	Kind     Kind
}

var primitiveCodes = map[byte]Kind{
	'c': KindInt8,
	's': KindInt16,
	'i': KindInt32,
	'l': KindInt32,
	'q': KindInt64,
	'C': KindUint8,
	'S': KindUint16,
	'I': KindUint32,
	'L': KindUint32,
	'Q': KindUint64,
	'f': KindFloat32,
	'd': KindFloat64,
	'B': KindBool,
	'v': KindVoid,
	'*': KindCString,
	'@': KindObject,
	'#': KindClass,
	':': KindSelector,
	'?': KindUnknown,
}

// Qualifiers that precede a type and carry no layout information:
// const, in, inout, out, bycopy, byref, oneway.
const qualifiers = "rnNoORV"

var primitives = func() map[byte]*Type {
	m := make(map[byte]*Type, len(primitiveCodes))
	for code, kind := range primitiveCodes {
		m[code] = &Type{Kind: kind, Encoding: string(code)}
	}
	return m
}()

var (
	tID      = reflect.TypeOf(objc.ID(0))
	tClass   = reflect.TypeOf(objc.Class(0))
	tSEL     = reflect.TypeOf(objc.SEL(0))
	tCString = reflect.TypeOf((*byte)(nil))
	tPointer = reflect.TypeOf(unsafe.Pointer(nil))
	tOpaque  = reflect.TypeOf(struct{}{})
)

var goTypes = [...]reflect.Type{
	KindInt8:     reflect.TypeOf(int8(0)),
	KindInt16:    reflect.TypeOf(int16(0)),
	KindInt32:    reflect.TypeOf(int32(0)),
	KindInt64:    reflect.TypeOf(int64(0)),
	KindUint8:    reflect.TypeOf(uint8(0)),
	KindUint16:   reflect.TypeOf(uint16(0)),
	KindUint32:   reflect.TypeOf(uint32(0)),
	KindUint64:   reflect.TypeOf(uint64(0)),
	KindFloat32:  reflect.TypeOf(float32(0)),
	KindFloat64:  reflect.TypeOf(float64(0)),
	KindBool:     reflect.TypeOf(false),
	KindCString:  tCString,
	KindObject:   tID,
	KindClass:    tClass,
	KindSelector: tSEL,
	KindUnknown:  reflect.TypeOf(uintptr(0)),
	KindPointer:  tPointer,
	KindStruct:   tOpaque,
}

// Decode decodes one type encoding.
func Decode(enc string) (*Type, error) {
	return decode(enc, enc)
}

// MustDecode is like Decode but panics on error. Intended for constant encodings.
func MustDecode(enc string) *Type {
	t, err := Decode(enc)
	if err != nil {
		panic(err)
	}
	return t
}

func decode(full, enc string) (*Type, error) {
	if enc == "" {
		return nil, invalid(full, enc)
	}

	if len(enc) == 1 {
		if t, ok := primitives[enc[0]]; ok {
			return t, nil
		}
		return nil, invalid(full, enc)
	}

	switch c := enc[0]; {
	case c == '^':
		elem, err := decode(full, enc[1:])
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindPointer, Elem: elem, Encoding: enc}, nil
	case strings.IndexByte(qualifiers, c) >= 0:
		return decode(full, enc[1:])
	case c == '{':
		if enc[len(enc)-1] != '}' {
			return nil, invalid(full, enc)
		}
		name, _, ok := strings.Cut(enc[1:len(enc)-1], "=")
		if !ok {
			return nil, invalid(full, enc)
		}
		return &Type{Kind: KindStruct, Name: name, Encoding: enc}, nil
	}

	return nil, invalid(full, enc)
}

// GoType returns the Go type used for this slot in a dynamic send, or nil for void.
func (t *Type) GoType() reflect.Type {
	if t.Kind == KindVoid {
		return nil
	}
	return goTypes[t.Kind]
}

// IsVoid reports whether t is the void type.
func (t *Type) IsVoid() bool {
	return t.Kind == KindVoid
}

// IsObjectPointer reports whether t is a pointer to an object (^@), the shape
// of an out-error cell.
func (t *Type) IsObjectPointer() bool {
	return t.Kind == KindPointer && t.Elem != nil && t.Elem.Kind == KindObject
}

// Equal reports whether t and o describe the same type.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindPointer:
		return t.Elem.Equal(o.Elem)
	case KindStruct:
		return t.Name == o.Name
	}
	return true
}

func (t *Type) String() string {
	switch t.Kind {
	case KindPointer:
		return "*" + t.Elem.String()
	case KindStruct:
		return "struct " + t.Name
	default:
		return t.Kind.String()
	}
}

// FuncType derives the Go signature of a dynamic send:
// func(ID, SEL, args...) ret.
func FuncType(ret *Type, args []*Type) reflect.Type {
	in := make([]reflect.Type, 0, len(args)+2)
	in = append(in, tID, tSEL)
	for _, a := range args {
		in = append(in, a.GoType())
	}
	var out []reflect.Type
	if ret != nil && !ret.IsVoid() {
		out = []reflect.Type{ret.GoType()}
	}
	return reflect.FuncOf(in, out, false)
}
