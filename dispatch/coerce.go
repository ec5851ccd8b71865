package dispatch

import (
	"math"
	"reflect"
	"unsafe"

	"fortio.org/safecast"

	objc "github.com/wippyai/objc-runtime"
	"github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/typeenc"
)

var (
	tID       = reflect.TypeOf(objc.ID(0))
	tClass    = reflect.TypeOf(objc.Class(0))
	tPointer  = reflect.TypeOf(unsafe.Pointer(nil))
	tReceiver = reflect.TypeOf((*Receiver)(nil)).Elem()
)

// coerce converts a Go argument into the value passed for typ. Buffers the
// callee may read are appended to keep and must stay reachable until the
// send returns.
func (e *Engine) coerce(a any, typ *typeenc.Type, keep *[]any) (reflect.Value, error) {
	goType := typ.GoType()
	if isNil(a) {
		return reflect.Zero(goType), nil
	}

	if r, ok := a.(Receiver); ok {
		if r.Released() {
			return reflect.Value{}, errors.Released(r.ClassName(), uintptr(r.ID()))
		}
		return handleValue(r.ID(), typ)
	}

	rv := reflect.ValueOf(a)
	if rv.Type() == goType {
		return rv, nil
	}

	switch typ.Kind {
	case typeenc.KindInt8:
		return intValue[int8](rv, typ)
	case typeenc.KindInt16:
		return intValue[int16](rv, typ)
	case typeenc.KindInt32:
		return intValue[int32](rv, typ)
	case typeenc.KindInt64:
		return intValue[int64](rv, typ)
	case typeenc.KindUint8:
		return intValue[uint8](rv, typ)
	case typeenc.KindUint16:
		return intValue[uint16](rv, typ)
	case typeenc.KindUint32:
		return intValue[uint32](rv, typ)
	case typeenc.KindUint64:
		return intValue[uint64](rv, typ)
	case typeenc.KindFloat32, typeenc.KindFloat64:
		return floatValue(rv, typ)
	case typeenc.KindBool:
		return boolValue(rv, typ)
	case typeenc.KindCString:
		return cStringValue(rv, typ, keep)
	case typeenc.KindObject:
		return e.objectValue(rv, typ, keep)
	case typeenc.KindClass:
		if id, ok := a.(objc.ID); ok {
			return reflect.ValueOf(objc.Class(id)), nil
		}
	case typeenc.KindSelector:
		if s, ok := a.(string); ok {
			return reflect.ValueOf(e.Selector(s)), nil
		}
	case typeenc.KindPointer:
		return e.pointerValue(rv, typ, keep)
	case typeenc.KindUnknown:
		return wordValue(rv, typ)
	case typeenc.KindStruct:
		return reflect.Value{}, errors.New(errors.PhaseCoerce, errors.KindUnsupported).
			GoType(rv.Type().String()).
			Encoding(typ.Encoding).
			Detail("opaque struct %q cannot be passed by value", typ.Name).
			Build()
	}
	return reflect.Value{}, mismatch(rv, typ)
}

func isNil(a any) bool {
	if a == nil {
		return true
	}
	rv := reflect.ValueOf(a)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// handleValue places a foreign handle into a handle-typed slot.
func handleValue(id objc.ID, typ *typeenc.Type) (reflect.Value, error) {
	switch typ.Kind {
	case typeenc.KindObject:
		return reflect.ValueOf(id), nil
	case typeenc.KindClass:
		return reflect.ValueOf(objc.Class(id)), nil
	case typeenc.KindPointer:
		return reflect.ValueOf(*(*unsafe.Pointer)(unsafe.Pointer(&id))), nil
	case typeenc.KindUnknown:
		return reflect.ValueOf(uintptr(id)), nil
	}
	return reflect.Value{}, errors.TypeMismatch(errors.PhaseCoerce, "handle", typ.Encoding)
}

func mismatch(rv reflect.Value, typ *typeenc.Type) error {
	return errors.TypeMismatch(errors.PhaseCoerce, rv.Type().String(), typ.Encoding)
}

func intValue[T safecast.Integer](rv reflect.Value, typ *typeenc.Type) (reflect.Value, error) {
	var (
		v   T
		err error
	)
	switch {
	case rv.CanInt():
		v, err = safecast.Conv[T](rv.Int())
	case rv.CanUint():
		v, err = safecast.Conv[T](rv.Uint())
	case rv.CanFloat():
		v, err = safecast.Convert[T](rv.Float())
	case rv.Kind() == reflect.Bool:
		if rv.Bool() {
			v = 1
		}
	default:
		return reflect.Value{}, mismatch(rv, typ)
	}
	if err != nil {
		return reflect.Value{}, errors.Overflow(errors.PhaseCoerce, rv.Interface(), typ.Encoding, err)
	}
	return reflect.ValueOf(v), nil
}

func floatValue(rv reflect.Value, typ *typeenc.Type) (reflect.Value, error) {
	var f float64
	switch {
	case rv.CanFloat():
		f = rv.Float()
	case rv.CanInt():
		f = float64(rv.Int())
	case rv.CanUint():
		f = float64(rv.Uint())
	default:
		return reflect.Value{}, mismatch(rv, typ)
	}
	if typ.Kind == typeenc.KindFloat64 {
		return reflect.ValueOf(f), nil
	}
	if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return reflect.Value{}, errors.Overflow(errors.PhaseCoerce, rv.Interface(), typ.Encoding, safecast.ErrOutOfRange)
	}
	return reflect.ValueOf(float32(f)), nil
}

func boolValue(rv reflect.Value, typ *typeenc.Type) (reflect.Value, error) {
	switch {
	case rv.Kind() == reflect.Bool:
		return reflect.ValueOf(rv.Bool()), nil
	case rv.CanInt():
		return reflect.ValueOf(rv.Int() != 0), nil
	case rv.CanUint():
		return reflect.ValueOf(rv.Uint() != 0), nil
	}
	return reflect.Value{}, mismatch(rv, typ)
}

func cStringValue(rv reflect.Value, typ *typeenc.Type, keep *[]any) (reflect.Value, error) {
	switch v := rv.Interface().(type) {
	case string:
		p := objc.CString(v)
		*keep = append(*keep, p)
		return reflect.ValueOf(p), nil
	case []byte:
		buf := make([]byte, len(v)+1)
		copy(buf, v)
		*keep = append(*keep, buf)
		return reflect.ValueOf(&buf[0]), nil
	}
	return reflect.Value{}, mismatch(rv, typ)
}

func (e *Engine) objectValue(rv reflect.Value, typ *typeenc.Type, keep *[]any) (reflect.Value, error) {
	switch v := rv.Interface().(type) {
	case string:
		id, err := e.foreignString(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(id), nil
	case objc.Class:
		return reflect.ValueOf(objc.ID(v)), nil
	}

	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		arr, err := e.pack(rv)
		if err != nil {
			return reflect.Value{}, err
		}
		if len(arr) == 0 {
			return reflect.Zero(tID), nil
		}
		*keep = append(*keep, arr)
		return reflect.ValueOf(objc.ID(uintptr(unsafe.Pointer(&arr[0])))), nil
	}
	return reflect.Value{}, mismatch(rv, typ)
}

func (e *Engine) pointerValue(rv reflect.Value, typ *typeenc.Type, keep *[]any) (reflect.Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if handleElems(rv.Type().Elem()) {
			arr, err := e.pack(rv)
			if err != nil {
				return reflect.Value{}, err
			}
			if len(arr) == 0 {
				return reflect.Zero(tPointer), nil
			}
			*keep = append(*keep, arr)
			return reflect.ValueOf(unsafe.Pointer(&arr[0])), nil
		}
		if rv.Kind() == reflect.Array || rv.Len() == 0 {
			break
		}
		*keep = append(*keep, rv.Interface())
		return reflect.ValueOf(rv.UnsafePointer()), nil
	case reflect.Pointer:
		*keep = append(*keep, rv.Interface())
		return reflect.ValueOf(rv.UnsafePointer()), nil
	}

	switch v := rv.Interface().(type) {
	case objc.ID:
		return handleValue(v, typ)
	case objc.Class:
		return handleValue(objc.ID(v), typ)
	}
	return reflect.Value{}, mismatch(rv, typ)
}

func wordValue(rv reflect.Value, typ *typeenc.Type) (reflect.Value, error) {
	if rv.Type() == tPointer {
		return reflect.ValueOf(uintptr(rv.Interface().(unsafe.Pointer))), nil
	}
	if rv.CanUint() || rv.CanInt() {
		return intValue[uintptr](rv, typ)
	}
	return reflect.Value{}, mismatch(rv, typ)
}

// handleElems reports whether a slice with element type t packs into a
// contiguous array of object handles.
func handleElems(t reflect.Type) bool {
	switch {
	case t == tID, t == tClass:
		return true
	case t.Kind() == reflect.Interface:
		return true
	case t.Implements(tReceiver):
		return true
	}
	return false
}

// pack converts a Go sequence into a contiguous array of object handles.
func (e *Engine) pack(rv reflect.Value) ([]objc.ID, error) {
	arr := make([]objc.ID, rv.Len())
	for i := range arr {
		el := rv.Index(i).Interface()
		if isNil(el) {
			continue
		}
		switch v := el.(type) {
		case Receiver:
			if v.Released() {
				return nil, errors.Released(v.ClassName(), uintptr(v.ID()))
			}
			arr[i] = v.ID()
		case objc.ID:
			arr[i] = v
		case objc.Class:
			arr[i] = objc.ID(v)
		case string:
			id, err := e.foreignString(v)
			if err != nil {
				return nil, err
			}
			arr[i] = id
		default:
			return nil, errors.New(errors.PhaseCoerce, errors.KindTypeMismatch).
				GoType(reflect.TypeOf(el).String()).
				Encoding("@").
				Detail("element %d cannot be packed as an object handle", i).
				Build()
		}
	}
	return arr, nil
}

func (e *Engine) foreignString(s string) (objc.ID, error) {
	if e.newString == nil {
		return 0, errors.NotInitialized(errors.PhaseCoerce, "string factory")
	}
	return e.newString(s)
}

// unmarshal converts a send result into its host value.
func (e *Engine) unmarshal(v reflect.Value, typ *typeenc.Type, owned bool) (any, error) {
	switch typ.Kind {
	case typeenc.KindObject:
		id := objc.ID(v.Uint())
		if id == 0 {
			return nil, nil
		}
		return e.wrapObject(id, owned)
	case typeenc.KindCString:
		p, _ := v.Interface().(*byte)
		return objc.GoString(p), nil
	}
	return v.Interface(), nil
}

func (e *Engine) wrapObject(id objc.ID, owned bool) (any, error) {
	if e.wrap == nil {
		return id, nil
	}
	return e.wrap(id, owned)
}
