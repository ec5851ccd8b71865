//go:build darwin || linux || freebsd

package libobjc

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	objc "github.com/wippyai/objc-runtime"
	"github.com/wippyai/objc-runtime/errors"
)

// Runtime is the system Objective-C runtime.
type Runtime struct {
	log     *zap.Logger
	sends   sync.Map // reflect.Type -> reflect.Value
	path    string
	lib     uintptr
	msgSend uintptr

	selRegisterName        func(name string) objc.SEL
	selGetName             func(sel objc.SEL) string
	objcGetClass           func(name string) objc.Class
	classGetName           func(cls objc.Class) string
	classGetSuperclass     func(cls objc.Class) objc.Class
	objectGetClass         func(obj objc.ID) objc.Class
	classCopyMethodList    func(cls objc.Class, count *uint32) unsafe.Pointer
	methodGetName          func(m objc.Method) objc.SEL
	methodCopyReturnType   func(m objc.Method) *byte
	methodGetNumArguments  func(m objc.Method) uint32
	methodCopyArgumentType func(m objc.Method, index uint32) *byte
	free                   func(p unsafe.Pointer)
}

var _ objc.Runtime = (*Runtime)(nil)

// Open loads the runtime library and binds its functions.
func Open(opts ...Option) (*Runtime, error) {
	cfg := config{
		log:   Logger(),
		paths: DefaultPaths(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	lib, path, err := dlopenFirst(cfg.paths)
	if err != nil {
		return nil, errors.Load("objc runtime library not found", err)
	}
	libc, _, err := dlopenFirst(defaultLibc())
	if err != nil {
		return nil, errors.Load("C library not found", err)
	}
	for _, fw := range cfg.frameworks {
		if _, err := purego.Dlopen(fw, purego.RTLD_NOW|purego.RTLD_GLOBAL); err != nil {
			return nil, errors.Load(fmt.Sprintf("framework %s", fw), err)
		}
	}

	r := &Runtime{log: cfg.log, path: path, lib: lib}
	if err := r.bind(libc); err != nil {
		return nil, err
	}

	cfg.log.Debug("objc runtime loaded",
		zap.String("path", path),
		zap.Strings("frameworks", cfg.frameworks))
	return r, nil
}

func dlopenFirst(paths []string) (uintptr, string, error) {
	var last error
	for _, p := range paths {
		h, err := purego.Dlopen(p, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return h, p, nil
		}
		last = err
	}
	if last == nil {
		last = fmt.Errorf("no candidate paths")
	}
	return 0, "", last
}

// bind registers every runtime entry point. RegisterLibFunc panics on a
// missing symbol; that panic becomes a load error.
func (r *Runtime) bind(libc uintptr) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Load(fmt.Sprintf("binding %s", r.path), fmt.Errorf("%v", p))
		}
	}()

	r.msgSend, err = purego.Dlsym(r.lib, "objc_msgSend")
	if err != nil {
		return errors.Load("objc_msgSend not found", err)
	}

	purego.RegisterLibFunc(&r.selRegisterName, r.lib, "sel_registerName")
	purego.RegisterLibFunc(&r.selGetName, r.lib, "sel_getName")
	purego.RegisterLibFunc(&r.objcGetClass, r.lib, "objc_getClass")
	purego.RegisterLibFunc(&r.classGetName, r.lib, "class_getName")
	purego.RegisterLibFunc(&r.classGetSuperclass, r.lib, "class_getSuperclass")
	purego.RegisterLibFunc(&r.objectGetClass, r.lib, "object_getClass")
	purego.RegisterLibFunc(&r.classCopyMethodList, r.lib, "class_copyMethodList")
	purego.RegisterLibFunc(&r.methodGetName, r.lib, "method_getName")
	purego.RegisterLibFunc(&r.methodCopyReturnType, r.lib, "method_copyReturnType")
	purego.RegisterLibFunc(&r.methodGetNumArguments, r.lib, "method_getNumberOfArguments")
	purego.RegisterLibFunc(&r.methodCopyArgumentType, r.lib, "method_copyArgumentType")
	purego.RegisterLibFunc(&r.free, libc, "free")
	return nil
}

// Path returns the library the runtime was loaded from.
func (r *Runtime) Path() string {
	return r.path
}

func (r *Runtime) RegisterName(name string) objc.SEL {
	return r.selRegisterName(name)
}

func (r *Runtime) SelName(sel objc.SEL) string {
	if sel == 0 {
		return ""
	}
	return r.selGetName(sel)
}

func (r *Runtime) GetClass(name string) objc.Class {
	return r.objcGetClass(name)
}

func (r *Runtime) ClassName(cls objc.Class) string {
	if cls == 0 {
		return ""
	}
	return r.classGetName(cls)
}

func (r *Runtime) Superclass(cls objc.Class) objc.Class {
	if cls == 0 {
		return 0
	}
	return r.classGetSuperclass(cls)
}

func (r *Runtime) ObjectClass(obj objc.ID) objc.Class {
	if obj == 0 {
		return 0
	}
	return r.objectGetClass(obj)
}

func (r *Runtime) ObjectClassName(obj objc.ID) string {
	if obj == 0 {
		return "nil"
	}
	return r.classGetName(r.objectGetClass(obj))
}

// CopyMethodList returns the methods cls itself defines. The runtime returns
// NULL for a class without methods, which is reported as an empty list.
func (r *Runtime) CopyMethodList(cls objc.Class) ([]objc.Method, bool) {
	if cls == 0 {
		return nil, true
	}
	var n uint32
	p := r.classCopyMethodList(cls, &n)
	if p == nil {
		return nil, true
	}
	defer r.free(p)

	out := make([]objc.Method, n)
	copy(out, unsafe.Slice((*objc.Method)(p), n))
	return out, true
}

func (r *Runtime) MethodName(m objc.Method) objc.SEL {
	return r.methodGetName(m)
}

func (r *Runtime) MethodReturnType(m objc.Method) string {
	return r.takeString(r.methodCopyReturnType(m))
}

func (r *Runtime) MethodNumArguments(m objc.Method) int {
	return int(r.methodGetNumArguments(m))
}

func (r *Runtime) MethodArgumentType(m objc.Method, index int) string {
	if index < 0 {
		return ""
	}
	return r.takeString(r.methodCopyArgumentType(m, uint32(index)))
}

// takeString copies and frees a malloc'd C string.
func (r *Runtime) takeString(p *byte) string {
	if p == nil {
		return ""
	}
	s := objc.GoString(p)
	r.free(unsafe.Pointer(p))
	return s
}

// MsgSend returns objc_msgSend typed as fn. Signatures purego cannot call,
// such as struct arguments off darwin, are reported as errors.
func (r *Runtime) MsgSend(fn reflect.Type) (send reflect.Value, err error) {
	if v, ok := r.sends.Load(fn); ok {
		return v.(reflect.Value), nil
	}
	if fn.Kind() != reflect.Func || fn.NumIn() < 2 {
		return reflect.Value{}, fmt.Errorf("libobjc: unsupported send signature %v", fn)
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("libobjc: cannot call %v: %v", fn, p)
		}
	}()

	ptr := reflect.New(fn)
	purego.RegisterFunc(ptr.Interface(), r.msgSend)
	v, loaded := r.sends.LoadOrStore(fn, ptr.Elem())
	if !loaded {
		r.log.Debug("registered send signature", zap.Stringer("type", fn))
	}
	return v.(reflect.Value), nil
}
