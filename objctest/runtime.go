package objctest

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	objc "github.com/wippyai/objc-runtime"
)

const handleStride = 0x10

// Runtime is a simulated Objective-C runtime. It is safe for concurrent use.
type Runtime struct {
	classes    map[string]*class
	byHandle   map[objc.Class]*class
	objects    map[objc.ID]*object
	sels       map[string]objc.SEL
	selNames   map[objc.SEL]string
	methods    map[objc.Method]*method
	copyCalls  map[objc.Class]int
	registered map[string]int
	broken     map[objc.Class]bool
	cstrings   [][]byte
	sends      int
	next       uintptr
	mu         sync.Mutex
}

type class struct {
	super   *class
	meta    *class
	name    string
	methods []*method
	handle  objc.Class
	isMeta  bool
}

type method struct {
	imp    Imp
	sel    string
	ret    string
	args   []string
	handle objc.Method
}

type object struct {
	class    *class
	value    any
	refs     int
	releases int
}

// New returns a runtime with the Foundation subset used by the bridge:
// NSObject, NSString, NSError and NSArray.
func New() *Runtime {
	r := &Runtime{
		classes:    make(map[string]*class),
		byHandle:   make(map[objc.Class]*class),
		objects:    make(map[objc.ID]*object),
		sels:       make(map[string]objc.SEL),
		selNames:   make(map[objc.SEL]string),
		methods:    make(map[objc.Method]*method),
		copyCalls:  make(map[objc.Class]int),
		registered: make(map[string]int),
		broken:     make(map[objc.Class]bool),
		next:       0x1000,
	}
	defineFoundation(r)
	return r
}

func (r *Runtime) alloc() uintptr {
	r.next += handleStride
	return r.next
}

// DefineClass creates a class (and its metaclass) named name with the given
// superclass. An empty super defines a root class. Defining an existing name
// returns a builder for the existing class.
func (r *Runtime) DefineClass(name, super string) *ClassBuilder {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.classes[name]; ok {
		return &ClassBuilder{rt: r, cls: c}
	}

	var sup *class
	if super != "" {
		sup = r.classes[super]
		if sup == nil {
			panic(fmt.Sprintf("objctest: superclass %q of %q is not defined", super, name))
		}
	}

	c := &class{name: name, super: sup, handle: objc.Class(r.alloc())}
	meta := &class{name: name, isMeta: true, handle: objc.Class(r.alloc())}
	if sup != nil {
		meta.super = sup.meta
	} else {
		meta.super = c
	}
	c.meta = meta

	r.classes[name] = c
	r.byHandle[c.handle] = c
	r.byHandle[meta.handle] = meta
	return &ClassBuilder{rt: r, cls: c}
}

func (r *Runtime) addMethod(c *class, sel, ret string, args []string, imp Imp) {
	r.mu.Lock()
	defer r.mu.Unlock()

	full := make([]string, 0, len(args)+2)
	full = append(full, "@", ":")
	full = append(full, args...)

	m := &method{sel: sel, ret: ret, args: full, imp: imp, handle: objc.Method(r.alloc())}
	for i, existing := range c.methods {
		if existing.sel == sel {
			delete(r.methods, existing.handle)
			c.methods[i] = m
			r.methods[m.handle] = m
			return
		}
	}
	c.methods = append(c.methods, m)
	r.methods[m.handle] = m
}

// NewObject allocates an instance of the named class with a retain count of one.
func (r *Runtime) NewObject(className string) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.classes[className]
	if c == nil {
		panic(fmt.Sprintf("objctest: class %q is not defined", className))
	}
	return r.newObjectLocked(c, nil)
}

func (r *Runtime) newObjectLocked(c *class, value any) objc.ID {
	id := objc.ID(r.alloc())
	r.objects[id] = &object{class: c, refs: 1, value: value}
	return id
}

// Value returns the Go value attached to an object (the text of an NSString,
// the elements of an NSArray).
func (r *Runtime) Value(id objc.ID) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o := r.objects[id]; o != nil {
		return o.value
	}
	return nil
}

// SetValue attaches a Go value to an object.
func (r *Runtime) SetValue(id objc.ID, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o := r.objects[id]; o != nil {
		o.value = v
	}
}

// RetainCount returns the current retain count of an object, or 0 if unknown.
func (r *Runtime) RetainCount(id objc.ID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o := r.objects[id]; o != nil {
		return o.refs
	}
	return 0
}

// ReleaseCount returns how many release messages an object received.
func (r *Runtime) ReleaseCount(id objc.ID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o := r.objects[id]; o != nil {
		return o.releases
	}
	return 0
}

// CopyMethodListCalls returns how many times CopyMethodList ran for cls.
func (r *Runtime) CopyMethodListCalls(cls objc.Class) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyCalls[cls]
}

// RegisterCalls returns how many times RegisterName ran for name.
func (r *Runtime) RegisterCalls(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registered[name]
}

// Sends returns the number of dynamic sends performed.
func (r *Runtime) Sends() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sends
}

// BreakMethodList makes CopyMethodList report no method list for cls.
func (r *Runtime) BreakMethodList(cls objc.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken[cls] = true
}

// CString returns a NUL-terminated copy of s owned by the runtime. It stays
// valid for the lifetime of r, like memory owned by a foreign object.
func (r *Runtime) CString(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	r.mu.Lock()
	r.cstrings = append(r.cstrings, b)
	r.mu.Unlock()
	return &b[0]
}

func (r *Runtime) RegisterName(name string) objc.SEL {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registered[name]++
	if sel, ok := r.sels[name]; ok {
		return sel
	}
	sel := objc.SEL(r.alloc())
	r.sels[name] = sel
	r.selNames[sel] = name
	return sel
}

func (r *Runtime) SelName(sel objc.SEL) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selNames[sel]
}

func (r *Runtime) GetClass(name string) objc.Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.classes[name]; c != nil {
		return c.handle
	}
	return 0
}

func (r *Runtime) ClassName(cls objc.Class) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.byHandle[cls]; c != nil {
		return c.name
	}
	return ""
}

func (r *Runtime) Superclass(cls objc.Class) objc.Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.byHandle[cls]; c != nil && c.super != nil {
		return c.super.handle
	}
	return 0
}

func (r *Runtime) ObjectClass(obj objc.ID) objc.Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.classOfLocked(obj); c != nil {
		return c.handle
	}
	return 0
}

func (r *Runtime) ObjectClassName(obj objc.ID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.classOfLocked(obj); c != nil {
		return c.name
	}
	return "nil"
}

// classOfLocked returns the isa of obj: the class of an instance, the
// metaclass of a class, and the root metaclass of a metaclass.
func (r *Runtime) classOfLocked(obj objc.ID) *class {
	if o := r.objects[obj]; o != nil {
		return o.class
	}
	c := r.byHandle[objc.Class(obj)]
	if c == nil {
		return nil
	}
	if !c.isMeta {
		return c.meta
	}
	root := c
	for root.super != nil && root.super.isMeta {
		root = root.super
	}
	return root
}

func (r *Runtime) CopyMethodList(cls objc.Class) ([]objc.Method, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.copyCalls[cls]++
	c := r.byHandle[cls]
	if c == nil || r.broken[cls] {
		return nil, false
	}
	out := make([]objc.Method, len(c.methods))
	for i, m := range c.methods {
		out[i] = m.handle
	}
	return out, true
}

func (r *Runtime) MethodName(m objc.Method) objc.SEL {
	r.mu.Lock()
	md := r.methods[m]
	r.mu.Unlock()
	if md == nil {
		return 0
	}
	return r.RegisterName(md.sel)
}

func (r *Runtime) MethodReturnType(m objc.Method) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if md := r.methods[m]; md != nil {
		return md.ret
	}
	return ""
}

func (r *Runtime) MethodNumArguments(m objc.Method) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if md := r.methods[m]; md != nil {
		return len(md.args)
	}
	return 0
}

func (r *Runtime) MethodArgumentType(m objc.Method, index int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	md := r.methods[m]
	if md == nil || index < 0 || index >= len(md.args) {
		return ""
	}
	return md.args[index]
}

// lookupLocked finds the implementation of sel for the receiver's class,
// walking superclasses.
func (r *Runtime) lookupLocked(self objc.ID, sel string) (*method, *class) {
	isa := r.classOfLocked(self)
	for c := isa; c != nil; c = c.super {
		for _, m := range c.methods {
			if m.sel == sel {
				return m, isa
			}
		}
	}
	return nil, isa
}

// MsgSend builds a function of type fn that dispatches to the Go
// implementation registered for the selector. Unknown selectors panic the
// way the real runtime raises "unrecognized selector".
func (r *Runtime) MsgSend(fn reflect.Type) (reflect.Value, error) {
	if fn.Kind() != reflect.Func || fn.NumIn() < 2 || fn.NumOut() > 1 {
		return reflect.Value{}, fmt.Errorf("objctest: unsupported send signature %v", fn)
	}

	return reflect.MakeFunc(fn, func(in []reflect.Value) []reflect.Value {
		self := objc.ID(in[0].Uint())
		sel := objc.SEL(in[1].Uint())

		r.mu.Lock()
		r.sends++
		name := r.selNames[sel]
		m, isa := r.lookupLocked(self, name)
		r.mu.Unlock()

		if self == 0 {
			return zeroResults(fn)
		}
		if m == nil {
			panic(fmt.Sprintf("objctest: unrecognized selector %q sent to %s at 0x%x", name, className(isa), uintptr(self)))
		}
		if len(m.args) != fn.NumIn() {
			panic(fmt.Sprintf("objctest: %s sent with %d arguments, method takes %d", name, fn.NumIn(), len(m.args)))
		}

		args := make([]any, len(in)-2)
		for i, v := range in[2:] {
			args[i] = v.Interface()
		}
		out := m.imp(&Call{Runtime: r, Self: self, Selector: name, Args: args})

		if fn.NumOut() == 0 {
			return nil
		}
		rt := fn.Out(0)
		rv := reflect.ValueOf(out)
		if !rv.IsValid() {
			return []reflect.Value{reflect.Zero(rt)}
		}
		if rt.Kind() == reflect.UnsafePointer && rv.Kind() == reflect.Pointer {
			return []reflect.Value{reflect.ValueOf(rv.UnsafePointer())}
		}
		return []reflect.Value{rv.Convert(rt)}
	}), nil
}

func zeroResults(fn reflect.Type) []reflect.Value {
	if fn.NumOut() == 0 {
		return nil
	}
	return []reflect.Value{reflect.Zero(fn.Out(0))}
}

func className(c *class) string {
	if c == nil {
		return "nil"
	}
	return c.name
}

// readIDs reads n consecutive handles starting at p.
func readIDs(p unsafe.Pointer, n int) []objc.ID {
	if p == nil || n <= 0 {
		return nil
	}
	src := unsafe.Slice((*objc.ID)(p), n)
	out := make([]objc.ID, n)
	copy(out, src)
	return out
}

var _ objc.Runtime = (*Runtime)(nil)
