package object

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"fortio.org/safecast"
	"go.uber.org/zap"

	objc "github.com/wippyai/objc-runtime"
	"github.com/wippyai/objc-runtime/dispatch"
	"github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/introspect"
	"github.com/wippyai/objc-runtime/resource"
)

const (
	// DefaultStringClass is the class used to create foreign strings.
	DefaultStringClass = "NSString"

	utf8Encoding = 4
)

// Registry creates handles for one runtime and tracks the owning ones until
// they are released. Borrowed handles are not tracked and are collected like
// any Go value. It is safe for concurrent use.
type Registry struct {
	rt          objc.Runtime
	intro       *introspect.Introspector
	engine      *dispatch.Engine
	table       *resource.Table
	log         *zap.Logger
	stringClass string
	closed      atomic.Bool
}

type config struct {
	log            *zap.Logger
	stringClass    string
	outErrorSuffix string
	observers      []resource.Observer
}

// Option configures a Registry.
type Option func(*config)

// WithLogger sets the logger shared by the registry, its introspector and
// its dispatch engine.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithStringClass overrides the class used to create foreign strings.
func WithStringClass(name string) Option {
	return func(c *config) {
		if name != "" {
			c.stringClass = name
		}
	}
}

// WithOutErrorSuffix overrides the selector suffix that marks out-error methods.
func WithOutErrorSuffix(suffix string) Option {
	return func(c *config) {
		c.outErrorSuffix = suffix
	}
}

// WithObserver subscribes o to handle lifecycle events.
func WithObserver(o resource.Observer) Option {
	return func(c *config) {
		c.observers = append(c.observers, o)
	}
}

// New creates a registry for rt.
func New(rt objc.Runtime, opts ...Option) *Registry {
	cfg := config{
		log:            Logger(),
		stringClass:    DefaultStringClass,
		outErrorSuffix: dispatch.DefaultOutErrorSuffix,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{
		rt:          rt,
		table:       resource.NewTable(),
		log:         cfg.log,
		stringClass: cfg.stringClass,
	}
	r.intro = introspect.New(rt, introspect.WithLogger(cfg.log))
	r.engine = dispatch.NewEngine(rt,
		dispatch.WithLogger(cfg.log),
		dispatch.WithOutErrorSuffix(cfg.outErrorSuffix),
		dispatch.WithWrapper(r.wrapResult),
		dispatch.WithStringFactory(r.foreignString))
	for _, o := range cfg.observers {
		r.table.Subscribe(o)
	}
	return r
}

func (r *Registry) Runtime() objc.Runtime {
	return r.rt
}

// Introspector returns the method-table introspector shared by all handles.
func (r *Registry) Introspector() *introspect.Introspector {
	return r.intro
}

// Engine returns the dispatch engine that owns the selector and thunk caches.
func (r *Registry) Engine() *dispatch.Engine {
	return r.engine
}

// Table returns the live-handle table.
func (r *Registry) Table() *resource.Table {
	return r.table
}

// FromClassName returns a borrowed handle for the named class object.
func (r *Registry) FromClassName(name string) (*Object, error) {
	cls := r.rt.GetClass(name)
	if cls == 0 {
		return nil, errors.ClassNotFound(name)
	}
	return r.Wrap(objc.ID(cls), false)
}

// Wrap creates a handle for id. owned records whether the caller transfers a
// +1 reference to the handle. A null id is rejected. Only owning handles
// occupy a slot in the live table.
func (r *Registry) Wrap(id objc.ID, owned bool) (*Object, error) {
	if id == 0 {
		return nil, errors.NilHandle("object")
	}
	if r.closed.Load() {
		return nil, r.closedError("")
	}

	cls := r.rt.ObjectClass(id)
	table, err := r.resolve(cls)
	if err != nil {
		return nil, err
	}

	o := &Object{
		reg:     r,
		id:      id,
		class:   r.rt.ClassName(cls),
		methods: table,
		owned:   owned,
	}
	if !owned {
		return o, nil
	}
	if o.slot = r.track(o, resource.Owned); o.slot == 0 {
		return nil, r.closedError(o.class)
	}
	return o, nil
}

// track inserts o into the live table. It returns 0 once the registry is closed.
func (r *Registry) track(o *Object, owner resource.Ownership) resource.Handle {
	return r.table.Insert(resource.Entry{ID: o.id, Class: o.class, Owner: owner, Value: o})
}

func (r *Registry) closedError(class string) error {
	return errors.New(errors.PhaseLifetime, errors.KindNotInitialized).
		Class(class).
		Detail("registry is closed").
		Build()
}

// MethodTable resolves the method table of cls, reporting an introspection
// fault as an error. Pass a metaclass for class methods.
func (r *Registry) MethodTable(cls objc.Class) (introspect.MethodTable, error) {
	return r.resolve(cls)
}

// resolve converts an introspection fault into an error.
func (r *Registry) resolve(cls objc.Class) (table introspect.MethodTable, err error) {
	defer func() {
		if p := recover(); p != nil {
			fault, ok := p.(*errors.Error)
			if !ok {
				panic(p)
			}
			err = fault
		}
	}()
	return r.intro.Resolve(cls), nil
}

func (r *Registry) wrapResult(id objc.ID, owned bool) (any, error) {
	o, err := r.Wrap(id, owned)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// String creates a foreign string holding s.
func (r *Registry) String(s string) (*Object, error) {
	cls, err := r.FromClassName(r.stringClass)
	if err != nil {
		return nil, err
	}
	defer cls.Release()

	res, err := cls.Call("stringWithUTF8String_", s)
	if err != nil {
		return nil, err
	}
	o, ok := AsObject(res.Value)
	if !ok {
		return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidData).
			Class(r.stringClass).
			Selector("stringWithUTF8String:").
			Detail("string constructor returned nil").
			Build()
	}
	return o, nil
}

// foreignString backs Go strings passed into object slots. The temporary
// handle is dropped; the foreign string is borrowed like any convenience
// constructor result.
func (r *Registry) foreignString(s string) (objc.ID, error) {
	o, err := r.String(s)
	if err != nil {
		return 0, err
	}
	id := o.ID()
	_ = o.Release()
	return id, nil
}

// ToString reads the UTF-8 contents of a foreign string. When the object
// reports its UTF-8 byte length the exact byte count is used, so embedded
// NUL characters survive.
func (r *Registry) ToString(v any) (string, error) {
	var o *Object
	switch x := v.(type) {
	case *Object:
		o = x
	case dispatch.Receiver:
		var err error
		if x.Released() {
			return "", errors.Released(x.ClassName(), uintptr(x.ID()))
		}
		if o, err = r.Wrap(x.ID(), false); err != nil {
			return "", err
		}
		defer o.Release()
	case nil:
		return "", errors.NilHandle("string")
	default:
		return "", errors.TypeMismatch(errors.PhaseCoerce, typeName(v), "@")
	}
	if o == nil {
		return "", errors.NilHandle("string")
	}
	if o.Released() {
		return "", o.releasedError("UTF8String")
	}

	th, err := r.engine.Build("UTF8String", "UTF8String", "r^v", []string{"@", ":"})
	if err != nil {
		return "", err
	}
	res, err := th.Bind(o).Call()
	if err != nil {
		return "", err
	}
	p, _ := res.Value.(unsafe.Pointer)
	if p == nil {
		return "", nil
	}

	if !o.Responds("lengthOfBytesUsingEncoding_") {
		return objc.GoString((*byte)(p)), nil
	}
	res, err = o.Call("lengthOfBytesUsingEncoding_", utf8Encoding)
	if err != nil {
		return "", err
	}
	n, err := byteCount(res.Value)
	if err != nil {
		return "", err
	}
	return objc.GoStringN((*byte)(p), n), nil
}

func byteCount(v any) (int, error) {
	var (
		n   int
		err error
	)
	switch x := v.(type) {
	case uint64:
		n, err = safecast.Conv[int](x)
	case int64:
		n, err = safecast.Conv[int](x)
	case uint32:
		n, err = safecast.Conv[int](x)
	default:
		return 0, errors.TypeMismatch(errors.PhaseDispatch, typeName(v), "Q")
	}
	if err != nil {
		return 0, errors.Overflow(errors.PhaseDispatch, v, "Q", err)
	}
	return n, nil
}

// Live returns the number of owning handles not yet released.
func (r *Registry) Live() int {
	return r.table.Len()
}

// Counts returns live handle counts by ownership.
func (r *Registry) Counts() resource.Counts {
	return r.table.Counts()
}

// Subscribe adds an observer for handle lifecycle events.
func (r *Registry) Subscribe(o resource.Observer) {
	r.table.Subscribe(o)
}

// Close sends release for every owning handle. Borrowed handles created by
// the registry report Released from then on.
func (r *Registry) Close() error {
	r.closed.Store(true)
	counts := r.table.Counts()
	r.log.Debug("closing registry",
		zap.Int("owned", counts.Owned),
		zap.Int("borrowed", counts.Borrowed))
	return r.table.Close()
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
