package object

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	objc "github.com/wippyai/objc-runtime"
	"github.com/wippyai/objc-runtime/dispatch"
	"github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/introspect"
	"github.com/wippyai/objc-runtime/resource"
)

// Object is a host handle for a foreign object or class.
type Object struct {
	reg      *Registry
	methods  introspect.MethodTable
	class    string
	id       objc.ID
	slot     resource.Handle
	mu       sync.Mutex
	owned    bool
	released atomic.Bool
}

var _ dispatch.Receiver = (*Object)(nil)

// AsObject reports whether v is a live-or-released object handle.
func AsObject(v any) (*Object, bool) {
	o, ok := v.(*Object)
	return o, ok && o != nil
}

// Selector converts an underscore-spelled method name into selector text.
func Selector(name string) string {
	return strings.ReplaceAll(name, "_", ":")
}

// ID returns the foreign handle. It stays readable after release.
func (o *Object) ID() objc.ID {
	return o.id
}

// Released reports whether the handle was released or its registry closed.
func (o *Object) Released() bool {
	return o.released.Load() || o.reg.closed.Load()
}

// ClassName returns the name of the object's class. For class handles it is
// the class's own name.
func (o *Object) ClassName() string {
	return o.class
}

// Owned reports whether the handle holds its own reference.
func (o *Object) Owned() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.owned
}

// Methods returns the resolved method table, subclass entries first.
func (o *Object) Methods() introspect.MethodTable {
	return o.methods
}

// Selectors lists every selector the handle responds to.
func (o *Object) Selectors() []string {
	return o.methods.Selectors()
}

// Responds reports whether name resolves to a method.
func (o *Object) Responds(name string) bool {
	_, ok := o.methods.Lookup(Selector(name))
	return ok
}

// Method resolves name against the method table and returns it bound to o.
func (o *Object) Method(name string) (*dispatch.Method, error) {
	if o.Released() {
		return nil, o.releasedError(Selector(name))
	}

	sel := Selector(name)
	sig, ok := o.methods.Lookup(sel)
	if !ok {
		err := errors.MethodNotFound(name, o.class)
		err.Selector = sel
		return nil, err
	}

	th, err := o.reg.engine.BuildSignature(name, sel, sig)
	if err != nil {
		return nil, err
	}
	return th.Bind(o), nil
}

// Call resolves and invokes name with args.
func (o *Object) Call(name string, args ...any) (dispatch.Result, error) {
	m, err := o.Method(name)
	if err != nil {
		return dispatch.Result{}, err
	}
	return m.Call(args...)
}

// Retain sends retain and makes the handle owning, so the registry tracks it
// from then on. Retaining an owning handle is a no-op, so one release always
// balances it.
func (o *Object) Retain() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.Released() {
		return o.releasedError("retain")
	}
	if o.owned {
		return nil
	}

	th, err := o.lifetimeThunk("retain")
	if err != nil {
		return err
	}
	// reserve the slot first so a closed registry fails before the send
	slot := o.reg.track(o, resource.Borrowed)
	if slot == 0 {
		return o.reg.closedError(o.class)
	}
	if _, err := th.Invoke(o.id); err != nil {
		o.reg.table.Remove(slot)
		return err
	}
	o.owned = true
	o.slot = slot
	o.reg.table.SetOwnership(slot, resource.Owned)
	return nil
}

// Release invalidates the handle. An owning handle sends exactly one
// release; later calls are no-ops.
func (o *Object) Release() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.released.CompareAndSwap(false, true) {
		return nil
	}
	if !o.owned {
		return nil
	}
	defer o.reg.table.Remove(o.slot)

	th, err := o.lifetimeThunk("release")
	if err != nil {
		return err
	}
	if _, err := th.Invoke(o.id); err != nil {
		return err
	}
	o.reg.log.Debug("released object",
		zap.String("class", o.class),
		zap.Uintptr("id", uintptr(o.id)))
	return nil
}

// Close releases the handle.
func (o *Object) Close() error {
	return o.Release()
}

// lifetimeThunk builds a void thunk for retain or release. The retain result
// is the receiver and is not wrapped.
func (o *Object) lifetimeThunk(sel string) (*dispatch.Thunk, error) {
	return o.reg.engine.Build(sel, sel, "v", []string{"@", ":"})
}

func (o *Object) releasedError(sel string) error {
	err := errors.Released(o.class, uintptr(o.id))
	err.Selector = sel
	return err
}

func (o *Object) String() string {
	state := ""
	if o.Released() {
		state = " released"
	}
	return fmt.Sprintf("<%s 0x%x%s>", o.class, uintptr(o.id), state)
}
