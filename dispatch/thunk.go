package dispatch

import (
	"reflect"
	"runtime"
	"strconv"
	"unsafe"

	objc "github.com/wippyai/objc-runtime"
	"github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/typeenc"
)

// Receiver is a handle that can be the target or argument of a send.
type Receiver interface {
	ID() objc.ID
	Released() bool
	ClassName() string
}

// Thunk is a callable built for one method signature. Thunks are immutable
// and shared by every handle whose method resolves to the same signature.
type Thunk struct {
	engine   *Engine
	ret      *typeenc.Type
	fnType   reflect.Type
	send     reflect.Value
	name     string
	sel      string
	retEnc   string
	argEncs  []string
	params   []*typeenc.Type
	outError bool
	owned    bool
}

// Result is the outcome of a send. For out-error methods OutError holds the
// wrapped error object when the callee populated the cell.
type Result struct {
	Value    any
	OutError any
}

// Failed reports whether an out-error method reported an error.
func (r Result) Failed() bool {
	return r.OutError != nil
}

func (t *Thunk) Name() string {
	return t.name
}

// Selector returns the selector text the thunk sends.
func (t *Thunk) Selector() string {
	return t.sel
}

func (t *Thunk) Return() *typeenc.Type {
	return t.ret
}

// Params returns the decoded explicit arguments, excluding self and _cmd.
func (t *Thunk) Params() []*typeenc.Type {
	return t.params
}

func (t *Thunk) FuncType() reflect.Type {
	return t.fnType
}

// OutError reports whether the engine supplies the trailing error cell.
func (t *Thunk) OutError() bool {
	return t.outError
}

// ReturnsOwned reports whether object results carry a +1 reference.
func (t *Thunk) ReturnsOwned() bool {
	return t.owned
}

// Encodings returns the raw return and argument encodings the thunk was built from.
func (t *Thunk) Encodings() (string, []string) {
	return t.retEnc, t.argEncs
}

// Arity is the number of arguments a caller supplies. Out-error methods
// accept the trailing cell argument or not.
func (t *Thunk) Arity() int {
	if t.outError {
		return len(t.params) - 1
	}
	return len(t.params)
}

// Bind returns a Method that sends through t to recv.
func (t *Thunk) Bind(recv Receiver) *Method {
	return &Method{thunk: t, recv: recv}
}

// Invoke sends to a raw receiver without lifetime checks. Release paths use
// it after a handle is already marked released.
func (t *Thunk) Invoke(recv objc.ID, args ...any) (Result, error) {
	e := t.engine
	params := t.params

	if t.outError {
		switch len(args) {
		case len(params):
			// caller passed a placeholder for the cell
			args = args[:len(args)-1]
		case len(params) - 1:
		default:
			return Result{}, errors.ArgumentCount(t.sel, len(params)-1, len(args))
		}
	} else if len(args) != len(params) {
		return Result{}, errors.ArgumentCount(t.sel, len(params), len(args))
	}

	sel := e.Selector(t.sel)

	in := make([]reflect.Value, 0, len(params)+2)
	in = append(in, reflect.ValueOf(recv), reflect.ValueOf(sel))

	var keep []any
	for i, a := range args {
		v, err := e.coerce(a, params[i], &keep)
		if err != nil {
			return Result{}, argError(err, t.sel, i)
		}
		in = append(in, v)
	}

	var cell *objc.ID
	if t.outError {
		cell = new(objc.ID)
		in = append(in, reflect.ValueOf(unsafe.Pointer(cell)))
	}

	e.calls.Add(1)
	out := t.send.Call(in)
	runtime.KeepAlive(keep)

	var res Result
	if len(out) == 1 {
		v, err := e.unmarshal(out[0], t.ret, t.owned)
		if err != nil {
			return Result{}, annotate(err, t.sel)
		}
		res.Value = v
	}
	if cell != nil && *cell != 0 {
		v, err := e.wrapObject(*cell, false)
		if err != nil {
			return Result{}, annotate(err, t.sel)
		}
		res.OutError = v
	}
	return res, nil
}

// Method is a thunk bound to a receiver handle.
type Method struct {
	thunk *Thunk
	recv  Receiver
}

func (m *Method) Thunk() *Thunk {
	return m.thunk
}

func (m *Method) Receiver() Receiver {
	return m.recv
}

// Call invokes the bound method. A released receiver fails before any send.
func (m *Method) Call(args ...any) (Result, error) {
	if m.recv.Released() {
		err := errors.Released(m.recv.ClassName(), uintptr(m.recv.ID()))
		err.Selector = m.thunk.sel
		return Result{}, err
	}
	return m.thunk.Invoke(m.recv.ID(), args...)
}

func argError(err error, sel string, index int) error {
	if e, ok := err.(*errors.Error); ok {
		cp := *e
		cp.Selector = sel
		if cp.Detail == "" {
			cp.Detail = "argument " + strconv.Itoa(index)
		} else {
			cp.Detail = "argument " + strconv.Itoa(index) + ": " + cp.Detail
		}
		return &cp
	}
	return err
}
