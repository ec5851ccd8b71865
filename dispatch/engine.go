package dispatch

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	objc "github.com/wippyai/objc-runtime"
	"github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/introspect"
	"github.com/wippyai/objc-runtime/typeenc"
)

// DefaultOutErrorSuffix marks selectors that take a trailing NSError** cell.
const DefaultOutErrorSuffix = "error:"

// Wrapper converts a non-null object result into a host value.
// owned reports whether the send transferred a +1 reference to the caller.
type Wrapper func(id objc.ID, owned bool) (any, error)

// StringFactory creates a foreign string object from Go text.
type StringFactory func(s string) (objc.ID, error)

// Engine owns the selector, thunk and send-function caches for one runtime.
// It is safe for concurrent use.
type Engine struct {
	rt             objc.Runtime
	decoder        *typeenc.Decoder
	log            *zap.Logger
	wrap           Wrapper
	newString      StringFactory
	sels           map[string]objc.SEL
	thunks         map[thunkKey]*Thunk
	sends          map[reflect.Type]reflect.Value
	outErrorSuffix string
	builds         atomic.Uint64
	hits           atomic.Uint64
	calls          atomic.Uint64
	selMu          sync.RWMutex
	mu             sync.Mutex
}

type thunkKey struct {
	name string
	sel  string
	ret  string
	args string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for thunk builds.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithWrapper sets the hook that turns object results into handles.
func WithWrapper(w Wrapper) Option {
	return func(e *Engine) {
		e.wrap = w
	}
}

// WithStringFactory sets the hook used to pass Go strings into object slots.
func WithStringFactory(f StringFactory) Option {
	return func(e *Engine) {
		e.newString = f
	}
}

// WithOutErrorSuffix overrides the selector suffix that marks out-error methods.
// An empty suffix disables out-error handling.
func WithOutErrorSuffix(suffix string) Option {
	return func(e *Engine) {
		e.outErrorSuffix = suffix
	}
}

// WithDecoder shares a type decoder between engines.
func WithDecoder(d *typeenc.Decoder) Option {
	return func(e *Engine) {
		if d != nil {
			e.decoder = d
		}
	}
}

// Stats reports cache sizes and counters.
type Stats struct {
	Thunks    int
	Selectors int
	Builds    uint64
	Hits      uint64
	Calls     uint64
}

func NewEngine(rt objc.Runtime, opts ...Option) *Engine {
	e := &Engine{
		rt:             rt,
		decoder:        typeenc.NewDecoder(),
		log:            Logger(),
		sels:           make(map[string]objc.SEL),
		thunks:         make(map[thunkKey]*Thunk),
		sends:          make(map[reflect.Type]reflect.Value),
		outErrorSuffix: DefaultOutErrorSuffix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Runtime returns the runtime the engine sends through.
func (e *Engine) Runtime() objc.Runtime {
	return e.rt
}

// OutErrorSuffix returns the selector suffix that marks out-error methods.
// Empty means the convention is disabled.
func (e *Engine) OutErrorSuffix() string {
	return e.outErrorSuffix
}

// IsOutError reports whether a method with selector sel and decoded explicit
// params follows the out-error convention.
func (e *Engine) IsOutError(sel string, params []*typeenc.Type) bool {
	return e.outErrorSuffix != "" &&
		strings.HasSuffix(sel, e.outErrorSuffix) &&
		len(params) > 0 &&
		params[len(params)-1].IsObjectPointer()
}

// Selector returns the registered selector for text, registering it with the
// runtime on first use.
func (e *Engine) Selector(text string) objc.SEL {
	e.selMu.RLock()
	sel, ok := e.sels[text]
	e.selMu.RUnlock()
	if ok {
		return sel
	}

	e.selMu.Lock()
	defer e.selMu.Unlock()
	if sel, ok := e.sels[text]; ok {
		return sel
	}
	sel = e.rt.RegisterName(text)
	e.sels[text] = sel
	return sel
}

// Build returns the thunk for a method signature, building it on first use.
// args are the full argument encodings including receiver and selector.
// A thunk is cached only after every encoding decoded successfully.
func (e *Engine) Build(name, sel, ret string, args []string) (*Thunk, error) {
	key := thunkKey{name: name, sel: sel, ret: ret, args: strings.Join(args, "\x00")}

	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.thunks[key]; ok {
		e.hits.Add(1)
		return t, nil
	}

	t, err := e.build(name, sel, ret, args)
	if err != nil {
		e.log.Debug("thunk build failed",
			zap.String("name", name),
			zap.String("selector", sel),
			zap.Error(err))
		return nil, err
	}

	e.thunks[key] = t
	e.builds.Add(1)
	e.log.Debug("built thunk",
		zap.String("name", name),
		zap.String("selector", sel),
		zap.Stringer("signature", t.fnType),
		zap.Bool("out_error", t.outError))
	return t, nil
}

// BuildSignature is Build for a signature taken from a method table.
func (e *Engine) BuildSignature(name, sel string, sig introspect.Signature) (*Thunk, error) {
	return e.Build(name, sel, sig.Return, sig.Args)
}

func (e *Engine) build(name, sel, retEnc string, argEncs []string) (*Thunk, error) {
	if len(argEncs) < introspect.ImplicitArgs {
		return nil, errors.New(errors.PhaseBuild, errors.KindInvalidInput).
			Selector(sel).
			Detail("signature has %d arguments, need at least receiver and selector", len(argEncs)).
			Build()
	}

	ret, err := e.decoder.Decode(retEnc)
	if err != nil {
		return nil, annotate(err, sel)
	}
	params, err := e.decoder.DecodeAll(argEncs[introspect.ImplicitArgs:])
	if err != nil {
		return nil, annotate(err, sel)
	}
	for i, p := range params {
		if p.IsVoid() {
			return nil, errors.New(errors.PhaseBuild, errors.KindInvalidEncoding).
				Selector(sel).
				Encoding(p.Encoding).
				Detail("argument %d has no value type", i).
				Build()
		}
	}

	outError := e.IsOutError(sel, params)

	fnType := typeenc.FuncType(ret, params)
	send, err := e.sendFunc(fnType)
	if err != nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindUnsupported).
			Selector(sel).
			GoType(fnType.String()).
			Cause(err).
			Build()
	}

	return &Thunk{
		engine:   e,
		name:     name,
		sel:      sel,
		retEnc:   retEnc,
		argEncs:  append([]string(nil), argEncs...),
		ret:      ret,
		params:   params,
		fnType:   fnType,
		send:     send,
		outError: outError,
		owned:    ownsResult(sel),
	}, nil
}

// sendFunc returns the cached objc_msgSend function for fnType. Callers hold e.mu.
func (e *Engine) sendFunc(fnType reflect.Type) (reflect.Value, error) {
	if fn, ok := e.sends[fnType]; ok {
		return fn, nil
	}
	fn, err := e.rt.MsgSend(fnType)
	if err != nil {
		return reflect.Value{}, err
	}
	e.sends[fnType] = fn
	return fn, nil
}

// Stats returns cache sizes and counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	thunks := len(e.thunks)
	e.mu.Unlock()

	e.selMu.RLock()
	sels := len(e.sels)
	e.selMu.RUnlock()

	return Stats{
		Thunks:    thunks,
		Selectors: sels,
		Builds:    e.builds.Load(),
		Hits:      e.hits.Load(),
		Calls:     e.calls.Load(),
	}
}

// ownsResult applies the Cocoa naming convention: methods in the alloc, new,
// copy and mutableCopy families return a +1 reference.
func ownsResult(sel string) bool {
	for _, family := range []string{"alloc", "new", "copy", "mutableCopy"} {
		if !strings.HasPrefix(sel, family) {
			continue
		}
		rest := sel[len(family):]
		if rest == "" || rest[0] == ':' || (rest[0] >= 'A' && rest[0] <= 'Z') {
			return true
		}
	}
	return false
}

// annotate attaches the selector to a structured error without changing its kind.
func annotate(err error, sel string) error {
	if e, ok := err.(*errors.Error); ok {
		cp := *e
		cp.Selector = sel
		return &cp
	}
	return err
}
