package introspect

import (
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	objc "github.com/wippyai/objc-runtime"
	"github.com/wippyai/objc-runtime/errors"
)

// Introspector resolves and caches method tables for one runtime.
// It is safe for concurrent use.
type Introspector struct {
	rt     objc.Runtime
	log    *zap.Logger
	cache  sync.Map // objc.Class -> MethodTable
	group  singleflight.Group
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithLogger sets the logger used for cache misses and walks.
func WithLogger(l *zap.Logger) Option {
	return func(in *Introspector) {
		if l != nil {
			in.log = l
		}
	}
}

// Stats reports method table cache effectiveness.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Classes int
}

func New(rt objc.Runtime, opts ...Option) *Introspector {
	in := &Introspector{
		rt:  rt,
		log: Logger(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Runtime returns the runtime the introspector queries.
func (in *Introspector) Runtime() objc.Runtime {
	return in.rt
}

// Methods returns the methods defined directly on cls, not its ancestors.
// It panics if the runtime reports no method list for a non-null class.
func (in *Introspector) Methods(cls objc.Class) MethodTable {
	if cls == 0 {
		return MethodTable{}
	}

	methods, ok := in.rt.CopyMethodList(cls)
	if !ok {
		panic(errors.IntrospectionFault(in.rt.ClassName(cls), uintptr(cls)))
	}

	table := make(MethodTable, len(methods))
	for _, m := range methods {
		sel := in.rt.SelName(in.rt.MethodName(m))
		n := in.rt.MethodNumArguments(m)
		args := make([]string, n)
		for i := 0; i < n; i++ {
			args[i] = in.rt.MethodArgumentType(m, i)
		}
		table[sel] = Signature{
			Return: in.rt.MethodReturnType(m),
			Args:   args,
		}
	}
	return table
}

// Resolve returns the merged method table of cls and all its superclasses.
// Subclass entries take precedence. Results are cached by class handle;
// concurrent first calls for the same class share one walk.
func (in *Introspector) Resolve(cls objc.Class) MethodTable {
	if cls == 0 {
		return MethodTable{}
	}

	if cached, ok := in.cache.Load(cls); ok {
		in.hits.Add(1)
		return cached.(MethodTable)
	}

	key := strconv.FormatUint(uint64(cls), 16)
	v, err, _ := in.group.Do(key, func() (any, error) {
		if cached, ok := in.cache.Load(cls); ok {
			return cached, nil
		}
		in.misses.Add(1)

		table, fault := in.walk(cls)
		if fault != nil {
			return nil, fault
		}
		in.cache.Store(cls, table)
		return table, nil
	})
	if err != nil {
		// Faults are re-raised in every caller sharing the walk.
		panic(err)
	}
	return v.(MethodTable)
}

func (in *Introspector) walk(cls objc.Class) (table MethodTable, fault *errors.Error) {
	defer func() {
		if p := recover(); p != nil {
			e, ok := p.(*errors.Error)
			if !ok {
				panic(p)
			}
			fault = e
		}
	}()

	table = make(MethodTable)
	depth := 0
	for c := cls; c != 0; c = in.rt.Superclass(c) {
		table.merge(in.Methods(c))
		depth++
	}

	in.log.Debug("resolved method table",
		zap.String("class", in.rt.ClassName(cls)),
		zap.Uintptr("handle", uintptr(cls)),
		zap.Int("depth", depth),
		zap.Int("methods", len(table)))

	return table, nil
}

// Hierarchy returns cls followed by each of its superclasses up to the root.
func (in *Introspector) Hierarchy(cls objc.Class) []objc.Class {
	var chain []objc.Class
	for c := cls; c != 0; c = in.rt.Superclass(c) {
		chain = append(chain, c)
	}
	return chain
}

// Stats returns cache hit and miss counters.
func (in *Introspector) Stats() Stats {
	classes := 0
	in.cache.Range(func(_, _ any) bool {
		classes++
		return true
	})
	return Stats{
		Hits:    in.hits.Load(),
		Misses:  in.misses.Load(),
		Classes: classes,
	}
}
