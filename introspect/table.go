package introspect

import (
	"sort"
	"strings"
)

// ImplicitArgs is the number of leading arguments every method takes:
// the receiver and the selector.
const ImplicitArgs = 2

// Signature is the encoded type signature of one method.
type Signature struct {
	Return string
	Args   []string
}

// Explicit returns the caller-visible argument encodings (Args without the
// receiver and selector).
func (s Signature) Explicit() []string {
	if len(s.Args) <= ImplicitArgs {
		return nil
	}
	return s.Args[ImplicitArgs:]
}

// Arity returns the number of caller-visible arguments.
func (s Signature) Arity() int {
	return len(s.Explicit())
}

// String renders the signature in method_getTypeEncoding order without
// offsets, e.g. "v@:i".
func (s Signature) String() string {
	return s.Return + strings.Join(s.Args, "")
}

// Equal reports whether two signatures have identical encodings.
func (s Signature) Equal(o Signature) bool {
	if s.Return != o.Return || len(s.Args) != len(o.Args) {
		return false
	}
	for i := range s.Args {
		if s.Args[i] != o.Args[i] {
			return false
		}
	}
	return true
}

// MethodTable maps selector text to its signature.
// Tables returned by an Introspector are shared and must not be modified.
type MethodTable map[string]Signature

// Lookup returns the signature registered for sel.
func (t MethodTable) Lookup(sel string) (Signature, bool) {
	sig, ok := t[sel]
	return sig, ok
}

// Selectors returns all selectors in sorted order.
func (t MethodTable) Selectors() []string {
	out := make([]string, 0, len(t))
	for sel := range t {
		out = append(out, sel)
	}
	sort.Strings(out)
	return out
}

// merge adds entries from fragment that are not already present.
func (t MethodTable) merge(fragment MethodTable) {
	for sel, sig := range fragment {
		if _, exists := t[sel]; !exists {
			t[sel] = sig
		}
	}
}
