// Package dispatch builds and caches call thunks for dynamic Objective-C sends.
//
// A Thunk is built once per (display name, selector, return encoding,
// argument encodings) tuple. Building decodes every encoding, derives the Go
// function type of the send and obtains a matching objc_msgSend function from
// the runtime. Invoking a thunk registers (or reuses) the selector, coerces Go
// arguments into foreign values, performs the send and marshals the result.
//
// # Coercion
//
//	string    -> C string slot      NUL-terminated bytes
//	string    -> object slot        foreign string object (StringFactory)
//	slice     -> object/pointer     contiguous array of handles
//	Receiver  -> handle slot        its ID; released receivers are rejected
//	numbers   -> numeric slot       range-checked conversion
//
// # Out-Error Methods
//
// Selectors ending in "error:" whose last argument is an object pointer (^@)
// follow the out-error convention. The engine supplies the error cell itself
// and reports a populated cell through Result.OutError. The suffix test is a
// naming heuristic; the trailing ^@ check keeps unrelated selectors that merely
// end in "error:" on the plain path.
//
// # Results
//
// Non-null object results are passed to the engine's Wrapper, so callers get
// handle values instead of raw IDs. C string results are copied into Go strings.
package dispatch
