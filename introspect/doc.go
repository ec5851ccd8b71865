// Package introspect enumerates Objective-C methods and builds per-class method tables.
//
// Methods reads the method list of exactly one class. Resolve walks from a
// class up the superclass chain and merges every level into a MethodTable,
// keeping the most specific (subclass) signature for each selector. Resolved
// tables are cached by class handle for the life of the Introspector; foreign
// classes are assumed immutable once loaded.
//
// # Main Types
//
//   - Signature: return encoding plus all argument encodings, including the
//     implicit receiver and selector
//   - MethodTable: selector text -> Signature
//   - Introspector: cached resolver bound to one objcruntime.Runtime
//
// # Faults
//
// A live class whose runtime reports no method list indicates a corrupt
// handle. Methods and Resolve panic with an *errors.Error in that case
// instead of returning an error.
package introspect
