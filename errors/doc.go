// Package errors provides structured error types for the objc-runtime bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the foreign class and selector involved, the offending
// type encoding or Go type, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidEncoding).
//		Selector("initWithFrame:").
//		Encoding("(?=i)").
//		Detail("unions are not supported").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MethodNotFound("setFoo_", "NSView")
//	err := errors.Released("NSString", 0x600000c04000)
//
// The bridge groups failures into four families:
//
//   - configuration: unknown class or method, wrong argument count (KindNotFound, KindInvalidInput)
//   - decode: malformed or unsupported type encodings (PhaseDecode)
//   - lifetime: use of released or null handles (PhaseLifetime)
//   - introspection fault: a live class without a method list; raised as a panic
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
