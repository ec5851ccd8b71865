// Package objcruntime provides a dynamic bridge from Go into the Objective-C
// object runtime.
//
// Classes and methods are discovered at run time: no per-class bindings are
// generated. A method is looked up by name, its type encodings are decoded into
// Go types, and a call thunk that performs objc_msgSend with the right
// signature is built once and cached.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	objcruntime/         Root package with handle types and the Runtime interface
//	├── typeenc/         Type encoding decoder ("^@", "r*", "{CGRect=...}")
//	├── introspect/      Method lists and superclass-chain method tables
//	├── dispatch/        Selector cache, call thunks, argument coercion
//	├── object/          Object handles, registry, release bookkeeping
//	├── resource/        Live handle table with lifecycle observers
//	├── libobjc/         Runtime implementation over libobjc (purego)
//	├── objctest/        Simulated in-memory runtime for tests and demos
//	├── config/          TOML configuration
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
//	rt, err := libobjc.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reg := object.New(rt)
//	defer reg.Close()
//
//	NSString, err := reg.FromClassName("NSString")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := NSString.Call("stringWithUTF8String_", "Hello")
//	str, _ := object.AsObject(res.Value)
//	fmt.Println(reg.ToString(str)) // "Hello"
//
// # Method Names
//
// Go callers spell selectors with underscores in place of colons:
// "doThing_withValue_" dispatches "doThing:withValue:".
//
// # Thread Safety
//
// Registry caches are safe for concurrent use. Object is NOT thread-safe and
// should be used by a single goroutine, or access must be synchronized.
//
// # Memory Model
//
// Objects are reference counted by the foreign runtime. Handles created from
// class names and handles returned by ordinary methods are borrowed; handles
// returned by alloc/new/copy/mutableCopy methods are owned and must be
// released with Close. Release is never tied to Go garbage collection.
package objcruntime
