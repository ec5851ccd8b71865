// Package objctest provides an in-memory Objective-C runtime for tests and demos.
//
// Runtime implements objcruntime.Runtime without any native library: classes,
// metaclasses, selectors and objects live in Go maps, and dynamic sends are
// served by reflect.MakeFunc dispatching to Go implementations. Class methods
// live on metaclasses and the root metaclass inherits from the root class,
// matching the real runtime's lookup rules.
//
// New returns a runtime with NSObject, NSString, NSError and NSArray defined.
// Demo adds the Greeter family used by examples and the CLI.
//
//	rt := objctest.New()
//	rt.DefineClass("Counter", "NSObject").
//		Method("increment", "v", nil, func(c *objctest.Call) any {
//			return nil
//		})
//
// The runtime records call counts (method list copies, sends, releases) so
// tests can assert on caching and lifetime behavior.
package objctest
