// Package object wraps foreign objects in host handles with dynamic method access.
//
// A Registry ties together a runtime, a method-table introspector, a dispatch
// engine and a table of live handles. Every handle it creates resolves its
// class's method table (cached per class) and exposes methods by their
// underscore-spelled names:
//
//	reg := object.New(rt)
//	cls, _ := reg.FromClassName("NSString")
//	res, _ := cls.Call("stringWithUTF8String_", "hello")
//	s, _ := object.AsObject(res.Value)
//	text, _ := reg.ToString(s)
//
// Underscores map to colons, so doThing_withValue_ sends doThing:withValue:.
//
// # Ownership
//
// Handles produced by class lookup and by most sends are borrowed. Results of
// alloc, new, copy and mutableCopy family methods are owned, as are handles
// promoted with Retain. Releasing an owned handle sends exactly one release
// to the foreign object; releasing a borrowed handle only invalidates it.
// Any later use of a released handle fails with errors.ErrReleased without
// reaching the runtime.
package object
