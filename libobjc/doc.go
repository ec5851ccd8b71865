// Package libobjc binds the system Objective-C runtime library without cgo.
//
// Runtime loads libobjc with purego, registers the introspection functions it
// needs and builds typed objc_msgSend entry points on demand, one per Go
// function signature:
//
//	rt, err := libobjc.Open(libobjc.WithFrameworks(libobjc.FoundationPath))
//	if err != nil {
//	    return err
//	}
//	reg := object.New(rt)
//
// On macOS the runtime is /usr/lib/libobjc.A.dylib; on Linux the GNUstep
// libobjc2 shared object is tried. Other platforms report a load error.
//
// Sends go straight to objc_msgSend. Struct returns that need
// objc_msgSend_stret are not supported, and a foreign exception raised during
// a send terminates the process.
package libobjc
