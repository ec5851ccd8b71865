//go:build !darwin && !linux && !freebsd

package libobjc

import (
	"runtime"

	objc "github.com/wippyai/objc-runtime"
	"github.com/wippyai/objc-runtime/errors"
)

// Runtime is unavailable on this platform.
type Runtime struct {
	objc.Runtime
}

// Open always fails on this platform.
func Open(opts ...Option) (*Runtime, error) {
	return nil, errors.Load("objc runtime is not supported on "+runtime.GOOS, nil)
}

func (r *Runtime) Path() string {
	return ""
}
