package libobjc

import (
	"runtime"

	"go.uber.org/zap"
)

// FoundationPath is the macOS Foundation framework binary.
const FoundationPath = "/System/Library/Frameworks/Foundation.framework/Foundation"

// DefaultPaths returns the runtime library candidates for the current OS.
func DefaultPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/usr/lib/libobjc.A.dylib"}
	case "freebsd":
		return []string{"libobjc.so.4", "libobjc.so"}
	default:
		return []string{"libobjc.so.4", "libobjc.so", "libobjc.so.2"}
	}
}

func defaultLibc() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/usr/lib/libSystem.B.dylib"}
	case "freebsd":
		return []string{"libc.so.7"}
	default:
		return []string{"libc.so.6", "libc.so"}
	}
}

type config struct {
	log        *zap.Logger
	paths      []string
	frameworks []string
}

// Option configures Open.
type Option func(*config)

// WithPaths overrides the runtime library candidates. The first that loads wins.
func WithPaths(paths ...string) Option {
	return func(c *config) {
		if len(paths) > 0 {
			c.paths = paths
		}
	}
}

// WithFrameworks loads additional libraries, such as Foundation, after the
// runtime so their classes are registered.
func WithFrameworks(paths ...string) Option {
	return func(c *config) {
		c.frameworks = append(c.frameworks, paths...)
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}
