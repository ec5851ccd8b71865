// Package config loads objc.toml bridge configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/libobjc"
	"github.com/wippyai/objc-runtime/object"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "objc.toml"

// Config is the bridge configuration.
type Config struct {
	Runtime  Runtime  `toml:"runtime"`
	Dispatch Dispatch `toml:"dispatch"`
	Log      Log      `toml:"log"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Runtime selects and locates the Objective-C runtime.
type Runtime struct {
	Paths      []string `toml:"paths"`
	Frameworks []string `toml:"frameworks"`
	Simulated  bool     `toml:"simulated"`
}

// Dispatch configures handle and send behavior.
type Dispatch struct {
	StringClass    string `toml:"string-class"`
	OutErrorSuffix string `toml:"out-error-suffix"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Runtime: Runtime{
			Paths: libobjc.DefaultPaths(),
		},
		Dispatch: Dispatch{
			StringClass:    object.DefaultStringClass,
			OutErrorSuffix: "error:",
		},
		Log: Log{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load parses a TOML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
			Detail("cannot read %s", path).
			Cause(err).
			Build()
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, err
	}
	if cfg.Path, err = filepath.Abs(path); err != nil {
		cfg.Path = path
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults.
func Parse(text string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse error")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("unknown keys: %s", strings.Join(keys, ", ")))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, or DefaultFile from the working directory when
// path is empty. A missing DefaultFile yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return Load(DefaultFile)
	}
	return Default(), nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("log format %q: want console or json", c.Log.Format))
	}
	if !c.Runtime.Simulated && len(c.Runtime.Paths) == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "runtime.paths is empty")
	}
	return nil
}

func (c *Config) level() (zapcore.Level, error) {
	if c.Log.Level == "" || c.Log.Level == "off" {
		return zapcore.InvalidLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return lvl, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}
	return lvl, nil
}

// Logger builds the configured zap logger. Level "off" yields a no-op logger.
func (c *Config) Logger() (*zap.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	if lvl == zapcore.InvalidLevel {
		return zap.NewNop(), nil
	}

	zc := zap.NewDevelopmentConfig()
	if c.Log.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// RegistryOptions converts the dispatch section into registry options.
func (c *Config) RegistryOptions(log *zap.Logger) []object.Option {
	return []object.Option{
		object.WithLogger(log),
		object.WithStringClass(c.Dispatch.StringClass),
		object.WithOutErrorSuffix(c.Dispatch.OutErrorSuffix),
	}
}

// LibraryOptions converts the runtime section into libobjc options.
func (c *Config) LibraryOptions(log *zap.Logger) []libobjc.Option {
	return []libobjc.Option{
		libobjc.WithLogger(log),
		libobjc.WithPaths(c.Runtime.Paths...),
		libobjc.WithFrameworks(c.Runtime.Frameworks...),
	}
}
