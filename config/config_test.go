package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	objcerrors "github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/object"
	"github.com/wippyai/objc-runtime/objctest"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dispatch.StringClass != "NSString" || cfg.Dispatch.OutErrorSuffix != "error:" {
		t.Errorf("dispatch defaults = %+v", cfg.Dispatch)
	}
	if len(cfg.Runtime.Paths) == 0 {
		t.Error("default runtime paths are empty")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse(`
[runtime]
simulated = true
paths = ["/opt/lib/libobjc.so"]
frameworks = ["/opt/lib/libgnustep-base.so"]

[dispatch]
string-class = "GSString"
out-error-suffix = ""

[log]
level = "debug"
format = "json"
`)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Runtime.Simulated {
		t.Error("simulated not set")
	}
	if len(cfg.Runtime.Paths) != 1 || cfg.Runtime.Paths[0] != "/opt/lib/libobjc.so" {
		t.Errorf("paths = %v", cfg.Runtime.Paths)
	}
	if len(cfg.Runtime.Frameworks) != 1 {
		t.Errorf("frameworks = %v", cfg.Runtime.Frameworks)
	}
	if cfg.Dispatch.StringClass != "GSString" {
		t.Errorf("string class = %q", cfg.Dispatch.StringClass)
	}
	if cfg.Dispatch.OutErrorSuffix != "" {
		t.Errorf("an explicit empty suffix must be kept, got %q", cfg.Dispatch.OutErrorSuffix)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("format = %q", cfg.Log.Format)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind objcerrors.Kind
	}{
		{"syntax", "[runtime\n", objcerrors.KindInvalidData},
		{"unknown key", "[runtime]\nlibrary = \"x\"\n", objcerrors.KindInvalidInput},
		{"bad level", "[log]\nlevel = \"loud\"\n", objcerrors.KindInvalidInput},
		{"bad format", "[log]\nformat = \"xml\"\n", objcerrors.KindInvalidInput},
		{"no paths", "[runtime]\npaths = []\n", objcerrors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			var oe *objcerrors.Error
			if !errors.As(err, &oe) {
				t.Fatalf("expected structured error, got %v", err)
			}
			if oe.Phase != objcerrors.PhaseConfig || oe.Kind != tt.kind {
				t.Errorf("got %s/%s, want config/%s", oe.Phase, oe.Kind, tt.kind)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "objc.toml")
	if err := os.WriteFile(path, []byte("[runtime]\nsimulated = true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Runtime.Simulated {
		t.Error("simulated not loaded")
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	var oe *objcerrors.Error
	if !errors.As(err, &oe) || oe.Kind != objcerrors.KindNotFound {
		t.Errorf("missing file: %v", err)
	}
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" {
		t.Errorf("defaults must not carry a path, got %q", cfg.Path)
	}
}

func TestLogger(t *testing.T) {
	for _, level := range []string{"off", "", "debug", "error"} {
		cfg := Default()
		cfg.Log.Level = level
		log, err := cfg.Logger()
		if err != nil {
			t.Fatalf("level %q: %v", level, err)
		}
		if log == nil {
			t.Fatalf("level %q: nil logger", level)
		}
	}
}

func TestRegistryOptions(t *testing.T) {
	cfg := Default()
	cfg.Dispatch.OutErrorSuffix = ""

	rt := objctest.New()
	objctest.Demo(rt)
	reg := object.New(rt, cfg.RegistryOptions(nil)...)

	cls, err := reg.FromClassName("Greeter")
	if err != nil {
		t.Fatal(err)
	}
	g, err := cls.Call("new")
	if err != nil {
		t.Fatal(err)
	}
	obj, _ := object.AsObject(g.Value)

	// with out-error handling disabled the cell must be passed explicitly
	if _, err := obj.Call("loadData_error_", "x"); err == nil {
		t.Error("expected argument count error with out-error handling disabled")
	}
}
