package main

import (
	"errors"
	"strings"
	"testing"

	objcerrors "github.com/wippyai/objc-runtime/errors"
	"github.com/wippyai/objc-runtime/object"
	"github.com/wippyai/objc-runtime/objctest"
	"github.com/wippyai/objc-runtime/typeenc"
)

func newRegistry(t *testing.T) *object.Registry {
	t.Helper()
	rt := objctest.New()
	objctest.Demo(rt)
	reg := object.New(rt)
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

func errorKind(err error) objcerrors.Kind {
	var e *objcerrors.Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func TestParseArg(t *testing.T) {
	reg := newRegistry(t)

	tests := []struct {
		enc  string
		text string
		want any
	}{
		{"q", "42", int64(42)},
		{"i", "0x2a", int64(42)},
		{"i", "-7", int64(-7)},
		{"Q", "7", uint64(7)},
		{"d", "1.5", 1.5},
		{"B", "true", true},
		{"r*", "hi", "hi"},
		{":", "length", "length"},
		{"@", "text", "text"},
		{"@", "nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.enc+"/"+tt.text, func(t *testing.T) {
			got, err := parseArg(reg, tt.text, typeenc.MustDecode(tt.enc))
			if err != nil {
				t.Fatalf("parseArg: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseArg = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseArgErrors(t *testing.T) {
	reg := newRegistry(t)

	tests := []struct {
		enc  string
		text string
		kind objcerrors.Kind
	}{
		{"q", "abc", objcerrors.KindInvalidInput},
		{"C", "-1", objcerrors.KindInvalidInput},
		{"B", "maybe", objcerrors.KindInvalidInput},
		{"^v", "0", objcerrors.KindUnsupported},
		{"{CGPoint=dd}", "1,2", objcerrors.KindUnsupported},
		{"#", "NoSuchClass", objcerrors.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.enc+"/"+tt.text, func(t *testing.T) {
			_, err := parseArg(reg, tt.text, typeenc.MustDecode(tt.enc))
			if err == nil {
				t.Fatal("expected error")
			}
			if k := errorKind(err); k != tt.kind {
				t.Errorf("kind = %q, want %q (%v)", k, tt.kind, err)
			}
		})
	}
}

func TestParseArgClass(t *testing.T) {
	reg := newRegistry(t)

	v, err := parseArg(reg, "Greeter", typeenc.MustDecode("#"))
	if err != nil {
		t.Fatal(err)
	}
	cls, ok := object.AsObject(v)
	if !ok || cls.ClassName() != "Greeter" {
		t.Errorf("parseArg = %#v, want Greeter class handle", v)
	}
}

func TestMethodRows(t *testing.T) {
	reg := newRegistry(t)

	rows, err := methodRows(reg, "Greeter", false)
	if err != nil {
		t.Fatal(err)
	}
	byName := make(map[string]methodRow, len(rows))
	for _, r := range rows {
		byName[r.name] = r
	}

	hello, ok := byName["sayHello_"]
	if !ok {
		t.Fatal("sayHello_ missing")
	}
	if hello.selector != "sayHello:" || hello.signature != "(cstring) -> cstring" {
		t.Errorf("sayHello_ = %+v", hello)
	}

	load := byName["loadData_error_"]
	if !load.outError || len(load.params) != 1 {
		t.Errorf("loadData_error_ = %+v, want one param and out-error", load)
	}
	if !strings.HasSuffix(load.signature, "!error") {
		t.Errorf("signature = %q", load.signature)
	}

	if _, ok := byName["description"]; !ok {
		t.Error("inherited description missing")
	}
	if _, ok := byName["greeterWithName_"]; ok {
		t.Error("class method listed on the instance side")
	}

	classRows, err := methodRows(reg, "Greeter", true)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, r := range classRows {
		if r.selector == "greeterWithName:" {
			found = true
		}
	}
	if !found {
		t.Error("greeterWithName: missing from class side")
	}

	if _, err := methodRows(reg, "NoSuchClass", false); !errors.Is(err, objcerrors.ErrClassNotFound) {
		t.Errorf("err = %v, want class not found", err)
	}
}

func TestMethodRowsOutErrorDisabled(t *testing.T) {
	rt := objctest.New()
	objctest.Demo(rt)
	reg := object.New(rt, object.WithOutErrorSuffix(""))
	t.Cleanup(func() { _ = reg.Close() })

	rows, err := methodRows(reg, "Greeter", false)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if r.selector != "loadData:error:" {
			continue
		}
		if r.outError || len(r.params) != 2 {
			t.Errorf("loadData_error_ = %+v, want two plain params", r)
		}
		if strings.HasSuffix(r.signature, "!error") {
			t.Errorf("signature = %q", r.signature)
		}
		return
	}
	t.Fatal("loadData:error: missing")
}

func TestInvoke(t *testing.T) {
	reg := newRegistry(t)

	greeter, err := callTarget(reg, "Greeter", true)
	if err != nil {
		t.Fatal(err)
	}
	if !greeter.Owned() {
		t.Error("new instance should be owned")
	}

	res, err := invoke(reg, greeter, "doThing_withValue_", []string{"abc", "4"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != int64(7) {
		t.Errorf("doThing = %#v, want 7", res.Value)
	}

	res, err = invoke(reg, greeter, "sayHello_", []string{"world"})
	if err != nil {
		t.Fatal(err)
	}
	if got := describe(reg, res.Value); got != `"world"` {
		t.Errorf("describe = %s", got)
	}

	res, err = invoke(reg, greeter, "loadData_error_", []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed() || describe(reg, res.Value) != `"loaded:x"` {
		t.Errorf("loadData = %+v", res)
	}

	res, err = invoke(reg, greeter, "loadData_error_", []string{""})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Failed() {
		t.Fatal("expected out-error")
	}
	if got := describe(reg, res.OutError); got != "NSError: no data" {
		t.Errorf("describe(error) = %q", got)
	}

	if _, err := invoke(reg, greeter, "sayHello_", nil); errorKind(err) != objcerrors.KindInvalidInput {
		t.Errorf("arity err = %v", err)
	}
	if _, err := invoke(reg, greeter, "noSuchMethod", nil); !errors.Is(err, objcerrors.ErrMethodNotFound) {
		t.Errorf("missing method err = %v", err)
	}
}

func TestCallTargetClass(t *testing.T) {
	reg := newRegistry(t)

	cls, err := callTarget(reg, "Greeter", false)
	if err != nil {
		t.Fatal(err)
	}
	res, err := invoke(reg, cls, "greeterWithName_", []string{"ada"})
	if err != nil {
		t.Fatal(err)
	}
	g, ok := object.AsObject(res.Value)
	if !ok {
		t.Fatalf("greeterWithName_ = %#v", res.Value)
	}
	name, err := g.Call("name")
	if err != nil {
		t.Fatal(err)
	}
	if got := describe(reg, name.Value); got != `"ada"` {
		t.Errorf("name = %s", got)
	}
	if got := describe(reg, nil); got != "nil" {
		t.Errorf("describe(nil) = %s", got)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cursor, n  int
		start, end int
	}{
		{0, 5, 0, 5},
		{0, 100, 0, pageSize},
		{50, 100, 50 - pageSize/2, 50 + pageSize/2},
		{99, 100, 100 - pageSize, 100},
	}
	for _, tt := range tests {
		start, end := window(tt.cursor, tt.n)
		if start != tt.start || end != tt.end {
			t.Errorf("window(%d, %d) = %d, %d, want %d, %d", tt.cursor, tt.n, start, end, tt.start, tt.end)
		}
	}
}
