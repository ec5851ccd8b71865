package objctest

import (
	"reflect"
	"testing"

	objc "github.com/wippyai/objc-runtime"
)

func sendFunc[T any](t *testing.T, r *Runtime) T {
	t.Helper()
	var fn T
	v, err := r.MsgSend(reflect.TypeOf(fn))
	if err != nil {
		t.Fatalf("MsgSend: %v", err)
	}
	return v.Interface().(T)
}

func TestClassHierarchy(t *testing.T) {
	r := New()
	Demo(r)

	loud := r.GetClass("LoudGreeter")
	greeter := r.GetClass("Greeter")
	root := r.GetClass("NSObject")
	if loud == 0 || greeter == 0 || root == 0 {
		t.Fatal("expected classes to be defined")
	}
	if r.Superclass(loud) != greeter || r.Superclass(greeter) != root {
		t.Error("superclass chain is wrong")
	}
	if r.Superclass(root) != 0 {
		t.Error("root class should have no superclass")
	}
	if r.GetClass("Missing") != 0 {
		t.Error("unknown class should be 0")
	}
}

func TestMetaclassChain(t *testing.T) {
	r := New()
	Demo(r)

	greeter := r.GetClass("Greeter")
	meta := r.ObjectClass(objc.ID(greeter))
	if meta == 0 || meta == greeter {
		t.Fatal("class object should have a distinct metaclass")
	}
	if r.ClassName(meta) != "Greeter" {
		t.Errorf("metaclass name = %q", r.ClassName(meta))
	}

	// meta(Greeter) -> meta(NSObject) -> NSObject -> nil
	rootMeta := r.Superclass(meta)
	if r.Superclass(rootMeta) != r.GetClass("NSObject") {
		t.Error("root metaclass should inherit from the root class")
	}
	if r.ObjectClass(objc.ID(meta)) != rootMeta {
		t.Error("isa of a metaclass should be the root metaclass")
	}
}

func TestCopyMethodList(t *testing.T) {
	r := New()
	b := r.DefineClass("Thing", "NSObject").
		Method("a", "v", nil, func(*Call) any { return nil }).
		Method("b:", "i", []string{"i"}, func(*Call) any { return 0 })

	methods, ok := r.CopyMethodList(b.Class())
	if !ok || len(methods) != 2 {
		t.Fatalf("CopyMethodList = %v, %v", methods, ok)
	}
	m := methods[1]
	if r.SelName(r.MethodName(m)) != "b:" {
		t.Errorf("selector = %q", r.SelName(r.MethodName(m)))
	}
	if r.MethodReturnType(m) != "i" {
		t.Errorf("return = %q", r.MethodReturnType(m))
	}
	if n := r.MethodNumArguments(m); n != 3 {
		t.Fatalf("NumArguments = %d, want 3", n)
	}
	want := []string{"@", ":", "i"}
	for i, w := range want {
		if got := r.MethodArgumentType(m, i); got != w {
			t.Errorf("arg %d = %q, want %q", i, got, w)
		}
	}
	if r.MethodArgumentType(m, 5) != "" {
		t.Error("out of range argument should be empty")
	}
	if r.CopyMethodListCalls(b.Class()) != 1 {
		t.Errorf("CopyMethodListCalls = %d", r.CopyMethodListCalls(b.Class()))
	}

	r.BreakMethodList(b.Class())
	if _, ok := r.CopyMethodList(b.Class()); ok {
		t.Error("broken class should report no method list")
	}
}

func TestMsgSendEcho(t *testing.T) {
	r := New()
	Demo(r)

	obj := r.NewObject("Greeter")
	send := sendFunc[func(objc.ID, objc.SEL, *byte) *byte](t, r)
	out := send(obj, r.RegisterName("sayHello:"), objc.CString("hi"))
	if got := objc.GoString(out); got != "hi" {
		t.Errorf("sayHello: = %q, want %q", got, "hi")
	}

	loud := r.NewObject("LoudGreeter")
	out = send(loud, r.RegisterName("sayHello:"), objc.CString("hi"))
	if got := objc.GoString(out); got != "HI" {
		t.Errorf("LoudGreeter sayHello: = %q, want %q", got, "HI")
	}
}

func TestMsgSendClassMethod(t *testing.T) {
	r := New()
	send := sendFunc[func(objc.ID, objc.SEL, *byte) objc.ID](t, r)
	str := send(objc.ID(r.GetClass("NSString")), r.RegisterName("stringWithUTF8String:"), objc.CString("héllo"))
	if r.Value(str) != "héllo" {
		t.Errorf("string value = %v", r.Value(str))
	}

	length := sendFunc[func(objc.ID, objc.SEL) uint64](t, r)
	if n := length(str, r.RegisterName("length")); n != 5 {
		t.Errorf("length = %d, want 5", n)
	}
}

func TestMsgSendNilReceiver(t *testing.T) {
	r := New()
	send := sendFunc[func(objc.ID, objc.SEL) uint64](t, r)
	if got := send(0, r.RegisterName("length")); got != 0 {
		t.Errorf("nil receiver returned %d", got)
	}
}

func TestMsgSendUnrecognizedSelector(t *testing.T) {
	r := New()
	obj := r.NewObject("NSObject")
	send := sendFunc[func(objc.ID, objc.SEL)](t, r)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unrecognized selector")
		}
	}()
	send(obj, r.RegisterName("nope"))
}

func TestRetainRelease(t *testing.T) {
	r := New()
	obj := r.NewObject("NSObject")
	send := sendFunc[func(objc.ID, objc.SEL)](t, r)

	send(obj, r.RegisterName("release"))
	if r.RetainCount(obj) != 0 || r.ReleaseCount(obj) != 1 {
		t.Errorf("refs=%d releases=%d", r.RetainCount(obj), r.ReleaseCount(obj))
	}
}

func TestRegisterNameIdempotent(t *testing.T) {
	r := New()
	a := r.RegisterName("foo:")
	b := r.RegisterName("foo:")
	if a != b {
		t.Error("same text should yield the same selector")
	}
	if r.RegisterName("bar") == a {
		t.Error("different text should yield different selectors")
	}
	if r.RegisterCalls("foo:") != 2 {
		t.Errorf("RegisterCalls = %d", r.RegisterCalls("foo:"))
	}
}

func TestMsgSendRejectsBadSignature(t *testing.T) {
	r := New()
	if _, err := r.MsgSend(reflect.TypeOf(0)); err == nil {
		t.Error("non-func type should be rejected")
	}
	if _, err := r.MsgSend(reflect.TypeOf(func(objc.ID) {})); err == nil {
		t.Error("func without selector slot should be rejected")
	}
}
