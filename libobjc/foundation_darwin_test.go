package libobjc

import (
	"testing"

	"github.com/wippyai/objc-runtime/object"
)

func TestFoundation_StringRoundTrip(t *testing.T) {
	rt := openOrSkip(t, WithFrameworks(FoundationPath))
	reg := object.New(rt)
	defer reg.Close()

	cls, err := reg.FromClassName("NSString")
	if err != nil {
		t.Fatal(err)
	}
	res, err := cls.Call("stringWithUTF8String_", "héllo")
	if err != nil {
		t.Fatal(err)
	}
	s, ok := object.AsObject(res.Value)
	if !ok {
		t.Fatalf("result = %#v", res.Value)
	}
	got, err := reg.ToString(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != "héllo" {
		t.Errorf("round trip = %q", got)
	}

	res, err = s.Call("length")
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != uint64(5) {
		t.Errorf("length = %#v, want 5", res.Value)
	}
}

func TestFoundation_OwnedRelease(t *testing.T) {
	rt := openOrSkip(t, WithFrameworks(FoundationPath))
	reg := object.New(rt)
	defer reg.Close()

	cls, err := reg.FromClassName("NSMutableArray")
	if err != nil {
		t.Fatal(err)
	}
	res, err := cls.Call("new")
	if err != nil {
		t.Fatal(err)
	}
	arr, _ := object.AsObject(res.Value)
	if arr == nil || !arr.Owned() {
		t.Fatal("new must return an owned handle")
	}
	if _, err := arr.Call("addObject_", "x"); err != nil {
		t.Fatal(err)
	}
	res, err = arr.Call("count")
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != uint64(1) {
		t.Errorf("count = %#v", res.Value)
	}
	if err := arr.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := arr.Call("count"); err == nil {
		t.Error("released handle must fail")
	}
}
