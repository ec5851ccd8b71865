package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseCoerce,
				Kind:     KindTypeMismatch,
				Class:    "NSView",
				Selector: "setFrame:",
				GoType:   "string",
				Encoding: "{CGRect=...}",
				Detail:   "cannot convert",
			},
			contains: []string{"[coerce]", "type_mismatch", "NSView setFrame:", "string", "{CGRect=...}", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindInvalidEncoding,
			},
			contains: []string{"[decode]", "invalid_encoding"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindNotFound,
				Detail: "open libobjc",
				Cause:  errors.New("dlopen failed"),
			},
			contains: []string{"[load]", "not_found", "open libobjc", "caused by", "dlopen failed"},
		},
		{
			name: "selector only",
			err: &Error{
				Phase:    PhaseBuild,
				Kind:     KindInvalidEncoding,
				Selector: "length",
			},
			contains: []string{"[build]", "at length"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseDispatch, KindForeign, cause, "send failed")

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseLifetime,
		Kind:  KindReleased,
		Class: "NSString",
	}

	if !err.Is(&Error{Phase: PhaseLifetime, Kind: KindReleased}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDispatch, Kind: KindReleased}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseLifetime, Kind: KindNilHandle}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrReleased) {
		t.Error("errors.Is should match ErrReleased")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDecode, KindInvalidEncoding).
		Class("NSObject").
		Selector("foo:").
		GoType("int").
		Encoding("(?=i)").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "pointer", "union").
		Build()

	if err.Phase != PhaseDecode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDecode)
	}
	if err.Kind != KindInvalidEncoding {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidEncoding)
	}
	if err.Class != "NSObject" || err.Selector != "foo:" {
		t.Errorf("Class=%q Selector=%q", err.Class, err.Selector)
	}
	if err.GoType != "int" || err.Encoding != "(?=i)" {
		t.Errorf("GoType=%q Encoding=%q", err.GoType, err.Encoding)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected pointer, got union" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidEncoding", func(t *testing.T) {
		err := InvalidEncoding("^(?=i)", "(?=i)")
		if !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
		if !strings.Contains(err.Error(), "(?=i)") {
			t.Errorf("message should name the offending unit: %s", err)
		}
	})

	t.Run("ClassNotFound", func(t *testing.T) {
		err := ClassNotFound("NSNope")
		if !errors.Is(err, ErrClassNotFound) {
			t.Errorf("expected ErrClassNotFound, got %v", err)
		}
	})

	t.Run("MethodNotFound", func(t *testing.T) {
		err := MethodNotFound("doThing_", "Greeter")
		if !errors.Is(err, ErrMethodNotFound) {
			t.Errorf("expected ErrMethodNotFound, got %v", err)
		}
		msg := err.Error()
		if !strings.Contains(msg, "doThing_") || !strings.Contains(msg, "Greeter") {
			t.Errorf("message should name method and class: %s", msg)
		}
	})

	t.Run("Released", func(t *testing.T) {
		err := Released("NSString", 0x1000)
		if !errors.Is(err, ErrReleased) {
			t.Errorf("expected ErrReleased, got %v", err)
		}
		if !strings.Contains(err.Detail, "0x1000") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("NilHandle", func(t *testing.T) {
		if !errors.Is(NilHandle("object"), ErrNilHandle) {
			t.Error("expected ErrNilHandle")
		}
	})

	t.Run("ArgumentCount", func(t *testing.T) {
		err := ArgumentCount("a:b:", 2, 1)
		if err.Kind != KindInvalidInput || err.Value != 1 {
			t.Errorf("unexpected %+v", err)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseCoerce, 300, "C", nil)
		if err.Kind != KindOverflow || err.Value != 300 {
			t.Errorf("unexpected %+v", err)
		}
	})

	t.Run("IntrospectionFault", func(t *testing.T) {
		err := IntrospectionFault("Broken", 0x20)
		if err.Phase != PhaseIntrospect || err.Kind != KindInvalidData {
			t.Errorf("unexpected %+v", err)
		}
	})
}
