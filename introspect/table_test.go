package introspect

import "testing"

func TestSignature(t *testing.T) {
	sig := Signature{Return: "v", Args: []string{"@", ":", "@", "q"}}
	if sig.Arity() != 2 {
		t.Errorf("Arity = %d, want 2", sig.Arity())
	}
	if got := sig.String(); got != "v@:@q" {
		t.Errorf("String = %q", got)
	}

	bare := Signature{Return: "@", Args: []string{"@", ":"}}
	if bare.Explicit() != nil || bare.Arity() != 0 {
		t.Error("no-argument method should have no explicit args")
	}

	if sig.Equal(bare) {
		t.Error("different signatures compare equal")
	}
	if !sig.Equal(Signature{Return: "v", Args: []string{"@", ":", "@", "q"}}) {
		t.Error("identical signatures compare unequal")
	}
}

func TestMethodTableMerge(t *testing.T) {
	table := MethodTable{"foo:": {Return: "q"}}
	table.merge(MethodTable{
		"foo:": {Return: "i"},
		"bar":  {Return: "v"},
	})

	if table["foo:"].Return != "q" {
		t.Error("merge overwrote an existing selector")
	}
	if _, ok := table.Lookup("bar"); !ok {
		t.Error("merge dropped a new selector")
	}

	sels := table.Selectors()
	if len(sels) != 2 || sels[0] != "bar" || sels[1] != "foo:" {
		t.Errorf("Selectors = %v", sels)
	}
}
