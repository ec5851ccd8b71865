package resource

import (
	"errors"
	"sync"
	"testing"

	objc "github.com/wippyai/objc-runtime"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnHandleEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(Entry{ID: 0x1000, Class: "NSString", Value: "test"})
	if h == 0 {
		t.Fatal("Expected non-zero slot")
	}

	e, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if e.Value != "test" || e.ID != 0x1000 || e.Owner != Borrowed {
		t.Fatalf("unexpected entry %+v", e)
	}

	e, ok = table.Remove(h)
	if !ok {
		t.Fatal("Remove failed")
	}
	if e.Class != "NSString" {
		t.Fatalf("Expected NSString, got %q", e.Class)
	}
	if _, ok := table.Remove(h); ok {
		t.Fatal("second Remove must fail")
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
}

func TestTable_InvalidSlot(t *testing.T) {
	table := NewTable()
	for _, h := range []Handle{0, 1, 99} {
		if _, ok := table.Get(h); ok {
			t.Errorf("Get(%d) succeeded on empty table", h)
		}
		if table.SetOwnership(h, Owned) {
			t.Errorf("SetOwnership(%d) succeeded on empty table", h)
		}
	}
}

func TestTable_SlotReuse(t *testing.T) {
	table := NewTable()
	h1 := table.Insert(Entry{ID: 1})
	h2 := table.Insert(Entry{ID: 2})
	table.Remove(h1)

	h3 := table.Insert(Entry{ID: 3})
	if h3 != h1 {
		t.Errorf("expected freed slot %d to be reused, got %d", h1, h3)
	}
	if e, _ := table.Get(h2); e.ID != 2 {
		t.Errorf("slot %d holds %+v", h2, e)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(Entry{ID: 0x10, Class: "Greeter"})
	if len(obs.events) != 1 || obs.events[0].Type != EventCreated {
		t.Fatalf("Expected EventCreated, got %+v", obs.events)
	}
	if obs.events[0].Slot != h || obs.events[0].ID != 0x10 {
		t.Fatal("Wrong slot in event")
	}

	table.SetOwnership(h, Owned)
	if len(obs.events) != 2 || obs.events[1].Type != EventRetained {
		t.Fatalf("Expected EventRetained, got %+v", obs.events)
	}

	// already owned: no event
	table.SetOwnership(h, Owned)
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}

	table.Remove(h)
	if len(obs.events) != 3 || obs.events[2].Type != EventReleased {
		t.Fatalf("Expected EventReleased, got %+v", obs.events)
	}
	if obs.events[2].Owner != Owned {
		t.Error("released event must carry final ownership")
	}

	table.Unsubscribe(obs)
	table.Insert(Entry{ID: 0x20})
	if len(obs.events) != 3 {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

func TestTable_ObserverFunc(t *testing.T) {
	table := NewTable()
	var released []objc.ID
	table.Subscribe(ObserverFunc(func(e Event) {
		if e.Type == EventReleased {
			released = append(released, e.ID)
		}
	}))

	h := table.Insert(Entry{ID: 7})
	table.Remove(h)
	if len(released) != 1 || released[0] != 7 {
		t.Errorf("released = %v", released)
	}
}

func TestTable_Counts(t *testing.T) {
	table := NewTable()
	table.Insert(Entry{ID: 1, Owner: Owned})
	table.Insert(Entry{ID: 2})
	h := table.Insert(Entry{ID: 3})
	table.SetOwnership(h, Owned)

	c := table.Counts()
	if c.Owned != 2 || c.Borrowed != 1 || c.Total() != 3 {
		t.Errorf("Counts() = %+v", c)
	}
}

// releaser removes itself from its table the way an object handle does.
type releaser struct {
	table *Table
	err   error
	slot  Handle
	calls int
}

func (r *releaser) Release() error {
	r.calls++
	r.table.Remove(r.slot)
	return r.err
}

func TestTable_Close(t *testing.T) {
	table := NewTable()

	a := &releaser{table: table}
	a.slot = table.Insert(Entry{ID: 1, Owner: Owned, Value: a})
	b := &releaser{table: table, err: errors.New("boom")}
	b.slot = table.Insert(Entry{ID: 2, Value: b})
	table.Insert(Entry{ID: 3, Value: "plain"})

	obs := &testObserver{}
	table.Subscribe(obs)

	err := table.Close()
	if err == nil || err.Error() != "boom" {
		t.Fatalf("Close() = %v, want boom", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("release calls = %d, %d; want 1, 1", a.calls, b.calls)
	}
	if len(obs.events) != 3 {
		t.Errorf("Expected 3 released events, got %d", len(obs.events))
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d after Close", table.Len())
	}

	if h := table.Insert(Entry{ID: 4}); h != 0 {
		t.Fatal("Expected Insert to fail after Close")
	}
	if err := table.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestTable_Concurrent(t *testing.T) {
	table := NewTable()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := table.Insert(Entry{ID: objc.ID(i + 1)})
			if i%2 == 0 {
				table.Remove(h)
			}
		}(i)
	}
	wg.Wait()

	if table.Len() != n/2 {
		t.Errorf("Len() = %d, want %d", table.Len(), n/2)
	}
}
