package resource

import (
	"errors"
	"sync"
)

// Table tracks live handles and notifies observers of lifecycle changes.
type Table struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
	closeOnce sync.Once
}

// Counts summarizes the live handles in a table.
type Counts struct {
	Owned    int
	Borrowed int
}

// Total returns the number of live handles.
func (c Counts) Total() int {
	return c.Owned + c.Borrowed
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		backend: NewLocalBackend(),
	}
}

// Insert records a live handle and returns its slot, or 0 after Close.
func (t *Table) Insert(e Entry) Handle {
	h, err := t.backend.Create(e)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:  EventCreated,
		Slot:  h,
		ID:    e.ID,
		Class: e.Class,
		Owner: e.Owner,
		Value: e.Value,
	})
	return h
}

// Get returns the entry for slot h.
func (t *Table) Get(h Handle) (Entry, bool) {
	return t.backend.Get(h)
}

// SetOwnership changes the ownership recorded for slot h. Promoting a
// borrowed handle to owned emits EventRetained.
func (t *Table) SetOwnership(h Handle, owner Ownership) bool {
	var prev Ownership
	e, ok := t.backend.Update(h, func(e *Entry) {
		prev = e.Owner
		e.Owner = owner
	})
	if !ok {
		return false
	}

	if prev == Borrowed && owner == Owned {
		t.notify(Event{
			Type:  EventRetained,
			Slot:  h,
			ID:    e.ID,
			Class: e.Class,
			Owner: e.Owner,
			Value: e.Value,
		})
	}
	return true
}

// Remove frees slot h and returns its entry.
func (t *Table) Remove(h Handle) (Entry, bool) {
	e, ok := t.backend.Drop(h)
	if !ok {
		return Entry{}, false
	}

	t.notify(Event{
		Type:  EventReleased,
		Slot:  h,
		ID:    e.ID,
		Class: e.Class,
		Owner: e.Owner,
		Value: e.Value,
	})
	return e, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Counts returns live handle counts by ownership.
func (t *Table) Counts() Counts {
	var c Counts
	t.backend.Each(func(_ Handle, e Entry) bool {
		if e.Owner == Owned {
			c.Owned++
		} else {
			c.Borrowed++
		}
		return true
	})
	return c
}

// Each calls fn for every live handle until fn returns false.
func (t *Table) Each(fn func(Handle, Entry) bool) {
	t.backend.Each(fn)
}

// Close stops new insertions, releases every remaining Releaser value and
// frees the table. Release errors are joined; Close is idempotent.
func (t *Table) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.backend.Seal()

		// Collect first: releasing calls back into Remove.
		type live struct {
			value any
			slot  Handle
		}
		var pending []live
		t.backend.Each(func(h Handle, e Entry) bool {
			pending = append(pending, live{slot: h, value: e.Value})
			return true
		})

		var errs []error
		for _, p := range pending {
			if r, ok := p.value.(Releaser); ok {
				if rerr := r.Release(); rerr != nil {
					errs = append(errs, rerr)
				}
			}
			// values that did not remove themselves are dropped here
			t.Remove(p.slot)
		}
		err = errors.Join(append(errs, t.backend.Close())...)
	})
	return err
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}
