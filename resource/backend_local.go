package resource

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("handle table closed")

// LocalBackend is the in-memory slot store behind a Table. Freed slots are
// reused.
type LocalBackend struct {
	entries  []slot
	freeList []Handle
	mu       sync.RWMutex
	closed   bool
}

type slot struct {
	entry Entry
	valid bool
}

// NewLocalBackend creates an empty slot store.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]slot, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Create stores an entry and returns its slot.
func (b *LocalBackend) Create(e Entry) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	s := slot{entry: e, valid: true}
	if n := len(b.freeList); n > 0 {
		h := b.freeList[n-1]
		b.freeList = b.freeList[:n-1]
		b.entries[h-1] = s
		return h, nil
	}

	b.entries = append(b.entries, s)
	return Handle(len(b.entries)), nil
}

// Get retrieves the entry in slot h.
func (b *LocalBackend) Get(h Handle) (Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := b.lookup(h)
	if s == nil {
		return Entry{}, false
	}
	return s.entry, true
}

// Update applies fn to the entry in slot h.
func (b *LocalBackend) Update(h Handle, fn func(*Entry)) (Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.lookup(h)
	if s == nil {
		return Entry{}, false
	}
	fn(&s.entry)
	return s.entry, true
}

// Drop frees slot h and returns the entry it held.
func (b *LocalBackend) Drop(h Handle) (Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.lookup(h)
	if s == nil {
		return Entry{}, false
	}
	e := s.entry
	*s = slot{}
	b.freeList = append(b.freeList, h)
	return e, true
}

// lookup returns the valid slot for h. Callers hold b.mu.
func (b *LocalBackend) lookup(h Handle) *slot {
	if h == 0 || int(h) > len(b.entries) {
		return nil
	}
	s := &b.entries[h-1]
	if !s.valid {
		return nil
	}
	return s
}

// Seal stops further Create calls. Existing slots stay readable and droppable.
func (b *LocalBackend) Seal() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

// Close seals the store and discards every slot.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.entries = nil
	b.freeList = nil
	return nil
}

// Len returns the number of occupied slots.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries) - len(b.freeList)
}

// Each calls fn for every occupied slot until fn returns false.
// fn must not call back into the backend.
func (b *LocalBackend) Each(fn func(Handle, Entry) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, s := range b.entries {
		if s.valid && !fn(Handle(i+1), s.entry) {
			return
		}
	}
}
