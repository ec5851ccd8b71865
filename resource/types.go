package resource

import (
	objc "github.com/wippyai/objc-runtime"
)

// Handle identifies a slot in a Table. Handle 0 is reserved and always invalid.
type Handle uint32

// Ownership records whether a host handle holds a reference of its own.
type Ownership uint8

const (
	// Borrowed handles rely on the foreign side keeping the object alive.
	Borrowed Ownership = iota
	// Owned handles hold one reference that is released exactly once.
	Owned
)

func (o Ownership) String() string {
	if o == Owned {
		return "owned"
	}
	return "borrowed"
}

// EventType identifies a handle lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventRetained
	EventReleased
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventRetained:
		return "retained"
	case EventReleased:
		return "released"
	}
	return "unknown"
}

// Entry is the record stored for one live handle.
type Entry struct {
	Value any
	Class string
	ID    objc.ID
	Owner Ownership
}

// Event represents a handle lifecycle event.
type Event struct {
	Value any
	Class string
	ID    objc.ID
	Slot  Handle
	Type  EventType
	Owner Ownership
}

// Observer receives notifications about handle lifecycle events.
// Observers run synchronously on the goroutine that caused the event.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }

// Releaser is implemented by values that must give up their foreign
// reference when the table closes.
type Releaser interface {
	Release() error
}
