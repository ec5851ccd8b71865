// Package resource tracks live foreign object handles.
//
// Every host handle created for a foreign object occupies a slot in a Table
// until it is released. The table records which handles own a reference
// (+1 retained by the host) and which merely borrow one, and notifies
// observers as handles are created, retained and released.
//
// # Slots
//
//	table := resource.NewTable()
//
//	slot := table.Insert(resource.Entry{ID: id, Class: "NSString", Owner: resource.Owned, Value: obj})
//	entry, ok := table.Get(slot)
//	table.SetOwnership(slot, resource.Owned)  // after an explicit retain
//	entry, ok = table.Remove(slot)            // after release
//
// Slot 0 is reserved and never returned by Insert.
//
// # Observers
//
//	table.Subscribe(resource.ObserverFunc(func(ev resource.Event) {
//	    if ev.Type == resource.EventReleased {
//	        log.Printf("%s 0x%x released", ev.Class, ev.ID)
//	    }
//	}))
//
// # Shutdown
//
// Close stops new insertions and releases every remaining value that
// implements Releaser. Owning handles still alive at that point send their
// single release; borrowed handles are only marked released.
package resource
