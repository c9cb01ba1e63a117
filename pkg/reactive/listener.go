package reactive

import "sync/atomic"

// Listener is anything that can be notified when a dependency changes.
// Effects and memos implement it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	MarkDirty()

	// ID returns a unique identifier used to deduplicate notifications.
	ID() uint64
}

// Cleanup is returned by an effect body and runs before the next run and on
// disposal.
type Cleanup func()

var idCounter atomic.Uint64

func nextID() uint64 {
	return idCounter.Add(1)
}

// sourced is implemented by listeners that remember what they read so they
// can unsubscribe before re-running.
type sourced interface {
	Listener
	addSource(source *signalBase)
}
