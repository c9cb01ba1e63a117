package store

import "time"

// Observer receives lifecycle events from a registry and its stores.
// Methods are called synchronously and must not block.
type Observer interface {
	// StoreBound is called after registration; restored reports whether
	// state came from a persisted record.
	StoreBound(name string, strategy SaveStrategy, restored bool)

	// StoreWritten is called after every mutation, with the operation name
	// ("set", "update", "setProperty", "reset", "clear", ...).
	StoreWritten(name, op string)

	// StorePersisted is called after every backend write attempt.
	StorePersisted(name string, strategy SaveStrategy, elapsed time.Duration, err error)

	// StoreRecovered is called when a persisted record is discarded; err is
	// a *RecordError.
	StoreRecovered(name string, err error)

	// ActionMissing is called when a bulk operation skips a store.
	ActionMissing(name, action string)
}

// NopObserver ignores every event. Embed it to implement only some methods.
type NopObserver struct{}

func (NopObserver) StoreBound(string, SaveStrategy, bool)                     {}
func (NopObserver) StoreWritten(string, string)                               {}
func (NopObserver) StorePersisted(string, SaveStrategy, time.Duration, error) {}
func (NopObserver) StoreRecovered(string, error)                              {}
func (NopObserver) ActionMissing(string, string)                              {}

// Observers fans events out to each non-nil observer in order.
func Observers(observers ...Observer) Observer {
	var list multiObserver
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) StoreBound(name string, strategy SaveStrategy, restored bool) {
	for _, o := range m {
		o.StoreBound(name, strategy, restored)
	}
}

func (m multiObserver) StoreWritten(name, op string) {
	for _, o := range m {
		o.StoreWritten(name, op)
	}
}

func (m multiObserver) StorePersisted(name string, strategy SaveStrategy, elapsed time.Duration, err error) {
	for _, o := range m {
		o.StorePersisted(name, strategy, elapsed, err)
	}
}

func (m multiObserver) StoreRecovered(name string, err error) {
	for _, o := range m {
		o.StoreRecovered(name, err)
	}
}

func (m multiObserver) ActionMissing(name, action string) {
	for _, o := range m {
		o.ActionMissing(name, action)
	}
}
