package store

import "github.com/vango-dev/vuey/pkg/reactive"

// Cell is the observable storage a bound store keeps its state in. Get must
// register the read with the host's dependency tracking; Set must notify
// dependents.
type Cell interface {
	Get() any
	Set(value any)
}

// Peeker is implemented by cells that can be read without tracking. Stores
// use it for read-modify-write so an action called from an effect does not
// subscribe that effect to the store it writes.
type Peeker interface {
	Peek() any
}

// CellFactory creates cells at bind time.
type CellFactory interface {
	NewCell(initial any) Cell
}

// Batcher is implemented by factories whose cells can defer notifications.
// Stores wrap each mutation in Batch so dependents run after the store has
// released its write lock.
type Batcher interface {
	Batch(fn func())
}

// CellFactoryFunc adapts a function to CellFactory.
type CellFactoryFunc func(initial any) Cell

// NewCell implements CellFactory.
func (f CellFactoryFunc) NewCell(initial any) Cell {
	return f(initial)
}

// SignalCells returns the default factory, backed by reactive.Signal.
func SignalCells() CellFactory {
	return signalCells{}
}

type signalCells struct{}

func (signalCells) NewCell(initial any) Cell {
	return reactive.NewSignal[any](initial)
}

func (signalCells) Batch(fn func()) {
	reactive.Batch(fn)
}
