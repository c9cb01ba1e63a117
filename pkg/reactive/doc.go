// Package reactive provides the observable cells that back vuey stores.
//
// A Signal holds one value. Reading it inside a tracked scope (an Effect or a
// Memo computation) subscribes that scope; writing it marks every subscriber
// dirty so derived values recompute and effects re-run.
//
//	count := reactive.NewSignal(0)
//	double := reactive.NewMemo(func() int { return count.Get() * 2 })
//
//	eff := reactive.NewEffect(func() reactive.Cleanup {
//	    fmt.Println("double is", double.Get())
//	    return nil
//	})
//	defer eff.Dispose()
//
//	count.Set(2) // prints "double is 4"
//
// Dependency tracking is scoped to the calling goroutine. Batch defers
// notifications until the outermost batch on that goroutine returns.
package reactive
