package reactive

// Batch groups signal writes so that each affected listener is notified once,
// after the outermost batch on the current goroutine completes.
//
//	reactive.Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
//	// effects reading both run once
func Batch(fn func()) {
	ctx := currentContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			pending := ctx.pending
			ctx.pending = nil
			releaseContext(ctx)
			flush(pending)
		}
	}()

	fn()
}

// inBatch reports whether notifications should be queued.
func inBatch() (*trackingContext, bool) {
	gid := goroutineID()
	if v, ok := trackingContexts.Load(gid); ok {
		ctx := v.(*trackingContext)
		return ctx, ctx.batchDepth > 0
	}
	return nil, false
}

// flush notifies each listener once, in first-queued order.
func flush(listeners []Listener) {
	if len(listeners) == 0 {
		return
	}
	seen := make(map[uint64]struct{}, len(listeners))
	for _, l := range listeners {
		if _, dup := seen[l.ID()]; dup {
			continue
		}
		seen[l.ID()] = struct{}{}
		l.MarkDirty()
	}
}
