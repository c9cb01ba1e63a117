package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state of one goroutine.
type trackingContext struct {
	// listener is subscribed by every signal read while it is set.
	listener Listener

	// batchDepth counts nested Batch calls.
	batchDepth int

	// pending accumulates listeners to notify when the outermost batch ends.
	pending []Listener
}

var trackingContexts sync.Map // map[uint64]*trackingContext

// goroutineID parses the current goroutine id from the runtime stack header
// ("goroutine <id> [...").
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func currentContext() *trackingContext {
	gid := goroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	actual, _ := trackingContexts.LoadOrStore(gid, ctx)
	return actual.(*trackingContext)
}

// releaseContext drops the goroutine's context once it holds nothing.
func releaseContext(ctx *trackingContext) {
	if ctx.listener == nil && ctx.batchDepth == 0 && len(ctx.pending) == 0 {
		trackingContexts.Delete(goroutineID())
	}
}

func currentListener() Listener {
	gid := goroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext).listener
	}
	return nil
}

// swapListener installs l as the tracking listener and returns the previous one.
func swapListener(l Listener) Listener {
	ctx := currentContext()
	old := ctx.listener
	ctx.listener = l
	if l == nil {
		releaseContext(ctx)
	}
	return old
}

// WithListener runs fn with l tracking every signal read.
func WithListener(l Listener, fn func()) {
	old := swapListener(l)
	defer swapListener(old)
	fn()
}

// Untracked runs fn without subscribing the current listener to anything fn reads.
func Untracked(fn func()) {
	old := swapListener(nil)
	defer swapListener(old)
	fn()
}
