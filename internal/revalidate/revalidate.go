// Package revalidate carries the advisory "this view is stale" signal from
// mutations to the presentation layer. Listeners are best-effort; the
// signal has no correctness impact on the core.
package revalidate

import "sync"

var (
	mu        sync.RWMutex
	listeners []func(path string)
)

// Subscribe registers a listener invoked with each stale path.
func Subscribe(fn func(path string)) {
	mu.Lock()
	defer mu.Unlock()
	listeners = append(listeners, fn)
}

// Path signals that the view rendered for path is stale.
func Path(path string) {
	mu.RLock()
	defer mu.RUnlock()

	for _, fn := range listeners {
		fn(path)
	}
}

// Reset drops all listeners. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	listeners = nil
}
