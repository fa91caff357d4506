// Package notify provides the change-notification primitives shared by the
// board store and the modal flag.
package notify

import "sync"

// Listeners is an ordered list of zero-argument callbacks.
type Listeners struct {
	mu     sync.Mutex
	nextID uint64
	items  []listener
}

type listener struct {
	id uint64
	fn func()
}

// Add registers fn and returns a function that removes it again.
func (l *Listeners) Add(fn func()) (remove func()) {
	if fn == nil {
		return func() {}
	}
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.items = append(l.items, listener{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for i, it := range l.items {
				if it.id == id {
					l.items = append(l.items[:i:i], l.items[i+1:]...)
					return
				}
			}
		})
	}
}

// Notify calls every registered callback synchronously, in registration
// order. Callbacks run without the list lock held, so they may register or
// remove listeners; such changes take effect on the next Notify.
func (l *Listeners) Notify() {
	l.mu.Lock()
	fns := make([]func(), len(l.items))
	for i, it := range l.items {
		fns[i] = it.fn
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of registered callbacks.
func (l *Listeners) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
