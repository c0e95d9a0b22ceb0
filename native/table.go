package native

import (
	"sync"
)

// Table maps native handles to the Go objects behind them.
//
// Native code can only hold integers, never Go pointers; a Table hands out a
// Handle per registered object and resolves it back on each call.
// Handle values start at 1 so the null sentinel is never issued.
//
// Table is safe for concurrent use.
type Table[T any] struct {
	mu      sync.RWMutex
	objects map[Handle]T
	next    Handle
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		objects: make(map[Handle]T),
		next:    1,
	}
}

// Register stores v and returns its handle.
func (t *Table[T]) Register(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.next
	t.next++
	t.objects[h] = v
	return h
}

// Lookup returns the object registered under h.
func (t *Table[T]) Lookup(h Handle) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.objects[h]
	return v, ok
}

// Unregister removes h and returns the object it referenced.
func (t *Table[T]) Unregister(h Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.objects[h]
	delete(t.objects, h)
	return v, ok
}

// Len returns the number of registered handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.objects)
}
