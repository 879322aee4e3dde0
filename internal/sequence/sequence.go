// Package sequence maintains a mutable ordered list of items with stable
// identity, independent of what the items represent. It backs both the
// composer's image list and the extractor's page-result list.
package sequence

import "sync"

// Item is anything with a stable identifier.
type Item interface {
	ItemID() string
}

// Releaser is implemented by items that own a transient resource. The list
// releases an item when it is removed or the list is cleared.
type Releaser interface {
	Release()
}

// List is an ordered sequence of items. Insertion order is preserved except
// where Move reorders explicitly. All methods are safe for concurrent use.
type List[T Item] struct {
	mu    sync.Mutex
	items []T
}

// NewList returns an empty list.
func NewList[T Item]() *List[T] {
	return &List[T]{}
}

// Append adds items to the end of the list, keeping their relative order.
// Appending nothing is a no-op.
func (l *List[T]) Append(items ...T) {
	if len(items) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, items...)
}

// Remove deletes the item with the given id and releases its resources.
// Removing an id that is not present is a no-op.
func (l *List[T]) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it.ItemID() == id {
			release(it)
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// Move relocates the item with the given id to target, shifting the others.
// target is clamped to [0, len-1]. Moving an absent id, or moving an item to
// its current position, is a no-op. Move never duplicates or drops items.
func (l *List[T]) Move(id string, target int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	from := -1
	for i, it := range l.items {
		if it.ItemID() == id {
			from = i
			break
		}
	}
	if from < 0 {
		return
	}
	if target < 0 {
		target = 0
	}
	if max := len(l.items) - 1; target > max {
		target = max
	}
	if target == from {
		return
	}
	item := l.items[from]
	l.items = append(l.items[:from], l.items[from+1:]...)
	l.items = append(l.items[:target], append([]T{item}, l.items[target:]...)...)
}

// Clear empties the list, releasing every item's resources.
func (l *List[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		release(it)
	}
	l.items = nil
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Get returns the item with the given id, if present.
func (l *List[T]) Get(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.ItemID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Items returns a snapshot copy of the current order. Mutations made after
// the call do not affect the returned slice.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func release(it Item) {
	if r, ok := it.(Releaser); ok {
		r.Release()
	}
}
