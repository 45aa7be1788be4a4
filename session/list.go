package session

// Element is anything a BoundedDedupList can hold: a stable identity for
// removal plus a content key for de-duplication.
type Element interface {
	Key() string
	Ident() int64
}

// BoundedDedupList is an ordered, newest-first collection with a maximum
// size. Inserting an element whose key already exists is a no-op and the
// existing element keeps its position. Inserting beyond capacity evicts
// from the tail.
type BoundedDedupList[T Element] struct {
	capacity int
	items    []T
}

func NewBoundedDedupList[T Element](capacity int) *BoundedDedupList[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &BoundedDedupList[T]{capacity: capacity}
}

// Insert prepends item unless its key is already present. Reports whether
// the list changed.
func (l *BoundedDedupList[T]) Insert(item T) bool {
	for _, existing := range l.items {
		if existing.Key() == item.Key() {
			return false
		}
	}
	l.items = append([]T{item}, l.items...)
	if len(l.items) > l.capacity {
		l.items = l.items[:l.capacity]
	}
	return true
}

// Remove deletes the element with the given identity. Absent ids are a
// no-op, not an error.
func (l *BoundedDedupList[T]) Remove(id int64) bool {
	for i, item := range l.items {
		if item.Ident() == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

func (l *BoundedDedupList[T]) Get(id int64) (T, bool) {
	for _, item := range l.items {
		if item.Ident() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Items returns a newest-first copy.
func (l *BoundedDedupList[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *BoundedDedupList[T]) Len() int { return len(l.items) }

func (l *BoundedDedupList[T]) Capacity() int { return l.capacity }

// Restore replaces the contents with a previously saved newest-first
// sequence, re-enforcing de-duplication and capacity on the way in so a
// corrupted snapshot cannot break the list invariants.
func (l *BoundedDedupList[T]) Restore(items []T) {
	l.items = l.items[:0]
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if len(l.items) == l.capacity {
			break
		}
		if _, dup := seen[item.Key()]; dup {
			continue
		}
		seen[item.Key()] = struct{}{}
		l.items = append(l.items, item)
	}
}
