package a11y

// FocusTrap keeps Tab traversal inside a fixed, ordered set of focusable
// items. The set is captured when the trap is built; if the container's
// children change the trap is stale until rebuilt.
type FocusTrap[T comparable] struct {
	items []T
}

func NewFocusTrap[T comparable](items []T) *FocusTrap[T] {
	return &FocusTrap[T]{items: append([]T(nil), items...)}
}

// First returns the item that receives focus when the trap opens.
func (f *FocusTrap[T]) First() (T, bool) {
	var zero T
	if len(f.items) == 0 {
		return zero, false
	}
	return f.items[0], true
}

// Next handles Tab (backward=false) or Shift+Tab (backward=true) from
// current. It only intercepts at the boundaries: Tab on the last item wraps
// to the first and Shift+Tab on the first wraps to the last. Otherwise it
// returns false and default traversal applies.
func (f *FocusTrap[T]) Next(current T, backward bool) (T, bool) {
	var zero T
	n := len(f.items)
	if n == 0 {
		return zero, false
	}
	first, last := f.items[0], f.items[n-1]
	if backward && current == first {
		return last, true
	}
	if !backward && current == last {
		return first, true
	}
	return zero, false
}

// Step moves focus like a browser would inside the trap: boundary wraps
// come from Next, interior moves go to the adjacent item. An item not in
// the set moves to the first one.
func (f *FocusTrap[T]) Step(current T, backward bool) (T, bool) {
	if t, ok := f.Next(current, backward); ok {
		return t, true
	}
	for i, it := range f.items {
		if it != current {
			continue
		}
		if backward {
			return f.items[i-1], true
		}
		return f.items[i+1], true
	}
	return f.First()
}

func (f *FocusTrap[T]) Len() int { return len(f.items) }
