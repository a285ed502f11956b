package normalize

// Item wraps one element of a List with its position, for templates that
// need separators or first/last handling.
type Item[T any] struct {
	Value   T
	Index   int
	IsFirst bool
	IsLast  bool
	HasMore bool
}

// List is an ordered collection prepared for rendering.
type List[T any] struct {
	Items   []Item[T]
	Len     int
	IsEmpty bool
}

// NewList wraps values in order.
func NewList[T any](values []T) List[T] {
	items := make([]Item[T], len(values))
	for i, v := range values {
		items[i] = Item[T]{
			Value:   v,
			Index:   i,
			IsFirst: i == 0,
			IsLast:  i == len(values)-1,
			HasMore: i < len(values)-1,
		}
	}
	return List[T]{Items: items, Len: len(values), IsEmpty: len(values) == 0}
}

// Values returns the wrapped values.
func (l List[T]) Values() []T {
	out := make([]T, len(l.Items))
	for i, it := range l.Items {
		out[i] = it.Value
	}
	return out
}
