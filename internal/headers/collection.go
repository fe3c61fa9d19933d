package headers

// Collection holds the values stored under a single key of a Map.
// Implementations decide whether duplicates are kept and whether
// order takes part in equality.
type Collection[V comparable] interface {
	// Add stores v and reports whether the collection changed.
	Add(v V) bool
	// Remove drops one occurrence of v and reports whether it was present.
	Remove(v V) bool
	Len() int
	// Values returns a copy of the stored values.
	Values() []V
	Equal(other Collection[V]) bool
}

// Factory creates the empty collection used for a newly added key.
type Factory[V comparable] func() Collection[V]

// Set is a deduplicating collection. Equality ignores order.
type Set[V comparable] struct {
	index map[V]struct{}
	order []V
}

func NewSet[V comparable]() Collection[V] {
	return &Set[V]{index: make(map[V]struct{})}
}

func (s *Set[V]) Add(v V) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

func (s *Set[V]) Remove(v V) bool {
	if _, ok := s.index[v]; !ok {
		return false
	}
	delete(s.index, v)
	for i, x := range s.order {
		if x == v {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Set[V]) Len() int { return len(s.order) }

func (s *Set[V]) Values() []V {
	out := make([]V, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Set[V]) Equal(other Collection[V]) bool {
	if other == nil || s.Len() != other.Len() {
		return false
	}
	return sameElements(s.order, other.Values())
}

// List keeps every value, duplicates included, in insertion order.
// Equality is element-wise and order sensitive.
type List[V comparable] struct {
	items []V
}

func NewList[V comparable]() Collection[V] {
	return &List[V]{}
}

func (l *List[V]) Add(v V) bool {
	l.items = append(l.items, v)
	return true
}

func (l *List[V]) Remove(v V) bool {
	for i, x := range l.items {
		if x == v {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

func (l *List[V]) Len() int { return len(l.items) }

func (l *List[V]) Values() []V {
	out := make([]V, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List[V]) Equal(other Collection[V]) bool {
	if other == nil || l.Len() != other.Len() {
		return false
	}
	for i, v := range other.Values() {
		if l.items[i] != v {
			return false
		}
	}
	return true
}

// sameElements compares a and b as multisets.
func sameElements[V comparable](a, b []V) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[V]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		if counts[v] == 0 {
			return false
		}
		counts[v]--
	}
	return true
}
