package keywords

// OrderedSet is a case-sensitive string set that remembers insertion order.
// The zero value is ready to use.
type OrderedSet struct {
	items []string
	index map[string]struct{}
}

// NewOrderedSet returns a set seeded with items.
func NewOrderedSet(items ...string) *OrderedSet {
	s := &OrderedSet{}
	s.Add(items...)
	return s
}

// Add appends each item not already present and returns how many were new.
func (s *OrderedSet) Add(items ...string) int {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	added := 0
	for _, item := range items {
		if _, ok := s.index[item]; ok {
			continue
		}
		s.index[item] = struct{}{}
		s.items = append(s.items, item)
		added++
	}
	return added
}

// Contains reports whether item is in the set.
func (s *OrderedSet) Contains(item string) bool {
	_, ok := s.index[item]
	return ok
}

// Len returns the number of items.
func (s *OrderedSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the items in insertion order.
func (s *OrderedSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Head returns a copy of at most the first n items.
func (s *OrderedSet) Head(n int) []string {
	if n > len(s.items) {
		n = len(s.items)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, s.items[:n])
	return out
}
