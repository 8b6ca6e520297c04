package util

// Stack is a LIFO of T. The zero value is empty and ready to use.
type Stack[T any] struct {
	items []T
}

func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes the top item. It returns the zero value when empty.
func (s *Stack[T]) Pop() (item T) {
	if len(s.items) == 0 {
		return
	}
	last := len(s.items) - 1
	item, s.items = s.items[last], s.items[:last]
	return
}

// Peek returns the top item without removing it.
func (s *Stack[T]) Peek() (item T) {
	if len(s.items) == 0 {
		return
	}
	return s.items[len(s.items)-1]
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}

func (s *Stack[T]) Clear() {
	s.items = nil
}
