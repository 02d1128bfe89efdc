package util

// Stack is a LIFO of A. The zero value is an empty stack
type Stack[A any] struct {
	items []A
}

func (s *Stack[A]) Push(v A) {
	s.items = append(s.items, v)
}

func (s *Stack[A]) Pop() (ret A, ok bool) {
	if len(s.items) <= 0 {
		return ret, false
	}
	lastIndex := len(s.items) - 1
	defer func() {
		s.items = s.items[:lastIndex]
	}()
	return s.items[lastIndex], true
}

// SetTop replaces the top of the stack, and reports false if the stack is empty
func (s *Stack[A]) SetTop(v A) bool {
	if len(s.items) <= 0 {
		return false
	}
	s.items[len(s.items)-1] = v
	return true
}

func (s *Stack[A]) Len() int {
	return len(s.items)
}
