package calc

import (
	"github.com/robotalks/uartfw/pkg/fault"
)

// StackDepth is the capacity of the evaluation stack.
const StackDepth = 16

// MaxVariables is the capacity of the variable table.
const MaxVariables = 16

// Stack is the bounded evaluation stack.
type Stack struct {
	values [StackDepth]int32
	n      int
}

// Push pushes v, a full stack is a stack error.
func (s *Stack) Push(v int32) error {
	if s.n == StackDepth {
		return fault.Stack
	}
	s.values[s.n] = v
	s.n++
	return nil
}

// Pop pops the top value, an empty stack is a stack error.
func (s *Stack) Pop() (int32, error) {
	if s.n == 0 {
		return 0, fault.Stack
	}
	s.n--
	return s.values[s.n], nil
}

// Len returns the number of values.
func (s *Stack) Len() int {
	return s.n
}

// Values returns the contents from top to bottom.
func (s *Stack) Values() []int32 {
	vals := make([]int32, 0, s.n)
	for i := s.n - 1; i >= 0; i-- {
		vals = append(vals, s.values[i])
	}
	return vals
}

// Reset empties the stack.
func (s *Stack) Reset() {
	s.n = 0
}

// Variables is the bounded table of single letter variables.
type Variables struct {
	names  [MaxVariables]byte
	values [MaxVariables]int32
	n      int
}

func (v *Variables) find(name byte) int {
	for i := 0; i < v.n; i++ {
		if v.names[i] == name {
			return i
		}
	}
	return -1
}

// Set binds name to val. Rebinding overwrites; a new name when the
// table is full is a variable error.
func (v *Variables) Set(name byte, val int32) error {
	i := v.find(name)
	if i < 0 {
		if v.n == MaxVariables {
			return fault.Variable
		}
		i = v.n
		v.names[i] = name
		v.n++
	}
	v.values[i] = val
	return nil
}

// Get returns the value bound to name.
func (v *Variables) Get(name byte) (int32, bool) {
	if i := v.find(name); i >= 0 {
		return v.values[i], true
	}
	return 0, false
}

// Len returns the number of bound variables.
func (v *Variables) Len() int {
	return v.n
}

// Reset drops all bindings.
func (v *Variables) Reset() {
	v.n = 0
}
