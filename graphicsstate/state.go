package graphicsstate

import (
	"github.com/tsawler/pageblocks/model"
)

// Stack is a save/restore stack of transformation matrices. It is not safe
// for concurrent use; each walk owns its own stack.
type Stack struct {
	base    model.Matrix
	current model.Matrix
	saved   []model.Matrix
}

// NewStack creates a stack whose current transform is base
func NewStack(base model.Matrix) *Stack {
	return &Stack{
		base:    base,
		current: base,
	}
}

// Current returns the current transformation matrix
func (s *Stack) Current() model.Matrix {
	return s.current
}

// Save pushes a copy of the current transform (q operator)
func (s *Stack) Save() {
	s.saved = append(s.saved, s.current)
}

// Restore pops the most recently saved transform (Q operator). When nothing
// is saved the current transform resets to the base and Restore returns
// false.
func (s *Stack) Restore() bool {
	if len(s.saved) == 0 {
		s.current = s.base
		return false
	}
	s.current = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
	return true
}

// Concat right-multiplies the current transform by m (cm operator), so m
// applies to coordinates before the existing transform.
func (s *Stack) Concat(m model.Matrix) {
	s.current = s.current.Concat(m)
}
