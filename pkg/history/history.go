// Package history implements a bounded undo/redo stack of snapshots.
//
// Callers record the state they are about to replace; Undo and Redo swap the
// current state with the neighbouring snapshot. Snapshots are treated as
// immutable, so callers must pass copies they will not mutate afterwards.
package history

// DefaultLimit is the number of undo steps kept when no limit is given.
const DefaultLimit = 100

// Stack holds the past and future snapshots of a value.
type Stack[T any] struct {
	past   []T
	future []T
	limit  int
}

// New creates a stack that keeps at most limit past snapshots.
// A non-positive limit uses DefaultLimit.
func New[T any](limit int) *Stack[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack[T]{limit: limit}
}

// Record pushes the snapshot taken before an edit and clears the redo sequence.
// When the past exceeds the limit, the oldest snapshot is dropped.
func (s *Stack[T]) Record(snapshot T) {
	s.past = append(s.past, snapshot)
	if len(s.past) > s.limit {
		s.past = append([]T(nil), s.past[len(s.past)-s.limit:]...)
	}
	s.future = nil
}

// Undo returns the previous snapshot and moves current onto the redo sequence.
// It reports false, leaving the stack untouched, when there is nothing to undo.
func (s *Stack[T]) Undo(current T) (T, bool) {
	var zero T
	if len(s.past) == 0 {
		return zero, false
	}
	prev := s.past[len(s.past)-1]
	s.past = s.past[:len(s.past)-1]
	s.future = append([]T{current}, s.future...)
	return prev, true
}

// Redo returns the next snapshot and moves current back onto the past.
func (s *Stack[T]) Redo(current T) (T, bool) {
	var zero T
	if len(s.future) == 0 {
		return zero, false
	}
	next := s.future[0]
	s.future = s.future[1:]
	s.past = append(s.past, current)
	return next, true
}

func (s *Stack[T]) CanUndo() bool { return len(s.past) > 0 }
func (s *Stack[T]) CanRedo() bool { return len(s.future) > 0 }

// Len returns the number of undo and redo steps available.
func (s *Stack[T]) Len() (past, future int) {
	return len(s.past), len(s.future)
}

// Reset drops every snapshot.
func (s *Stack[T]) Reset() {
	s.past = nil
	s.future = nil
}
