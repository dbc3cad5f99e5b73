package ecs

// SparseSet is a cache-friendly storage keyed by Entity. Dense slices keep
// iteration tight; the sparse index maps slot ids back into them.
type SparseSet[T any] struct {
	dense  []Entity
	values []T
	sparse []int
}

// Has returns true if the exact entity handle (slot and epoch) is stored.
func (s *SparseSet[T]) Has(e Entity) bool {
	if s == nil {
		return false
	}
	idx, ok := s.index(e)
	return ok && s.dense[idx] == e
}

func (s *SparseSet[T]) index(e Entity) (int, bool) {
	id := int(e.slot())
	if id <= 0 || id-1 >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[id-1]
	if idx < 0 || idx >= len(s.dense) {
		return 0, false
	}
	return idx, true
}

// Get returns the value for e.
func (s *SparseSet[T]) Get(e Entity) (T, bool) {
	var zero T
	if !s.Has(e) {
		return zero, false
	}
	idx, _ := s.index(e)
	return s.values[idx], true
}

// Set inserts or updates the value for e.
func (s *SparseSet[T]) Set(e Entity, v T) {
	if s == nil || !e.Valid() {
		return
	}
	id := int(e.slot())
	for len(s.sparse) < id {
		s.sparse = append(s.sparse, -1)
	}
	if idx, ok := s.index(e); ok {
		s.dense[idx] = e
		s.values[idx] = v
		return
	}
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
	s.sparse[id-1] = len(s.dense) - 1
}

// Remove deletes the value for e if present.
func (s *SparseSet[T]) Remove(e Entity) bool {
	if !s.Has(e) {
		return false
	}
	idx, _ := s.index(e)
	last := len(s.dense) - 1
	moved := s.dense[last]

	s.dense[idx] = moved
	s.values[idx] = s.values[last]
	s.sparse[int(moved.slot())-1] = idx

	var zero T
	s.values[last] = zero
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[int(e.slot())-1] = -1
	return true
}

// Len returns the number of stored values.
func (s *SparseSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dense)
}

// Entities returns a copy of the dense entity list.
func (s *SparseSet[T]) Entities() []Entity {
	if s == nil {
		return nil
	}
	return append([]Entity(nil), s.dense...)
}

// Each visits every stored value in dense order. fn must not mutate the set.
func (s *SparseSet[T]) Each(fn func(Entity, T)) {
	if s == nil || fn == nil {
		return
	}
	for i, e := range s.dense {
		fn(e, s.values[i])
	}
}
