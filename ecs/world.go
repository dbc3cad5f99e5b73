package ecs

// Registry owns entity handles and one value per live entity.
type Registry[T any] struct {
	entities entityStore
	values   SparseSet[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Create allocates a new entity. The entity has no value until Set.
func (r *Registry[T]) Create() Entity {
	return r.entities.create()
}

// Set stores v for a live entity.
func (r *Registry[T]) Set(e Entity, v T) error {
	if !r.entities.isAlive(e) {
		return ErrEntityNotAlive
	}
	r.values.Set(e, v)
	return nil
}

// Get returns the value stored for e.
func (r *Registry[T]) Get(e Entity) (T, bool) {
	if r == nil {
		var zero T
		return zero, false
	}
	return r.values.Get(e)
}

// Destroy drops e and its value. It reports whether e was alive.
func (r *Registry[T]) Destroy(e Entity) bool {
	if r == nil || !r.entities.destroy(e) {
		return false
	}
	r.values.Remove(e)
	return true
}

// IsAlive reports whether an entity handle is valid.
func (r *Registry[T]) IsAlive(e Entity) bool {
	return r != nil && r.entities.isAlive(e)
}

// Len returns the number of stored values.
func (r *Registry[T]) Len() int {
	if r == nil {
		return 0
	}
	return r.values.Len()
}

// Each visits every stored value. fn must not create or destroy entities.
func (r *Registry[T]) Each(fn func(Entity, T)) {
	if r == nil {
		return
	}
	r.values.Each(fn)
}

// Entities returns a snapshot of the stored entities.
func (r *Registry[T]) Entities() []Entity {
	if r == nil {
		return nil
	}
	return r.values.Entities()
}
