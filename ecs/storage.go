package ecs

// entityStore hands out slots and remembers each slot's current epoch.
// Freed slots are reused last-in first-out.
type entityStore struct {
	epochs []epoch
	free   []slot
	live   int
}

func (s *entityStore) create() Entity {
	var sl slot
	if n := len(s.free); n > 0 {
		sl = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.epochs = append(s.epochs, 0)
		sl = slot(len(s.epochs))
	}
	s.live++
	return newEntity(sl, s.epochs[sl-1])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	sl := e.slot()
	s.epochs[sl-1]++
	s.free = append(s.free, sl)
	s.live--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	sl := e.slot()
	if sl == 0 || int(sl) > len(s.epochs) {
		return false
	}
	return s.epochs[sl-1] == e.epoch()
}
