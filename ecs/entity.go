package ecs

import "fmt"

// Entity names one slot of a Registry. The low 32 bits are the slot number
// (1-based; 0 is the null handle) and the high 32 bits the slot's epoch,
// which Destroy bumps so handles kept past removal stop resolving.
type Entity uint64

type (
	slot  uint32
	epoch uint32
)

const slotBits = 32

func newEntity(s slot, ep epoch) Entity {
	return Entity(uint64(ep)<<slotBits | uint64(s))
}

func (e Entity) slot() slot {
	return slot(e & (1<<slotBits - 1))
}

func (e Entity) epoch() epoch {
	return epoch(e >> slotBits)
}

// String formats the handle as slot.epoch.
func (e Entity) String() string {
	return fmt.Sprintf("%d.%d", e.slot(), e.epoch())
}

// Valid reports whether e names a slot. It says nothing about liveness;
// ask the Registry for that.
func (e Entity) Valid() bool {
	return e.slot() != 0
}
