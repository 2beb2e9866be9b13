package spawn

// Handle is a stable reference to an obstacle slot. It stays valid until the slot is
// released or destroyed; after that the slot's generation moves on and the handle
// is reported as stale instead of aliasing whatever reuses the slot.
// The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

type slotState uint8

const (
	slotVacant slotState = iota // No obstacle; next use allocates a fresh one
	slotPooled                  // Inactive obstacle kept for reuse
	slotLive                    // Handed out
)

type slot struct {
	gen      uint32
	state    slotState
	obstacle *Obstacle
}

// ArenaStats is a snapshot of slot usage.
type ArenaStats struct {
	Live      int // Slots handed out
	Pooled    int // Inactive obstacles ready for reuse
	Vacant    int // Slots whose obstacle was destroyed
	Allocated int // Obstacles created over the arena's lifetime
}

// Arena stores obstacles in generation-counted slots.
// Release returns an obstacle to the pool; Destroy drops it. Both invalidate
// outstanding handles to the slot.
type Arena struct {
	slots     []slot
	pool      []uint32 // FIFO of pooled slot indices
	vacant    []uint32
	allocated int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Acquire hands out an obstacle. Pooled obstacles are reused first; a new obstacle is
// allocated only when the pool is empty. reused reports which path was taken.
func (a *Arena) Acquire() (h Handle, o *Obstacle, reused bool) {
	if len(a.pool) > 0 {
		idx := a.pool[0]
		a.pool = a.pool[1:]
		s := &a.slots[idx]
		s.state = slotLive
		s.obstacle.handle = Handle{index: idx, gen: s.gen}
		return s.obstacle.handle, s.obstacle, true
	}

	var idx uint32
	if n := len(a.vacant); n > 0 {
		idx = a.vacant[n-1]
		a.vacant = a.vacant[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot{gen: 1})
	}

	a.allocated++
	s := &a.slots[idx]
	s.state = slotLive
	s.obstacle = &Obstacle{handle: Handle{index: idx, gen: s.gen}}
	return s.obstacle.handle, s.obstacle, false
}

// Release moves a live obstacle to the pool. Stale handles are ignored.
func (a *Arena) Release(h Handle) bool {
	s := a.liveSlot(h)
	if s == nil {
		return false
	}
	s.gen = nextGen(s.gen)
	s.state = slotPooled
	s.obstacle.Alive = false
	s.obstacle.Exploding = false
	a.pool = append(a.pool, h.index)
	return true
}

// Destroy drops a live obstacle entirely. The slot is reused by a later allocation.
func (a *Arena) Destroy(h Handle) bool {
	s := a.liveSlot(h)
	if s == nil {
		return false
	}
	s.obstacle.Alive = false
	s.obstacle.owner = nil
	s.gen = nextGen(s.gen)
	s.state = slotVacant
	s.obstacle = nil
	a.vacant = append(a.vacant, h.index)
	return true
}

// Valid reports whether h refers to a live obstacle.
func (a *Arena) Valid(h Handle) bool {
	return a.liveSlot(h) != nil
}

// Get returns the obstacle behind a live handle.
func (a *Arena) Get(h Handle) (*Obstacle, bool) {
	s := a.liveSlot(h)
	if s == nil {
		return nil, false
	}
	return s.obstacle, true
}

// EachLive calls fn for every handed-out handle in slot order.
func (a *Arena) EachLive(fn func(h Handle)) {
	for i := range a.slots {
		if a.slots[i].state == slotLive {
			fn(Handle{index: uint32(i), gen: a.slots[i].gen})
		}
	}
}

// Stats returns a snapshot of slot usage. Live + Pooled + Vacant always equals the
// number of slots ever created.
func (a *Arena) Stats() ArenaStats {
	st := ArenaStats{
		Pooled:    len(a.pool),
		Vacant:    len(a.vacant),
		Allocated: a.allocated,
	}
	st.Live = len(a.slots) - st.Pooled - st.Vacant
	return st
}

func (a *Arena) liveSlot(h Handle) *slot {
	if h.gen == 0 || int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if s.state != slotLive || s.gen != h.gen {
		return nil
	}
	return s
}

// nextGen skips zero on wrap so a recycled slot never matches the zero Handle.
func nextGen(g uint32) uint32 {
	g++
	if g == 0 {
		g = 1
	}
	return g
}
