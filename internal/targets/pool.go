package targets

import "fiestapinata/internal/rng"

// stepEpsilon absorbs float drift when fractional ticks add up to a whole
// decay step (60 * 1/60 is not exactly 1).
const stepEpsilon = 1e-9

// Pool keeps a bounded, self-replenishing set of targets of one kind.
// Members are kept in spawn order. Not safe for concurrent use.
type Pool struct {
	kind     Kind
	capacity int
	spawn    SpawnConfig
	members  []Target
	nextID   int
	decayAcc float64
}

func NewPool(kind Kind, capacity int, cfg SpawnConfig) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool{
		kind:     kind,
		capacity: capacity,
		spawn:    cfg,
		members:  make([]Target, 0, capacity),
		nextID:   1,
	}
}

func (p *Pool) Kind() Kind {
	return p.kind
}

func (p *Pool) Capacity() int {
	return p.capacity
}

func (p *Pool) Len() int {
	return len(p.members)
}

// Members returns a copy of the live targets in spawn order.
func (p *Pool) Members() []Target {
	list := make([]Target, len(p.members))
	copy(list, p.members)
	return list
}

// SpawnOne draws a target, stamps it with the next ID and the given clock
// value, and appends it to the pool.
func (p *Pool) SpawnOne(src rng.Source, now float64) Target {
	t := p.spawn.Spawn(src)
	t.ID = p.nextID
	t.Kind = p.kind
	t.SpawnedAt = now
	p.nextID++
	p.members = append(p.members, t)
	return t
}

// Advance ages every member and removes the ones whose lifetime reached
// zero. With a decay step configured, aging happens once per whole step of
// accumulated time; otherwise by dt directly. It returns the expired
// targets in spawn order.
func (p *Pool) Advance(dt float64) []Target {
	if dt <= 0 {
		return nil
	}
	step := p.spawn.DecayStep
	if step <= 0 {
		return p.age(dt)
	}

	var expired []Target
	p.decayAcc += dt
	for p.decayAcc+stepEpsilon >= step {
		p.decayAcc -= step
		expired = append(expired, p.age(step)...)
	}
	if p.decayAcc < 0 {
		p.decayAcc = 0
	}
	return expired
}

// age rebuilds the member list from survivors in a single pass.
func (p *Pool) age(amount float64) []Target {
	var expired []Target
	kept := p.members[:0]
	for _, t := range p.members {
		t.Lifetime -= amount
		if t.Lifetime <= 0 {
			t.Lifetime = 0
			expired = append(expired, t)
			continue
		}
		kept = append(kept, t)
	}
	p.members = kept
	return expired
}

// AdvanceMotion moves every member by its velocity. Targets are allowed to
// leave the spawn bounds.
func (p *Pool) AdvanceMotion(dt float64) {
	if dt <= 0 {
		return
	}
	for i := range p.members {
		p.members[i].Position.X += p.members[i].Velocity.X * dt
		p.members[i].Position.Y += p.members[i].Velocity.Y * dt
	}
}

// Replenish spawns targets until the pool is back at capacity and returns
// the new ones.
func (p *Pool) Replenish(src rng.Source, now float64) []Target {
	var spawned []Target
	for len(p.members) < p.capacity {
		spawned = append(spawned, p.SpawnOne(src, now))
	}
	return spawned
}

// CheckForHit returns the ascending indices of every member whose box
// contains the point.
func (p *Pool) CheckForHit(x, y float64) []int {
	var indices []int
	for i, t := range p.members {
		if t.Contains(x, y) {
			indices = append(indices, i)
		}
	}
	return indices
}

// Remove deletes the members at the given ascending indices, walking them
// from last to first so earlier indices stay valid. Survivors keep their
// relative order. Out-of-range and repeated indices are ignored.
func (p *Pool) Remove(indices []int) []Target {
	removed := make([]Target, 0, len(indices))
	for i := len(indices) - 1; i >= 0; i-- {
		idx := indices[i]
		if idx < 0 || idx >= len(p.members) {
			continue
		}
		if i+1 < len(indices) && indices[i+1] == idx {
			continue
		}
		removed = append(removed, p.members[idx])
		p.members = append(p.members[:idx], p.members[idx+1:]...)
	}
	// back to spawn order
	for l, r := 0, len(removed)-1; l < r; l, r = l+1, r-1 {
		removed[l], removed[r] = removed[r], removed[l]
	}
	return removed
}

// Hit removes every member containing the point and returns them.
func (p *Pool) Hit(x, y float64) []Target {
	indices := p.CheckForHit(x, y)
	if len(indices) == 0 {
		return nil
	}
	return p.Remove(indices)
}

// Clear drops every member and restarts IDs and the decay accumulator.
func (p *Pool) Clear() {
	p.members = p.members[:0]
	p.nextID = 1
	p.decayAcc = 0
}
