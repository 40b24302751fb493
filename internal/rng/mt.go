// Package rng provides the seeded pseudo-random source that drives every
// randomized decision in a game session.
package rng

const (
	stateSize  = 624
	shiftSize  = 397
	matrixA    = 0x9908b0df
	upperMask  = 0x80000000
	lowerMask  = 0x7fffffff
	initFactor = 1812433253
)

// Source produces uniformly distributed unsigned 32-bit integers.
type Source interface {
	Uint32() uint32
}

// MT is a 32-bit Mersenne Twister (MT19937). Given the same seed it always
// produces the same sequence. Not safe for concurrent use.
type MT struct {
	state [stateSize]uint32
	index int
	seed  uint32
}

// New returns a generator seeded with seed.
func New(seed uint32) *MT {
	m := &MT{}
	m.Reseed(seed)
	return m
}

// Reseed resets the generator as if it had just been created with seed.
func (m *MT) Reseed(seed uint32) {
	m.seed = seed
	m.state[0] = seed
	for i := 1; i < stateSize; i++ {
		prev := m.state[i-1]
		m.state[i] = initFactor*(prev^(prev>>30)) + uint32(i)
	}
	m.index = stateSize
}

// Seed returns the seed the generator was last (re)seeded with.
func (m *MT) Seed() uint32 {
	return m.seed
}

// Next advances the state once and returns the tempered output.
func (m *MT) Next() uint32 {
	if m.index >= stateSize {
		m.twist()
	}
	y := m.state[m.index]
	m.index++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// Uint32 implements Source.
func (m *MT) Uint32() uint32 {
	return m.Next()
}

func (m *MT) twist() {
	for i := 0; i < stateSize; i++ {
		y := (m.state[i] & upperMask) | (m.state[(i+1)%stateSize] & lowerMask)
		next := m.state[(i+shiftSize)%stateSize] ^ (y >> 1)
		if y&1 != 0 {
			next ^= matrixA
		}
		m.state[i] = next
	}
	m.index = 0
}
