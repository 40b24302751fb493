package targets

import (
	"fiestapinata/internal/rng"
	"math"
)

const (
	DefaultSize     = 50
	DefaultReward   = 30
	DefaultMaxSpeed = 20
)

// SpawnConfig bounds every randomized draw made when a target is created.
type SpawnConfig struct {
	Bounds      Vec2 // spawn area, top-left corner at the origin
	Size        Vec2
	Reward      uint16
	LifetimeMin float64 // seconds
	LifetimeMax float64 // seconds
	Motion      bool
	MaxSpeed    uint32 // exclusive per-axis speed bound, pixels per second
	DecayStep   float64
}

// Spawn draws a new target. Draw order is x, y, then velocity (only when
// Motion is set), then lifetime.
func (c SpawnConfig) Spawn(src rng.Source) Target {
	t := Target{
		Size:   c.Size,
		Reward: c.Reward,
	}
	t.Position = c.randomPosition(src)
	if c.Motion {
		t.Velocity = c.randomVelocity(src)
	}
	t.Lifetime = c.randomLifetime(src)
	return t
}

func (c SpawnConfig) randomPosition(src rng.Source) Vec2 {
	x := src.Uint32() % extent(c.Bounds.X)
	y := src.Uint32() % extent(c.Bounds.Y)
	return Vec2{X: float64(x), Y: float64(y)}
}

func (c SpawnConfig) randomVelocity(src rng.Source) Vec2 {
	speed := c.MaxSpeed
	if speed == 0 {
		speed = DefaultMaxSpeed
	}
	xSign := sign(src.Uint32())
	x := float64(src.Uint32() % speed)
	ySign := sign(src.Uint32())
	y := float64(src.Uint32() % speed)
	return Vec2{X: xSign * x, Y: ySign * y}
}

// randomLifetime draws whole milliseconds in [min, max) and converts them
// back to seconds. In discrete mode the result is truncated to a whole
// number of decay steps, never less than one.
func (c SpawnConfig) randomLifetime(src rng.Source) float64 {
	life := c.LifetimeMin
	rangeMs := c.LifetimeMax*1000 - c.LifetimeMin*1000
	r := float64(src.Uint32())
	if rangeMs > 0 {
		life += math.Mod(r, rangeMs) / 1000
	}
	if c.DecayStep > 0 {
		life = math.Floor(life/c.DecayStep) * c.DecayStep
		if life < c.DecayStep {
			life = c.DecayStep
		}
	}
	if life <= 0 {
		life = math.SmallestNonzeroFloat64
	}
	return life
}

func extent(v float64) uint32 {
	if v < 1 {
		return 1
	}
	return uint32(v)
}

func sign(draw uint32) float64 {
	if draw&1 == 1 {
		return -1
	}
	return 1
}
