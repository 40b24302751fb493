package gamedata

import (
	"fiestapinata/internal/events"
	"fiestapinata/internal/rng"
	"fiestapinata/internal/targets"
	"log"
)

// DefaultCrosshair is the side of the crosshair sprite in pixels.
const DefaultCrosshair = 50

type Config struct {
	Width       float64
	Height      float64
	HeroTargets int
	EvilTargets int
	TargetSize  float64
	Crosshair   float64 // crosshair sprite side, sets the pointer bias
	Reward      uint16
	LifetimeMin float64 // seconds
	LifetimeMax float64 // seconds
	DecayStep   float64 // 0 = continuous decay
	Motion      bool
	Seed        uint32
}

func DefaultConfig() Config {
	return Config{
		Width:       480,
		Height:      272,
		HeroTargets: 3,
		EvilTargets: 3,
		TargetSize:  targets.DefaultSize,
		Crosshair:   DefaultCrosshair,
		Reward:      targets.DefaultReward,
		LifetimeMin: 4,
		LifetimeMax: 7,
		Motion:      true,
		Seed:        42,
	}
}

// DiscreteConfig is the whole-second variant: no motion, lifetimes drop by
// one each second.
func DiscreteConfig() Config {
	cfg := DefaultConfig()
	cfg.DecayStep = 1
	cfg.Motion = false
	return cfg
}

// Bias is the pointer correction that lines hit-testing up with the
// crosshair sprite's center. It does not depend on the target size.
func (c Config) Bias() float64 {
	if c.Crosshair <= 0 {
		return DefaultCrosshair / 2
	}
	return c.Crosshair / 2
}

// EventBufferSize is large enough for a full respawn of both pools plus
// the expiries of the same tick.
func (c Config) EventBufferSize() int {
	return 4 * (max(c.HeroTargets, 0) + max(c.EvilTargets, 0))
}

func (c Config) SpawnConfig() targets.SpawnConfig {
	return targets.SpawnConfig{
		Bounds:      targets.Vec2{X: c.Width, Y: c.Height},
		Size:        targets.Vec2{X: c.TargetSize, Y: c.TargetSize},
		Reward:      c.Reward,
		LifetimeMin: c.LifetimeMin,
		LifetimeMax: c.LifetimeMax,
		Motion:      c.Motion,
		MaxSpeed:    targets.DefaultMaxSpeed,
		DecayStep:   c.DecayStep,
	}
}

type Hit struct {
	Pool   targets.Kind   `json:"pool"`
	Target targets.Target `json:"target"`
}

// Frame is a read-only copy of everything a renderer needs.
type Frame struct {
	Frame  uint64           `json:"frame"`
	Clock  float64          `json:"clock"`
	Width  float64          `json:"w"`
	Height float64          `json:"h"`
	Bias   float64          `json:"bias"`
	Cursor targets.Vec2     `json:"cursor"`
	Hero   []targets.Target `json:"hero"`
	Evil   []targets.Target `json:"evil"`
}

// Session owns both pools, the cursor, and the RNG. It is driven by a
// single event source and is not safe for concurrent use.
type Session struct {
	cfg    Config
	rand   *rng.MT
	hero   *targets.Pool
	evil   *targets.Pool
	cursor targets.Vec2
	clock  float64
	frame  uint64
	Events *events.Bus // optional
}

func NewSession(cfg Config, bus *events.Bus) *Session {
	s := &Session{
		cfg:    cfg,
		rand:   rng.New(cfg.Seed),
		hero:   targets.NewPool(targets.KindHero, cfg.HeroTargets, cfg.SpawnConfig()),
		evil:   targets.NewPool(targets.KindEvil, cfg.EvilTargets, cfg.SpawnConfig()),
		Events: bus,
	}
	s.start()
	return s
}

func (s *Session) start() {
	s.cursor = targets.Vec2{X: s.cfg.Width / 2, Y: s.cfg.Height / 2}
	s.publish(events.Spawned, s.evil.Replenish(s.rand, s.clock))
	s.publish(events.Spawned, s.hero.Replenish(s.rand, s.clock))
}

// Reset reseeds the RNG and restarts both pools from scratch, so the spawn
// sequence repeats the one seen after NewSession.
func (s *Session) Reset() {
	s.rand.Reseed(s.cfg.Seed)
	s.hero.Clear()
	s.evil.Clear()
	s.clock = 0
	s.frame = 0
	s.start()
}

// Update runs one tick: expire, move, then refill both pools. Refilling is
// last so new targets are neither aged nor moved in the tick that spawned
// them. Negative dt is treated as zero.
func (s *Session) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	s.clock += dt
	s.frame++

	s.publish(events.Expired, s.evil.Advance(dt))
	s.publish(events.Expired, s.hero.Advance(dt))

	s.evil.AdvanceMotion(dt)
	s.hero.AdvanceMotion(dt)

	s.publish(events.Spawned, s.hero.Replenish(s.rand, s.clock))
	s.publish(events.Spawned, s.evil.Replenish(s.rand, s.clock))
}

// MoveCursor stores the raw pointer position shifted by the bias.
func (s *Session) MoveCursor(rawX, rawY float64) {
	b := s.cfg.Bias()
	s.cursor = targets.Vec2{X: rawX + b, Y: rawY + b}
}

// Click destroys every target under the cursor in both pools.
func (s *Session) Click() []Hit {
	var hits []Hit
	for _, p := range []*targets.Pool{s.evil, s.hero} {
		removed := p.Hit(s.cursor.X, s.cursor.Y)
		s.publish(events.Hit, removed)
		for _, t := range removed {
			hits = append(hits, Hit{Pool: p.Kind(), Target: t})
		}
	}
	return hits
}

// ClickAt moves the cursor to the raw pointer position and clicks there.
func (s *Session) ClickAt(rawX, rawY float64) []Hit {
	s.MoveCursor(rawX, rawY)
	return s.Click()
}

func (s *Session) Config() Config {
	return s.cfg
}

func (s *Session) Cursor() targets.Vec2 {
	return s.cursor
}

func (s *Session) Clock() float64 {
	return s.clock
}

func (s *Session) Hero() []targets.Target {
	return s.hero.Members()
}

func (s *Session) Evil() []targets.Target {
	return s.evil.Members()
}

func (s *Session) Snapshot() Frame {
	return Frame{
		Frame:  s.frame,
		Clock:  s.clock,
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
		Bias:   s.cfg.Bias(),
		Cursor: s.cursor,
		Hero:   s.hero.Members(),
		Evil:   s.evil.Members(),
	}
}

func (s *Session) publish(kind events.Kind, ts []targets.Target) {
	if s.Events == nil {
		return
	}
	for _, t := range ts {
		if !s.Events.Publish(events.TargetEvent{Kind: kind, Pool: t.Kind, Target: t, At: s.clock}) {
			log.Printf("[Events] Bus full, dropping %s event for %s target %d\n", kind, t.Kind, t.ID)
		}
	}
}
