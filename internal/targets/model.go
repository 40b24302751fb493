package targets

type Kind string

const (
	KindHero = Kind("hero")
	KindEvil = Kind("evil")
)

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Target struct {
	ID        int     `json:"id"`
	Kind      Kind    `json:"kind"`
	Position  Vec2    `json:"pos"`
	Size      Vec2    `json:"size"`
	Reward    uint16  `json:"reward"`
	Lifetime  float64 `json:"life"`
	Velocity  Vec2    `json:"vel"`
	SpawnedAt float64 `json:"spawnedAt"`
}

// Contains reports whether the point lies inside the target's box. The
// right and bottom edges are excluded.
func (t Target) Contains(x, y float64) bool {
	return x >= t.Position.X && x < t.Position.X+t.Size.X &&
		y >= t.Position.Y && y < t.Position.Y+t.Size.Y
}
