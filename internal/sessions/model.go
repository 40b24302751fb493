package sessions

import (
	"fiestapinata/internal/events"
	"fiestapinata/internal/gamedata"
	"time"
)

type InputKind string

const (
	InputMove    = InputKind("move")
	InputClick   = InputKind("click")
	InputRestart = InputKind("restart")
)

// Input is one player action. X and Y are raw pointer coordinates.
type Input struct {
	Kind InputKind
	X    float64
	Y    float64
}

// Observer receives everything a runner produces. Calls come from the
// runner's goroutine and must not block for long.
type Observer interface {
	Frame(sessionID string, f gamedata.Frame)
	Hits(sessionID string, hits []gamedata.Hit)
	TargetEvent(sessionID string, ev events.TargetEvent)
	UpdateTook(d time.Duration)
}
