package events

import "fiestapinata/internal/targets"

type Kind string

const (
	Spawned = Kind("spawned")
	Expired = Kind("expired")
	Hit     = Kind("hit")
)

const busSize = 256

// TargetEvent records one lifecycle transition. At is the session clock in
// seconds.
type TargetEvent struct {
	Kind   Kind           `json:"kind"`
	Pool   targets.Kind   `json:"pool"`
	Target targets.Target `json:"target"`
	At     float64        `json:"at"`
}

type Bus struct {
	Targets chan TargetEvent
}

func NewBus() *Bus {
	return NewBusSize(busSize)
}

// NewBusSize buffers at least size events, never fewer than NewBus does.
func NewBusSize(size int) *Bus {
	return &Bus{
		Targets: make(chan TargetEvent, max(size, busSize)),
	}
}

// Publish queues the event without blocking. It reports false when the
// buffer is full and the event was dropped.
func (b *Bus) Publish(ev TargetEvent) bool {
	select {
	case b.Targets <- ev:
		return true
	default:
		return false
	}
}

// Drain hands every queued event to fn and returns how many there were. It
// never waits for new events.
func (b *Bus) Drain(fn func(TargetEvent)) int {
	n := 0
	for {
		select {
		case ev := <-b.Targets:
			fn(ev)
			n++
		default:
			return n
		}
	}
}
