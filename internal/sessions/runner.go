package sessions

import (
	"context"
	"fiestapinata/internal/events"
	"fiestapinata/internal/gamedata"
	"sync/atomic"
	"time"
)

const inputBuffer = 64

// Runner drives one game session from a fixed-rate ticker and a stream of
// player input. Run is the only goroutine that touches the session, so an
// update never interleaves with a click.
type Runner struct {
	ID        string
	Session   *gamedata.Session
	CreatedAt time.Time

	tick     time.Duration
	step     float64
	obs      Observer
	input    chan Input
	lastSeen atomic.Int64
	cancel   context.CancelFunc
	done     <-chan struct{}
}

func NewRunner(id string, cfg gamedata.Config, tick time.Duration, obs Observer) *Runner {
	if tick <= 0 {
		tick = time.Second / 60
	}
	r := &Runner{
		ID:        id,
		Session:   gamedata.NewSession(cfg, events.NewBusSize(cfg.EventBufferSize())),
		CreatedAt: time.Now(),
		tick:      tick,
		step:      tick.Seconds(),
		obs:       obs,
		input:     make(chan Input, inputBuffer),
	}
	r.touch()
	return r
}

// Submit queues player input without blocking. It reports false when the
// queue is full and the input was dropped.
func (r *Runner) Submit(in Input) bool {
	r.touch()
	select {
	case r.input <- in:
		return true
	default:
		return false
	}
}

// Run ticks the session until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	r.flush()
	r.obs.Frame(r.ID, r.Session.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return
		case in := <-r.input:
			r.Apply(in)
		case <-ticker.C:
			r.Step()
		}
	}
}

// Step advances the session by one fixed timestep and publishes the frame.
// Only call it from the goroutine that owns the runner.
func (r *Runner) Step() {
	start := time.Now()
	r.Session.Update(r.step)
	r.obs.UpdateTook(time.Since(start))
	r.flush()
	r.obs.Frame(r.ID, r.Session.Snapshot())
}

// Apply handles one input immediately. Only call it from the goroutine that
// owns the runner.
func (r *Runner) Apply(in Input) {
	switch in.Kind {
	case InputMove:
		r.Session.MoveCursor(in.X, in.Y)
	case InputClick:
		if hits := r.Session.ClickAt(in.X, in.Y); len(hits) > 0 {
			r.obs.Hits(r.ID, hits)
		}
	case InputRestart:
		r.Session.Reset()
		r.obs.Frame(r.ID, r.Session.Snapshot())
	}
	r.flush()
}

func (r *Runner) flush() {
	r.Session.Events.Drain(func(ev events.TargetEvent) {
		r.obs.TargetEvent(r.ID, ev)
	})
}

// Done is closed once a runner started by a Store has stopped. It is nil
// for runners driven by hand.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) touch() {
	r.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen is the time of the most recent input or creation.
func (r *Runner) LastSeen() time.Time {
	return time.Unix(0, r.lastSeen.Load())
}
