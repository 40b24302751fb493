package sessions

import (
	"context"
	"fiestapinata/internal/gamedata"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Store struct {
	mu      sync.Mutex
	runners map[string]*Runner
	cfg     gamedata.Config
	tick    time.Duration
	idleTTL time.Duration
	stop    chan struct{}
}

func NewStore(cfg gamedata.Config, tick, idleTTL time.Duration) *Store {
	s := &Store{
		runners: make(map[string]*Runner),
		cfg:     cfg,
		tick:    tick,
		idleTTL: idleTTL,
		stop:    make(chan struct{}),
	}
	go s.sweepStale()
	return s
}

// Start creates a session, registers it, and runs it in its own goroutine
// until Remove is called or ctx is cancelled.
func (s *Store) Start(ctx context.Context, obs Observer) (*Runner, error) {
	r, err := s.Create(obs)
	if err != nil {
		return nil, err
	}
	s.Launch(ctx, r)
	return r, nil
}

// Create registers a new session without running it, so callers can wire
// up delivery before the first frame goes out.
func (s *Store) Create(obs Observer) (*Runner, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	r := NewRunner(id.String(), s.cfg, s.tick, obs)

	s.mu.Lock()
	s.runners[r.ID] = r
	s.mu.Unlock()
	return r, nil
}

// Launch runs a created session in its own goroutine.
func (s *Store) Launch(ctx context.Context, r *Runner) {
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	r.cancel = cancel
	r.done = runCtx.Done()
	s.mu.Unlock()

	go r.Run(runCtx)
}

func (s *Store) Get(id string) *Runner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runners[id]
}

// Remove stops the session and forgets it. It reports whether the session
// existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	r, ok := s.runners[id]
	delete(s.runners, id)
	var cancel context.CancelFunc
	if ok {
		cancel = r.cancel
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return ok
}

func (s *Store) List() []*Runner {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Runner, 0, len(s.runners))
	for _, r := range s.runners {
		list = append(list, r)
	}
	return list
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runners)
}

// Stop ends the sweeper and every running session.
func (s *Store) Stop() {
	close(s.stop)
	for _, r := range s.List() {
		s.Remove(r.ID)
	}
}

// SweepStale removes sessions with no input for longer than the idle TTL
// and returns their IDs.
func (s *Store) SweepStale(now time.Time) []string {
	var stale []string
	for _, r := range s.List() {
		if now.Sub(r.LastSeen()) > s.idleTTL {
			stale = append(stale, r.ID)
		}
	}
	for _, id := range stale {
		if s.Remove(id) {
			log.Printf("[Session] Swept idle session %s\n", id)
		}
	}
	return stale
}

func (s *Store) sweepStale() {
	if s.idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.SweepStale(now)
		}
	}
}
