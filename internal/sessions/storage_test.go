package sessions

import (
	"context"
	"fiestapinata/internal/gamedata"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s := NewStore(gamedata.DefaultConfig(), 5*time.Millisecond, ttl)
	t.Cleanup(s.Stop)
	return s
}

func TestNewStore(t *testing.T) {
	s := newTestStore(t, time.Hour)
	if s == nil {
		t.Fatal("NewStore() returned nil")
	}
	if len(s.List()) != 0 {
		t.Error("new store should have no sessions")
	}
}

func TestStore_StartRunsSession(t *testing.T) {
	s := newTestStore(t, time.Hour)
	rec := &recorder{}

	r, err := s.Start(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if r.ID == "" {
		t.Error("session id should not be empty")
	}
	if s.Get(r.ID) != r {
		t.Error("Get() should return the started runner")
	}

	deadline := time.After(2 * time.Second)
	for rec.frameCount() < 3 {
		select {
		case <-deadline:
			t.Fatalf("frames = %d after 2s, want at least 3", rec.frameCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStore_StartUniqueIDs(t *testing.T) {
	s := newTestStore(t, time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		r, err := s.Start(context.Background(), &recorder{})
		if err != nil {
			t.Fatal(err)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate session id %q", r.ID)
		}
		seen[r.ID] = true
	}
	if s.Len() != 20 {
		t.Errorf("Len() = %d, want 20", s.Len())
	}
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t, time.Hour)
	r, _ := s.Start(context.Background(), &recorder{})

	if !s.Remove(r.ID) {
		t.Error("Remove() should report an existing session")
	}
	if s.Get(r.ID) != nil {
		t.Error("session should be removed")
	}

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after Remove")
	}

	if s.Remove(r.ID) {
		t.Error("second Remove() should report a missing session")
	}
}

func TestStore_SweepStale(t *testing.T) {
	s := newTestStore(t, time.Minute)
	old, _ := s.Start(context.Background(), &recorder{})
	fresh, _ := s.Start(context.Background(), &recorder{})

	old.lastSeen.Store(time.Now().Add(-2 * time.Minute).UnixNano())

	swept := s.SweepStale(time.Now())
	if len(swept) != 1 || swept[0] != old.ID {
		t.Fatalf("swept = %v, want only %s", swept, old.ID)
	}
	if s.Get(fresh.ID) == nil {
		t.Error("fresh session should survive the sweep")
	}
}

func TestStore_CreateDoesNotRun(t *testing.T) {
	s := newTestStore(t, time.Hour)
	rec := &recorder{}

	r, err := s.Create(rec)
	if err != nil {
		t.Fatal(err)
	}
	if s.Get(r.ID) != r {
		t.Error("Create() should register the runner")
	}
	if r.Done() != nil {
		t.Error("Done() should be nil before Launch")
	}

	time.Sleep(20 * time.Millisecond)
	if n := rec.frameCount(); n != 0 {
		t.Errorf("frames = %d before Launch, want 0", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.Launch(ctx, r)
	cancel()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after its context was cancelled")
	}
}
