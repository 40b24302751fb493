package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fiestapinata/internal/broadcast"
	"fiestapinata/internal/db"
	"fiestapinata/internal/events"
	"fiestapinata/internal/gamedata"
	"fiestapinata/internal/metrics"
	"fiestapinata/internal/sessions"
	"fiestapinata/internal/targets"
	"fiestapinata/internal/wshub"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// newTestServer uses a tick slow enough that a session only produces the
// frames the test asks for.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := gamedata.DiscreteConfig()
	store := sessions.NewStore(cfg, time.Hour, time.Hour)
	t.Cleanup(store.Stop)

	srv := &Server{
		Sessions: store,
		Hub:      wshub.NewHub(),
		Feed:     broadcast.NewBroadcaster(),
		Metrics:  metrics.New(),
		GameCfg:  cfg,
	}
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func spawnedEvent() events.TargetEvent {
	return events.TargetEvent{
		Kind: events.Spawned,
		Pool: targets.KindHero,
		Target: targets.Target{
			ID:       1,
			Kind:     targets.KindHero,
			Position: targets.Vec2{X: 100, Y: 100},
			Size:     targets.Vec2{X: 50, Y: 50},
			Reward:   30,
			Lifetime: 5,
		},
		At: 1.5,
	}
}

func TestHandleIndex(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "/play") {
		t.Error("index page should connect to /play")
	}
}

func TestHandleIndex_UnknownPath(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestHandleHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Sessions != 0 {
		t.Errorf("health = %+v, want ok with 0 sessions", body)
	}
}

func TestHandleStats_NoDatabase(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/stats/some-session")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestHandleMetrics(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.TargetEvent("s1", spawnedEvent())

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `pinata_targets_spawned_total{pool="hero"} 1`) {
		t.Errorf("metrics output missing spawned counter:\n%s", body)
	}
}

func TestTargetEvent_QueuesRecord(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.EventBuffer = make(chan db.TargetEventRecord, 1)

	srv.TargetEvent("s1", spawnedEvent())
	// Buffer full: must drop rather than block.
	srv.TargetEvent("s1", spawnedEvent())

	rec := <-srv.EventBuffer
	if rec.SessionID != "s1" || rec.Kind != "spawned" || rec.Pool != "hero" {
		t.Errorf("record = %+v, want s1/spawned/hero", rec)
	}
	if len(srv.EventBuffer) != 0 {
		t.Error("second event should have been dropped")
	}
}

func TestHandleFeed(t *testing.T) {
	srv, ts := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sessions/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	// Headers are flushed after Subscribe, so the feed is live now.
	srv.TargetEvent("s1", spawnedEvent())

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	var gotEvent, gotData bool
	timeout := time.After(2 * time.Second)
	for !(gotEvent && gotData) {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("feed closed early")
			}
			if line == "event: spawned" {
				gotEvent = true
			}
			if strings.HasPrefix(line, "data: ") && strings.Contains(line, `"session":"s1"`) {
				gotData = true
			}
		case <-timeout:
			t.Fatalf("feed timeout: event=%v data=%v", gotEvent, gotData)
		}
	}
}

func dialPlay(t *testing.T, ts *httptest.Server) (*websocket.Conn, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/play", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string) wshub.ServerMessage {
	t.Helper()
	for {
		var msg wshub.ServerMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			t.Fatalf("waiting for %q: %v", msgType, err)
		}
		if msg.Type == msgType {
			return msg
		}
	}
}

func TestHandlePlay_WelcomeAndFrame(t *testing.T) {
	srv, ts := newTestServer(t)
	conn, ctx := dialPlay(t, ts)

	welcome := readUntil(t, ctx, conn, wshub.MsgWelcome)
	if welcome.SessionID == "" {
		t.Fatal("welcome should carry the session id")
	}
	if srv.Sessions.Get(welcome.SessionID) == nil {
		t.Error("session should be registered while connected")
	}

	frame := readUntil(t, ctx, conn, wshub.MsgFrame)
	if frame.Frame == nil {
		t.Fatal("frame message without a frame")
	}
	f := frame.Frame
	if len(f.Hero) != 3 || len(f.Evil) != 3 {
		t.Errorf("pools = %d/%d, want 3/3", len(f.Hero), len(f.Evil))
	}
	if f.Bias != 25 || f.Width != 480 || f.Height != 272 {
		t.Errorf("frame geometry = %vx%v bias %v", f.Width, f.Height, f.Bias)
	}
}

func TestHandlePlay_ClickHitsTarget(t *testing.T) {
	_, ts := newTestServer(t)
	conn, ctx := dialPlay(t, ts)

	f := readUntil(t, ctx, conn, wshub.MsgFrame).Frame
	target := f.Hero[0]

	// The pointer is shifted by the bias before hit-testing.
	click := wshub.ClientMessage{
		Type: wshub.MsgClick,
		X:    target.Position.X - f.Bias + 1,
		Y:    target.Position.Y - f.Bias + 1,
	}
	if err := wsjson.Write(ctx, conn, click); err != nil {
		t.Fatal(err)
	}

	hit := readUntil(t, ctx, conn, wshub.MsgHit)
	found := false
	for _, h := range hit.Hits {
		if h.Pool == targets.KindHero && h.Target.ID == target.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("hits = %+v, want hero target %d", hit.Hits, target.ID)
	}
}

func TestHandlePlay_RestartSendsFrame(t *testing.T) {
	_, ts := newTestServer(t)
	conn, ctx := dialPlay(t, ts)

	first := readUntil(t, ctx, conn, wshub.MsgFrame).Frame

	if err := wsjson.Write(ctx, conn, wshub.ClientMessage{Type: wshub.MsgRestart}); err != nil {
		t.Fatal(err)
	}
	again := readUntil(t, ctx, conn, wshub.MsgFrame).Frame

	if len(again.Hero) != len(first.Hero) {
		t.Fatalf("hero after restart = %d, want %d", len(again.Hero), len(first.Hero))
	}
	for i := range first.Hero {
		if again.Hero[i].Position != first.Hero[i].Position {
			t.Errorf("hero[%d] = %+v after restart, want %+v", i, again.Hero[i].Position, first.Hero[i].Position)
		}
	}
}

func TestHandlePlay_DisconnectRemovesSession(t *testing.T) {
	srv, ts := newTestServer(t)
	conn, ctx := dialPlay(t, ts)

	id := readUntil(t, ctx, conn, wshub.MsgWelcome).SessionID
	conn.Close(websocket.StatusNormalClosure, "")

	deadline := time.After(2 * time.Second)
	for srv.Sessions.Get(id) != nil || srv.Hub.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("session still registered after disconnect")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestToInput(t *testing.T) {
	tests := []struct {
		msg  wshub.ClientMessage
		want sessions.InputKind
		ok   bool
	}{
		{wshub.ClientMessage{Type: wshub.MsgMove, X: 1, Y: 2}, sessions.InputMove, true},
		{wshub.ClientMessage{Type: wshub.MsgClick, X: 1, Y: 2}, sessions.InputClick, true},
		{wshub.ClientMessage{Type: wshub.MsgRestart}, sessions.InputRestart, true},
		{wshub.ClientMessage{Type: "dance"}, "", false},
	}
	for _, tt := range tests {
		in, ok := toInput(tt.msg)
		if ok != tt.ok || in.Kind != tt.want {
			t.Errorf("toInput(%q) = %q, %v; want %q, %v", tt.msg.Type, in.Kind, ok, tt.want, tt.ok)
		}
		if ok && (in.X != tt.msg.X || in.Y != tt.msg.Y) {
			t.Errorf("toInput(%q) coords = %v,%v", tt.msg.Type, in.X, in.Y)
		}
	}
}
