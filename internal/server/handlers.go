package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"fiestapinata/internal/analytics"
	"fiestapinata/internal/broadcast"
	"fiestapinata/internal/db"
	"fiestapinata/internal/events"
	"fiestapinata/internal/gamedata"
	"fiestapinata/internal/metrics"
	"fiestapinata/internal/sessions"
	"fiestapinata/internal/wshub"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
)

//go:embed static/index.html
var indexHTML []byte

const sendBuffer = 16

type Server struct {
	Sessions    *sessions.Store
	Hub         *wshub.Hub
	Feed        *broadcast.Broadcaster
	Metrics     *metrics.Metrics
	GameCfg     gamedata.Config
	DB          *db.DB                      // nil if no database configured
	EventBuffer chan db.TargetEventRecord // nil if no database configured
}

// Frame, Hits, TargetEvent and UpdateTook make the server the observer of
// every session runner.

func (s *Server) Frame(sessionID string, f gamedata.Frame) {
	s.Hub.SendTo(sessionID, wshub.ServerMessage{Type: wshub.MsgFrame, Frame: &f})
}

func (s *Server) Hits(sessionID string, hits []gamedata.Hit) {
	s.Hub.SendTo(sessionID, wshub.ServerMessage{Type: wshub.MsgHit, Hits: hits})
}

func (s *Server) TargetEvent(sessionID string, ev events.TargetEvent) {
	s.Metrics.Observe(ev)
	s.Feed.BroadcastTargetEvent(sessionID, ev)

	if s.EventBuffer == nil {
		return
	}
	select {
	case s.EventBuffer <- db.NewTargetEventRecord(sessionID, ev):
	default:
		log.Println("[DB] Event buffer full, dropping event")
	}
}

func (s *Server) UpdateTook(d time.Duration) {
	s.Metrics.ObserveUpdate(d)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(indexHTML); err != nil {
		log.Println(err)
	}
}

// handlePlay upgrades to a WebSocket and runs one game session for the
// lifetime of the connection.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	runner, err := s.Sessions.Create(s)
	if err != nil {
		log.Printf("[Session] Start error: %v\n", err)
		conn.Close(websocket.StatusInternalError, "could not start session")
		return
	}
	id := runner.ID
	log.Printf("[Session] Started %s\n", id)

	client := &wshub.Client{SessionID: id, Conn: conn, Send: make(chan []byte, sendBuffer)}
	s.Hub.Register(client)
	s.Metrics.ActiveSessions.Inc()
	defer func() {
		s.Sessions.Remove(id)
		s.Hub.Unregister(id)
		s.Metrics.ActiveSessions.Dec()
		if s.DB != nil {
			if err := s.DB.EndSession(id); err != nil {
				log.Printf("[DB] EndSession error: %v\n", err)
			}
		}
		log.Printf("[Session] Ended %s\n", id)
	}()

	if s.DB != nil {
		if err := s.DB.CreateSession(id, s.GameCfg.Seed, s.GameCfg); err != nil {
			log.Printf("[DB] CreateSession error: %v\n", err)
		}
	}

	s.Hub.SendTo(id, wshub.ServerMessage{Type: wshub.MsgWelcome, SessionID: id})
	go client.WritePump(ctx)
	s.Sessions.Launch(ctx, runner)

	// A swept session closes the connection too.
	go func() {
		select {
		case <-runner.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && ctx.Err() == nil {
				log.Printf("[WS] Read error for %s: %v\n", id, err)
			}
			return
		}

		var msg wshub.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Bad message from %s: %v\n", id, err)
			continue
		}
		in, ok := toInput(msg)
		if !ok {
			continue
		}
		if !runner.Submit(in) {
			log.Printf("[WS] Input queue full for %s, dropping %s\n", id, msg.Type)
		}
	}
}

func toInput(msg wshub.ClientMessage) (sessions.Input, bool) {
	switch msg.Type {
	case wshub.MsgMove:
		return sessions.Input{Kind: sessions.InputMove, X: msg.X, Y: msg.Y}, true
	case wshub.MsgClick:
		return sessions.Input{Kind: sessions.InputClick, X: msg.X, Y: msg.Y}, true
	case wshub.MsgRestart:
		return sessions.Input{Kind: sessions.InputRestart}, true
	}
	return sessions.Input{}, false
}

// handleFeed streams every session's target events as Server-Sent Events.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	msgChan := s.Feed.Subscribe()
	defer s.Feed.Unsubscribe(msgChan)

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-msgChan:
			fmt.Fprintf(w, "event: %s\n", msg.Event)
			for _, line := range strings.Split(msg.Msg, "\n") {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Stats require a database connection", http.StatusServiceUnavailable)
		return
	}

	stats, err := analytics.NewQueries(s.DB).GetSessionStats(r.PathValue("id"))
	if err != nil {
		log.Printf("[Analytics] session stats error: %v\n", err)
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Println(err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"%s","error":%q}`, status, err.Error())
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s","sessions":%d}`, status, s.Sessions.Len())
}
