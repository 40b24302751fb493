package server

import (
	"fiestapinata/internal/broadcast"
	"fiestapinata/internal/config"
	"fiestapinata/internal/db"
	"fiestapinata/internal/metrics"
	"fiestapinata/internal/sessions"
	"fiestapinata/internal/wshub"
	"fmt"
	"log"
	"net/http"
	"time"
)

const (
	eventBufferSize = 1000
	eventBatchSize  = 50
	eventFlushEvery = 500 * time.Millisecond
)

func Run() error {
	appCfg := config.Load()

	srv := New(appCfg)

	// Optional database connection
	if appCfg.DatabaseURL != "" {
		database, err := db.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			srv.DB = database
			srv.EventBuffer = make(chan db.TargetEventRecord, eventBufferSize)
			go eventBatchWriter(database, srv.EventBuffer)
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	addr := "0.0.0.0:" + appCfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", appCfg.Port)
	return http.ListenAndServe(addr, srv.Routes())
}

// New builds a server without a database.
func New(appCfg config.Config) *Server {
	gameCfg := appCfg.Game()
	idleTTL := time.Duration(appCfg.SessionIdleTTL) * time.Second
	return &Server{
		Sessions: sessions.NewStore(gameCfg, appCfg.TickInterval(), idleTTL),
		Hub:      wshub.NewHub(),
		Feed:     broadcast.NewBroadcaster(),
		Metrics:  metrics.New(),
		GameCfg:  gameCfg,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /play", s.handlePlay)
	mux.HandleFunc("GET /sessions/events", s.handleFeed)
	mux.HandleFunc("GET /stats/{id}", s.handleStats)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.Metrics.Handler())
	return mux
}

type eventRecorder interface {
	BatchRecordTargetEvents(batch []db.TargetEventRecord) error
	RecordTargetEvent(ev db.TargetEventRecord) error
}

// eventBatchWriter flushes buffered events every eventFlushEvery or every
// eventBatchSize events, whichever comes first. It returns once buffer is
// closed and drained.
func eventBatchWriter(rec eventRecorder, buffer chan db.TargetEventRecord) {
	ticker := time.NewTicker(eventFlushEvery)
	defer ticker.Stop()

	batch := make([]db.TargetEventRecord, 0, eventBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := rec.BatchRecordTargetEvents(batch); err != nil {
			log.Printf("[DB] BatchRecordTargetEvents error: %v, retrying one by one\n", err)
			recordEach(rec, batch)
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev, ok := <-buffer:
			if !ok {
				flush()
				return
			}
			batch = append(batch, ev)
			if len(batch) >= eventBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// recordEach stores the events of a failed batch individually so one bad
// row does not lose the rest.
func recordEach(rec eventRecorder, batch []db.TargetEventRecord) {
	failed := 0
	for _, ev := range batch {
		if err := rec.RecordTargetEvent(ev); err != nil {
			failed++
		}
	}
	if failed > 0 {
		log.Printf("[DB] Dropped %d of %d events\n", failed, len(batch))
	}
}
