package broadcast

import (
	"encoding/json"
	"fiestapinata/internal/events"
	"log"
	"sync"
)

// EventMessage is one Server-Sent Event: a name and a data payload.
type EventMessage struct {
	Event string
	Msg   string
}

// FeedEntry is the payload of a target event on the observer feed.
type FeedEntry struct {
	SessionID string `json:"session"`
	events.TargetEvent
}

type Broadcaster struct {
	Mu      sync.Mutex
	Clients map[chan EventMessage]bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		Clients: make(map[chan EventMessage]bool),
	}
}

func (b *Broadcaster) Subscribe() chan EventMessage {
	ch := make(chan EventMessage, 32)
	b.Mu.Lock()
	b.Clients[ch] = true
	b.Mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan EventMessage) {
	b.Mu.Lock()
	delete(b.Clients, ch)
	b.Mu.Unlock()
	close(ch)
}

func (b *Broadcaster) Broadcast(event string, message string) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		select {
		case ch <- EventMessage{Event: event, Msg: message}:
		default:
			// skip clients with full data channels
		}
	}
}

// BroadcastTargetEvent publishes a session's target event under its kind
// as the SSE event name.
func (b *Broadcaster) BroadcastTargetEvent(sessionID string, ev events.TargetEvent) {
	b.Mu.Lock()
	idle := len(b.Clients) == 0
	b.Mu.Unlock()
	if idle {
		return
	}

	data, err := json.Marshal(FeedEntry{SessionID: sessionID, TargetEvent: ev})
	if err != nil {
		log.Printf("[Broadcast] Marshal error: %v\n", err)
		return
	}
	b.Broadcast(string(ev.Kind), string(data))
}
