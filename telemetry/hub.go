// Package telemetry streams zone lifecycle events and debug lines to
// websocket subscribers. Delivery is fire-and-forget: a slow or dead
// client never blocks the engine.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rustyeddy/breaker/zone"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is the wire format for zone lifecycle notifications.
type Event struct {
	Type      string    `json:"type"`
	ZoneID    uint64    `json:"zone_id,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Low       float64   `json:"low,omitempty"`
	High      float64   `json:"high,omitempty"`
	Message   string    `json:"message,omitempty"`
	Time      time.Time `json:"time"`
}

// Hub fans events out to connected websocket clients.
type Hub struct {
	log       *slog.Logger
	lock      sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:       log,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 256),
	}
}

// Run pumps queued events to clients until the broadcast channel closes.
func (h *Hub) Run() {
	for message := range h.broadcast {
		h.lock.Lock()
		for client := range h.clients {
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.lock.Unlock()
	}
}

// Handler upgrades incoming connections and registers them with the hub.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("ws upgrade", "err", err)
			return
		}
		h.lock.Lock()
		h.clients[conn] = true
		h.lock.Unlock()
	}
}

// emit queues an event, dropping it if the hub is saturated.
func (h *Hub) emit(ev Event) {
	ev.Time = time.Now().UTC()
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		// Saturated queue: drop rather than stall the engine.
	}
}

func (h *Hub) ZoneCreated(z zone.Zone)     { h.emit(zoneEvent("zone_created", z)) }
func (h *Hub) ZoneTouched(z zone.Zone)     { h.emit(zoneEvent("zone_touched", z)) }
func (h *Hub) ZoneInvalidated(z zone.Zone) { h.emit(zoneEvent("zone_invalidated", z)) }

// Debugf queues a free-form debug line.
func (h *Hub) Debugf(format string, args ...any) {
	h.emit(Event{Type: "debug", Message: fmt.Sprintf(format, args...)})
}

func zoneEvent(typ string, z zone.Zone) Event {
	return Event{
		Type:      typ,
		ZoneID:    z.ID,
		Direction: z.Direction.String(),
		Low:       z.Low,
		High:      z.High,
	}
}
