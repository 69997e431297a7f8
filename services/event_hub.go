package services

import (
	"encoding/json"
	"sync"
	"time"

	"cctv-surveillance-reports/be/observability"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"

	KindActivity = "activity"
	KindStatus   = "status"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// ReportEvent tells dashboards that a record changed so they can refetch.
type ReportEvent struct {
	Event    string    `json:"event"`
	Kind     string    `json:"kind"`
	ID       string    `json:"id"`
	Location string    `json:"location,omitempty"`
	At       time.Time `json:"at"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub fans report events out to websocket subscribers.
// A subscriber whose buffer is full is dropped rather than blocking writers.
type EventHub struct {
	mu      sync.RWMutex
	clients map[*subscriber]struct{}
	log     *zap.Logger
}

func NewEventHub(log *zap.Logger) *EventHub {
	return &EventHub{
		clients: make(map[*subscriber]struct{}),
		log:     log,
	}
}

// Publish broadcasts an event to every subscriber without blocking.
func (h *EventHub) Publish(event ReportEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode report event", zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*subscriber
	for sub := range h.clients {
		select {
		case sub.send <- payload:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.log.Warn("dropping slow event subscriber", zap.String("remote", sub.conn.RemoteAddr().String()))
		h.remove(sub)
	}
}

// Serve registers conn and pumps events to it until the peer goes away.
// It blocks for the lifetime of the connection.
func (h *EventHub) Serve(conn *websocket.Conn) {
	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(sub)
	defer h.remove(sub)

	go h.writePump(sub)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventHub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				sub.conn.Close()
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Debug("event write failed", zap.Error(err))
				sub.conn.Close()
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sub.conn.Close()
				return
			}
		}
	}
}

func (h *EventHub) add(sub *subscriber) {
	h.mu.Lock()
	h.clients[sub] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	observability.SetEventSubscribers(n)
	h.log.Info("event subscriber connected", zap.Int("total", n))
}

func (h *EventHub) remove(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.clients[sub]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, sub)
	close(sub.send)
	n := len(h.clients)
	h.mu.Unlock()

	observability.SetEventSubscribers(n)
	h.log.Info("event subscriber disconnected", zap.Int("total", n))
}

// ClientCount returns the number of connected subscribers.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
