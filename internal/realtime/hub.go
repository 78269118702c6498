// Package realtime pushes traffic events to websocket subscribers.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"temple_pass/internal/traffic"
)

const writeWait = 5 * time.Second

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the HTTP middleware
	},
}

// Command is what a client sends to join or leave a route room.
type Command struct {
	Action  string `json:"action"` // "joinRoute" or "leaveRoute"
	RouteID uint   `json:"routeId"`
}

type message struct {
	topic string
	ev    traffic.Event
}

// client serialises writes to one connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub tracks connected clients and the route rooms they joined, and fans
// published events out to them. It implements traffic.Publisher.
type Hub struct {
	clients   map[*client]bool
	rooms     map[string]map[*client]bool
	broadcast chan message
	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

var _ traffic.Publisher = (*Hub)(nil)

// NewHub creates and returns a new Hub instance.
// It also starts a goroutine to continuously run the broadcasting logic.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[*client]bool),
		rooms:     make(map[string]map[*client]bool),
		broadcast: make(chan message, 100),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

// Close stops the broadcast loop. Calling it again is a no-op.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Publish queues an event for the topic's subscribers. When the queue is
// full the event is dropped rather than blocking the caller.
func (h *Hub) Publish(topic string, ev traffic.Event) {
	select {
	case h.broadcast <- message{topic: topic, ev: ev}:
	default:
		logrus.WithFields(logrus.Fields{"topic": topic, "event": ev.Name}).Warn("Broadcast channel full, dropping event.")
	}
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.broadcast:
			for _, c := range h.recipients(msg.topic) {
				if err := c.send(msg.ev); err != nil {
					logrus.WithError(err).WithFields(logrus.Fields{
						"event":    msg.ev.Name,
						"conn_ptr": fmt.Sprintf("%p", c.conn),
					}).Info("Client unreachable during broadcast, unregistering.")
					h.unregister(c)
				}
			}
		}
	}
}

func (h *Hub) recipients(topic string) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients
	if topic != traffic.TopicAll {
		set = h.rooms[topic]
	}
	out := make([]*client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	for topic, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, topic)
		}
	}
}

func (h *Hub) join(c *client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[topic]; !ok {
		h.rooms[topic] = make(map[*client]bool)
	}
	h.rooms[topic][c] = true
}

func (h *Hub) leave(c *client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[topic]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, topic)
		}
	}
}

// Subscribers reports how many clients are in a topic's room, or connected
// at all for TopicAll.
func (h *Hub) Subscribers(topic string) int {
	return len(h.recipients(topic))
}

// ServeWS upgrades the request and reads join/leave commands until the
// client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	h.register(c)
	defer h.unregister(c)
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Traffic WebSocket connection established.")

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Traffic WebSocket closed.")
			} else {
				logrus.WithError(err).Debug("Traffic WebSocket read ended.")
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(p, &cmd); err != nil || cmd.RouteID == 0 {
			_ = c.send(map[string]string{"error": "expected {\"action\":\"joinRoute\"|\"leaveRoute\",\"routeId\":N}"})
			continue
		}
		topic := traffic.RouteTopic(cmd.RouteID)
		switch cmd.Action {
		case "joinRoute":
			h.join(c, topic)
		case "leaveRoute":
			h.leave(c, topic)
		default:
			_ = c.send(map[string]string{"error": "unknown action " + cmd.Action})
			continue
		}
		_ = c.send(map[string]any{"ack": cmd.Action, "routeId": cmd.RouteID})
		logrus.WithFields(logrus.Fields{"action": cmd.Action, "route_id": cmd.RouteID}).Debug("Client room change.")
	}
}
