package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	EventIncidentCreated = "incident.created"
	EventIncidentUpdated = "incident.updated"
	EventDoorUnlocked    = "door.unlocked"
	EventContractSigned  = "contract.signed"

	writeWait  = 10 * time.Second
	pongWait   = 70 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// Event is the envelope pushed to dashboard clients.
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

// Hub fans dashboard events out to the guests of one stay.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewHub() *Hub { return &Hub{rooms: make(map[string]*Room)} }

func roomID(stayID string) string { return "stay:" + stayID }

func (h *Hub) EnsureRoom(stayID string) *Room {
	id := roomID(stayID)

	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[id]; ok {
		return r
	}
	r := &Room{
		id:      id,
		clients: make(map[*Client]struct{}),
	}
	h.rooms[id] = r
	return r
}

func (h *Hub) Broadcast(stayID string, payload []byte) {
	h.mu.RLock()
	r := h.rooms[roomID(stayID)]
	h.mu.RUnlock()
	if r != nil {
		r.Broadcast(payload)
	}
}

// Publish encodes an event and broadcasts it to the stay's room.
func (h *Hub) Publish(stayID, eventType string, data any) error {
	b, err := json.Marshal(Event{Type: eventType, At: time.Now().UTC(), Data: data})
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	h.Broadcast(stayID, b)
	return nil
}

type Room struct {
	id      string
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func (r *Room) Add(c *Client) {
	r.mu.Lock()
	r.clients[c] = struct{}{}
	r.mu.Unlock()
}

func (r *Room) Remove(c *Client) {
	r.mu.Lock()
	delete(r.clients, c)
	r.mu.Unlock()
}

func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Room) snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Broadcast drops clients whose send buffer is full.
func (r *Room) Broadcast(msg []byte) {
	for _, c := range r.snapshot() {
		if !c.trySend(msg) {
			go c.Close()
		}
	}
}

type Client struct {
	conn *websocket.Conn
	room *Room
	send chan []byte

	mu      sync.Mutex
	closed  bool
	onClose func()
}

func NewClient(conn *websocket.Conn, room *Room, onClose func()) *Client {
	return &Client{
		conn:    conn,
		room:    room,
		send:    make(chan []byte, sendBuffer),
		onClose: onClose,
	}
}

func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close is safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.room != nil {
		c.room.Remove(c)
	}
	if c.onClose != nil {
		c.onClose()
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump only keeps the connection alive; the dashboard feed is one-way.
func (c *Client) ReadPump() {
	defer c.Close()
	c.conn.SetReadLimit(4 << 10)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
