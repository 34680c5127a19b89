package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-till/utils"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many messages a terminal may lag behind before it
	// is dropped.
	sendBuffer = 64
)

type Message struct {
	TenantID uint        `json:"tenant_id"`
	Event    string      `json:"event"`
	Data     interface{} `json:"data"`
	SentAt   time.Time   `json:"sent_at"`
}

type client struct {
	conn     *websocket.Conn
	tenantID uint
	role     string
	send     chan []byte
}

// Hub menampung semua terminal (chef, staff, admin) per restoran. A message
// only reaches the terminals of its own tenant. Each terminal has its own
// writer goroutine, so a slow socket never holds the hub lock.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// RegisterClient -> menambahkan connection dengan tenant dan role, lalu
// menjalankan writer goroutine-nya
func (h *Hub) RegisterClient(conn *websocket.Conn, tenantID uint, role string) {
	c := &client{conn: conn, tenantID: tenantID, role: role, send: make(chan []byte, sendBuffer)}
	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()
	go h.writePump(c)
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(conn)
}

// removeLocked closes the send channel; the writer then closes the socket.
func (h *Hub) removeLocked(conn *websocket.Conn) {
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"tenant_id": c.tenantID,
				"role":      c.role,
			}).WithError(err).Warn("kds: dropping client")
			h.UnregisterClient(c.conn)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ClientCount returns the connected terminals of a tenant.
func (h *Hub) ClientCount(tenantID uint) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := 0
	for _, c := range h.clients {
		if c.tenantID == tenantID {
			n++
		}
	}
	return n
}

// Notify implements services.Notifier for a single instance.
func (h *Hub) Notify(tenantID uint, event string, payload interface{}) {
	h.Deliver(Message{
		TenantID: tenantID,
		Event:    event,
		Data:     payload,
		SentAt:   time.Now().UTC(),
	})
}

// Deliver queues msg for the local terminals of msg.TenantID.
func (h *Hub) Deliver(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("kds: marshal message")
		return
	}
	h.deliverRaw(msg.TenantID, msg.Event, data)
}

func (h *Hub) deliverRaw(tenantID uint, event string, data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	queued := 0
	for conn, c := range h.clients {
		if c.tenantID != tenantID {
			continue
		}
		select {
		case c.send <- data:
			queued++
		default:
			utils.ErrorLogger.WithFields(logrus.Fields{
				"tenant_id": tenantID,
				"role":      c.role,
			}).Warn("kds: terminal too slow, dropping client")
			h.removeLocked(conn)
		}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"event":     event,
		"clients":   queued,
	}).Debug("kds: broadcast")
}
