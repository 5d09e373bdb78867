package apihttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
)

// wsClient is one Push Hub connection. It may hold live subscriptions to
// several tenants at once, joined and left dynamically via control
// messages per spec.md §4.5/§6.
type wsClient struct {
	hub  *wsHub
	conn *websocket.Conn
	send chan []byte

	mu   sync.Mutex
	subs map[domain.TenantID]ports.Subscription
}

// wsHub tracks connected Push Hub clients so the server can report a
// connected-client count and close them all on shutdown. It delegates
// join authorization to authorize, an external predicate per spec.md's
// "authorization of each join is delegated to an external predicate" —
// a nil authorize allows every join, matching deployments where the
// router already scoped the connection to one tenant upstream.
type wsHub struct {
	bus        ports.EventBus
	authorize  func(r *http.Request, tenantID domain.TenantID) bool
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	done       chan struct{}
	logger     *slog.Logger
}

func newWSHub(bus ports.EventBus, authorize func(r *http.Request, tenantID domain.TenantID) bool, logger *slog.Logger) *wsHub {
	return &wsHub{
		bus:        bus,
		authorize:  authorize,
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *wsHub) run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.closeClient(client)
			}
			h.logger.Debug("push hub stopped, all clients disconnected")
			return
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("push client connected", slog.Int("total", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.leaveAll()
				close(client.send)
				h.logger.Debug("push client disconnected", slog.Int("total", len(h.clients)))
			}
		}
	}
}

func (h *wsHub) closeClient(client *wsClient) {
	_ = client.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(2*time.Second),
	)
	client.leaveAll()
	close(client.send)
	delete(h.clients, client)
}

// Close signals the hub to stop and disconnect all clients.
func (h *wsHub) Close() {
	close(h.done)
}

func (h *wsHub) clientCount() int {
	return len(h.clients)
}

func newWSClient(hub *wsHub, conn *websocket.Conn) *wsClient {
	return &wsClient{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 64),
		subs: make(map[domain.TenantID]ports.Subscription),
	}
}

type wsControlMessage struct {
	Type     string         `json:"type"`
	TenantID domain.TenantID `json:"tenantId"`
}

// wsMessage is a server→client event, matching §4.4's payload plus a
// type field naming the event.
type wsMessage struct {
	Type    ports.EventType `json:"type"`
	VideoID domain.VideoID  `json:"videoId"`
	Payload interface{}     `json:"payload"`
}

func (c *wsClient) join(r *http.Request, tenantID domain.TenantID) {
	c.mu.Lock()
	if _, already := c.subs[tenantID]; already {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if c.hub.authorize != nil && !c.hub.authorize(r, tenantID) {
		return
	}

	sub := c.hub.bus.Subscribe(tenantID)
	c.mu.Lock()
	c.subs[tenantID] = sub
	c.mu.Unlock()
	go c.relay(sub)
}

func (c *wsClient) leave(tenantID domain.TenantID) {
	c.mu.Lock()
	sub, ok := c.subs[tenantID]
	if ok {
		delete(c.subs, tenantID)
	}
	c.mu.Unlock()
	if ok {
		sub.Unsubscribe()
	}
}

func (c *wsClient) leaveAll() {
	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[domain.TenantID]ports.Subscription)
	c.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// relay forwards one tenant subscription's events onto the client's
// shared send channel until Unsubscribe closes it.
func (c *wsClient) relay(sub ports.Subscription) {
	for ev := range sub.Events() {
		msg := wsMessage{Type: ev.Type, VideoID: ev.VideoID, Payload: ev.Payload}
		data, err := json.Marshal(msg)
		if err != nil {
			c.hub.logger.Error("ws marshal failed", slog.String("error", err.Error()))
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client's send buffer is full; drop rather than block the bus.
		}
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump processes join/leave control messages until the client
// disconnects, at which point the hub unsubscribes every tenant room
// this client joined.
func (c *wsClient) readPump(r *http.Request) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg wsControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "join":
			c.join(r, msg.TenantID)
		case "leave":
			c.leave(msg.TenantID)
		}
	}
}
