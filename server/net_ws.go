package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"arenashooter/engine"
	"arenashooter/game"
)

// InputMessage is an inbound websocket text message. Examples:
//
//	{"type":"key","key":"w","pressed":true}
//	{"type":"cursor","x":320,"y":170}
//	{"type":"mouse","button":"left","pressed":true}
//	{"type":"resize","width":1024,"height":768}
//	{"type":"close"}
type InputMessage struct {
	Type    string  `json:"type"`
	Key     string  `json:"key,omitempty"`
	Button  string  `json:"button,omitempty"`
	Pressed bool    `json:"pressed,omitempty"`
	X       float32 `json:"x,omitempty"`
	Y       float32 `json:"y,omitempty"`
	Width   float32 `json:"width,omitempty"`
	Height  float32 `json:"height,omitempty"`
}

var keyNames = map[string]engine.Key{
	"escape": engine.KeyEscape,
	"esc":    engine.KeyEscape,
	"w":      engine.KeyW,
	"a":      engine.KeyA,
	"s":      engine.KeyS,
	"d":      engine.KeyD,
	"space":  engine.KeySpace,
	"enter":  engine.KeyEnter,
}

var buttonNames = map[string]engine.MouseButton{
	"left":   engine.MouseLeft,
	"right":  engine.MouseRight,
	"middle": engine.MouseMiddle,
}

// ToEvent translates the message into an OS event.
func (m InputMessage) ToEvent() (engine.Event, error) {
	switch strings.ToLower(m.Type) {
	case "key":
		k, ok := keyNames[strings.ToLower(m.Key)]
		if !ok {
			k = engine.KeyUnknown
		}
		return engine.KeyboardInput{Key: k, Pressed: m.Pressed}, nil
	case "cursor":
		return engine.CursorMoved{X: m.X, Y: m.Y}, nil
	case "mouse":
		b, ok := buttonNames[strings.ToLower(m.Button)]
		if !ok {
			return nil, fmt.Errorf("unknown mouse button %q", m.Button)
		}
		return engine.MouseInput{Button: b, Pressed: m.Pressed}, nil
	case "resize":
		if m.Width <= 0 || m.Height <= 0 {
			return nil, fmt.Errorf("invalid window size %vx%v", m.Width, m.Height)
		}
		return engine.Resized{Width: m.Width, Height: m.Height}, nil
	case "close":
		return engine.CloseRequested{}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", m.Type)
	}
}

// ClientConn wraps one websocket connection with a bounded send queue.
type ClientConn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue queues b without blocking; a full queue drops it so the loop never
// waits on a slow client.
func (c *ClientConn) Enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
	}
}

func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Hub injects remote input into the event queue and streams statistics to
// every connected client. It implements game.StatsSink.
type Hub struct {
	queue *engine.EventQueue
	log   *zap.Logger

	mu      sync.Mutex
	clients map[*ClientConn]struct{}
	closed  bool

	latest   atomic.Pointer[game.Stats]
	rejected atomic.Int64
}

func NewHub(queue *engine.EventQueue, log *zap.Logger) *Hub {
	return &Hub{
		queue:   queue,
		log:     log,
		clients: make(map[*ClientConn]struct{}),
	}
}

// PublishStats is called on the loop goroutine after every frame.
func (h *Hub) PublishStats(s game.Stats) {
	h.latest.Store(&s)

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		h.log.Error("encode stats", zap.Error(err))
		return
	}
	for c := range h.clients {
		c.Enqueue(b)
	}
}

// Latest returns the most recent statistics, or false before the first frame.
func (h *Hub) Latest() (game.Stats, bool) {
	s := h.latest.Load()
	if s == nil {
		return game.Stats{}, false
	}
	return *s, true
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Rejected returns how many inbound messages could not be translated.
func (h *Hub) Rejected() int64 { return h.rejected.Load() }

func (h *Hub) join(c *ClientConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) leave(c *ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) readPump(c *ClientConn) {
	defer h.log.Info("ws client left", zap.String("client", c.id))
	defer c.ws.Close()
	defer h.leave(c)

	c.ws.SetReadLimit(1 << 16)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))

		var im InputMessage
		if err := json.Unmarshal(payload, &im); err != nil {
			h.rejected.Add(1)
			continue
		}
		ev, err := im.ToEvent()
		if err != nil {
			h.rejected.Add(1)
			h.log.Debug("ws input rejected", zap.String("client", c.id), zap.Error(err))
			continue
		}
		if !h.queue.Push(ev) {
			h.log.Debug("event queue full, input dropped", zap.String("client", c.id))
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Debug surface only; bind DEBUG_ADDR to a trusted interface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and starts the client's pumps.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	c := NewClientConn(ws)
	if !h.join(c) {
		_ = ws.Close()
		return
	}
	h.log.Info("ws client joined", zap.String("client", c.id), zap.String("remote", r.RemoteAddr))

	go c.writePump()
	go h.readPump(c)
}
