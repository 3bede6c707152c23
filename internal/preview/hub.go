package preview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/shiftcube/internal/cube"
)

// Frame is the websocket payload for one shifted-out frame.
type Frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Bits    []bool `json:"bits"`
}

// Hub keeps the last frame and fans every new one out to websocket clients.
type Hub struct {
	mu      sync.RWMutex
	cube    cube.Cube
	bits    int
	last    Frame
	start   time.Time
	clients map[*websocket.Conn]*client
	log     zerolog.Logger
}

// client serializes writes: a websocket conn allows one writer at a time.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func NewHub(c cube.Cube, bits int, log zerolog.Logger) *Hub {
	return &Hub{
		cube:    c,
		bits:    bits,
		start:   time.Now(),
		clients: map[*websocket.Conn]*client{},
		log:     log,
	}
}

// Handler routes /ws and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// Publish matches sim.Chain.OnFrame. Writes happen outside the hub lock; a
// client whose write fails is dropped.
func (h *Hub) Publish(id uint64, bits []bool) {
	f := Frame{T: time.Now().UnixNano(), FrameID: id, Bits: bits}
	b, err := json.Marshal(f)
	if err != nil {
		h.log.Error().Err(err).Msg("encode frame")
		return
	}
	h.mu.Lock()
	h.last = f
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.write(b); err != nil {
			h.log.Debug().Err(err).Msg("write frame")
			h.drop(c.conn)
		}
	}
}

// drop forgets conn and closes it.
func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()
	if err := h.sendTopology(c); err != nil {
		h.log.Debug().Err(err).Msg("send topology")
		h.drop(conn)
		return
	}

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	resp := map[string]any{
		"frame_id":    h.last.FrameID,
		"uptime_s":    time.Since(h.start).Seconds(),
		"bits":        h.bits,
		"edge_length": h.cube.EdgeLength,
		"clients":     len(h.clients),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Debug().Err(err).Msg("write health")
	}
}

// Close drops every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// sendTopology greets a new client with the geometry and the last frame.
func (h *Hub) sendTopology(c *client) error {
	h.mu.RLock()
	top := map[string]any{
		"edge_length": h.cube.EdgeLength,
		"bits":        h.bits,
		"marker_base": h.cube.MarkerBase(),
		"last":        h.last,
	}
	h.mu.RUnlock()
	b, err := json.Marshal(top)
	if err != nil {
		return err
	}
	return c.write(b)
}
