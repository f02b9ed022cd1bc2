package websocket

import (
	"bytes"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"raptor/internal/audit"
	"raptor/internal/models"
	"raptor/pkg/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// OpportunityUpdateMessage reports a change to a scored launch.
type OpportunityUpdateMessage struct {
	Type string               `json:"type"`
	Data *models.Opportunity  `json:"data"`
}

// PositionUpdateMessage reports a change to an open or closed position.
type PositionUpdateMessage struct {
	Type string           `json:"type"`
	Data *models.Position `json:"data"`
}

// TradeUpdateMessage reports a completed trade attempt from the audit log.
type TradeUpdateMessage struct {
	Type string       `json:"type"`
	Data *audit.Entry `json:"data"`
}

// Hub fans out opportunity/position/trade updates to every connected
// raptorctl debug-stream client. It never holds trading state of its own;
// callers push whatever they want broadcast.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	log *logging.Logger
}

// NewHub creates a Hub. log may be nil, in which case connect/disconnect
// events are not logged.
func NewHub(log *logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run is the Hub's main loop. Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			if h.log != nil {
				h.log.Debug("client connected", logging.Int("clients", n))
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			if h.log != nil {
				h.log.Debug("client disconnected", logging.Int("clients", n))
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					toRemove = append(toRemove, client)
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				n := len(h.clients)
				h.mu.Unlock()
				if h.log != nil {
					h.log.Warn("removed slow clients", logging.Int("removed", len(toRemove)), logging.Int("clients", n))
				}
			}
		}
	}
}

// Broadcast JSON-encodes message and fans it out to every connected client.
// A client whose send buffer is full is dropped rather than allowed to
// block the broadcast loop.
func (h *Hub) Broadcast(message interface{}) {
	buf := jsonBufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(message); err != nil {
		if h.log != nil {
			h.log.Error("marshal broadcast message", logging.Err(err))
		}
		jsonBufferPool.Put(buf)
		return
	}

	data := buf.Bytes()
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}

	msgCopy := make([]byte, len(data))
	copy(msgCopy, data)
	jsonBufferPool.Put(buf)

	h.broadcast <- msgCopy
}

// BroadcastOpportunity fans out a scored launch update.
func (h *Hub) BroadcastOpportunity(o *models.Opportunity) {
	h.Broadcast(&OpportunityUpdateMessage{Type: "opportunityUpdate", Data: o})
}

// BroadcastPosition fans out an open/closed position update.
func (h *Hub) BroadcastPosition(p *models.Position) {
	h.Broadcast(&PositionUpdateMessage{Type: "positionUpdate", Data: p})
}

// BroadcastTrade fans out a completed trade attempt.
func (h *Hub) BroadcastTrade(e *audit.Entry) {
	h.Broadcast(&TradeUpdateMessage{Type: "tradeUpdate", Data: e})
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
