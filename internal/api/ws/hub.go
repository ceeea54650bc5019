package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/store"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhoneOS/internal/shared/id"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 16
)

// Message types
const (
	TypeDispatch = "dispatch"
	TypePing     = "ping"
	TypePong     = "pong"
	TypeState    = "state"
	TypeError    = "error"
)

// inbound is a client frame
type inbound struct {
	Type   string          `json:"type"`
	Action json.RawMessage `json:"action,omitempty"`
}

// outbound is a server frame
type outbound struct {
	Type  string        `json:"type"`
	State *system.State `json:"state,omitempty"`
	Error string        `json:"error,omitempty"`
}

// Options configures a Hub
type Options struct {
	// CheckOrigin defaults to accepting every origin
	CheckOrigin func(r *http.Request) bool
	Now         func() time.Time
	Logger      *logging.Logger
	Metrics     *monitoring.Metrics
}

// Hub fans state changes out to connected clients
type Hub struct {
	store    store.Handle
	upgrader websocket.Upgrader
	now      func() time.Time
	log      *logging.Logger
	metrics  *monitoring.Metrics

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	unsubscribe func()
}

// NewHub creates a hub subscribed to handle
func NewHub(handle store.Handle, opts Options) *Hub {
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := &Hub{
		store: handle,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		now:     opts.Now,
		log:     logging.Or(opts.Logger).Component("ws"),
		metrics: opts.Metrics,
		clients: make(map[*client]struct{}),
	}
	h.unsubscribe = handle.Subscribe(h.broadcast)
	return h
}

// HandleConnection upgrades the request and serves the client until it
// disconnects
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(cl) {
		_ = conn.Close()
		return
	}
	h.metrics.IncWSConnections()
	h.log.Debug("Client connected", zap.String("remote", conn.RemoteAddr().String()))

	go cl.writePump()
	cl.readPump()
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close stops listening to the store and disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	h.unsubscribe()
	for cl := range clients {
		cl.close()
		h.metrics.DecWSConnections()
	}
}

// register adds cl and queues the current state as its first frame. Both
// happen under mu so no broadcast can slip in between.
func (h *Hub) register(cl *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}

	frame, err := encode(outbound{Type: TypeState, State: h.store.State()})
	if err != nil {
		h.log.Error("Failed to encode state", zap.Error(err))
		return false
	}
	h.clients[cl] = struct{}{}
	cl.send <- frame
	return true
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	_, ok := h.clients[cl]
	delete(h.clients, cl)
	h.mu.Unlock()

	if ok {
		cl.close()
		h.metrics.DecWSConnections()
		h.log.Debug("Client disconnected")
	}
}

// broadcast runs on the dispatching goroutine, so it never blocks: a client
// whose buffer is full is dropped
func (h *Hub) broadcast(s *system.State) {
	frame, err := encode(outbound{Type: TypeState, State: s})
	if err != nil {
		h.log.Error("Failed to encode state", zap.Error(err))
		return
	}

	h.mu.Lock()
	var slow []*client
	for cl := range h.clients {
		select {
		case cl.send <- frame:
			h.metrics.RecordWSMessage("out", TypeState)
		default:
			slow = append(slow, cl)
		}
	}
	for _, cl := range slow {
		delete(h.clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range slow {
		h.log.Warn("Dropping slow client")
		cl.close()
		h.metrics.DecWSConnections()
	}
}

func (h *Hub) handle(cl *client, data []byte) {
	var msg inbound
	if err := sonic.ConfigStd.Unmarshal(data, &msg); err != nil {
		h.metrics.RecordWSMessage("in", "invalid")
		cl.reply(outbound{Type: TypeError, Error: "invalid message"})
		return
	}
	h.metrics.RecordWSMessage("in", msg.Type)

	switch msg.Type {
	case TypePing:
		cl.reply(outbound{Type: TypePong})
	case TypeDispatch:
		action, err := system.DecodeAction(msg.Action)
		if err != nil {
			cl.reply(outbound{Type: TypeError, Error: err.Error()})
			return
		}
		action = system.CompleteNotification(action, id.Notification, h.now().UnixMilli())
		h.store.Dispatch(action)
	default:
		cl.reply(outbound{Type: TypeError, Error: "unknown message type"})
	}
}

func encode(msg outbound) ([]byte, error) {
	return sonic.ConfigStd.Marshal(msg)
}
