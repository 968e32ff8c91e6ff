package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"invoicing/internal/logger"
	"invoicing/internal/middleware"
	"invoicing/internal/repository"
	"invoicing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents a single connected WebSocket client of one company
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	CompanyID uuid.UUID
	Send      chan []byte
}

type companyMessage struct {
	companyID uuid.UUID
	payload   []byte
}

// Hub keeps the connected clients per company and fans company events out to them
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	publish    chan companyMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	log        zerolog.Logger
}

// NewHub initializes a new WS Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		publish:    make(chan companyMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logger.WithComponent("websocket"),
	}
}

// Run dispatches hub events until ctx is done. On return every client is dropped and
// later joins are refused.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.CompanyID] == nil {
				h.clients[client.CompanyID] = make(map[*Client]bool)
			}
			h.clients[client.CompanyID][client] = true
			h.mu.Unlock()
			h.log.Debug().Str("company_id", client.CompanyID.String()).Msg("WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.log.Debug().Str("company_id", client.CompanyID.String()).Msg("WebSocket client disconnected")
		case msg := <-h.publish:
			h.mu.Lock()
			for client := range h.clients[msg.companyID] {
				select {
				case client.Send <- msg.payload:
				default:
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for client := range set {
			h.remove(client)
		}
	}
}

// join hands client to the running hub. It returns false once the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// remove drops a client; caller holds h.mu.
func (h *Hub) remove(client *Client) {
	set := h.clients[client.CompanyID]
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.CompanyID)
	}
}

// PublishToCompany queues event for every client of companyID. It never blocks; events are
// dropped when the hub is backed up.
func (h *Hub) PublishToCompany(companyID uuid.UUID, event service.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("type", event.Type).Msg("Failed to encode websocket event")
		return
	}
	select {
	case h.publish <- companyMessage{companyID: companyID, payload: payload}:
	default:
		h.log.Warn().Str("type", event.Type).Msg("WebSocket hub busy, event dropped")
	}
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump keeps the connection alive and unregisters the client when it goes away
func (c *Client) readPump() {
	defer func() {
		c.Hub.leave(c)
		_ = c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn().Err(err).Msg("WebSocket read failed")
			}
			return
		}
	}
}

// ServeWs authenticates the token query parameter against the company membership and
// upgrades the connection
func ServeWs(hub *Hub, c *gin.Context, secret []byte, members repository.MembershipRepository) {
	tokenString := c.Query("token")
	if tokenString == "" {
		hub.log.Info().Msg("WebSocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := middleware.ParseToken(tokenString, secret)
	if err != nil {
		hub.log.Info().Err(err).Msg("WebSocket connection rejected: invalid token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	userID, companyID, err := middleware.IdentityFromClaims(claims)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if _, err := members.Find(c.Request.Context(), companyID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusForbidden
		}
		hub.log.Info().Err(err).Msg("WebSocket connection rejected: membership check failed")
		c.AbortWithStatus(status)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	client := &Client{Hub: hub, Conn: conn, CompanyID: companyID, Send: make(chan []byte, 256)}
	if !hub.join(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
