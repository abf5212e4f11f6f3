package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	MessageRideRequestDecided = "ride_request_decided"
	MessageBookingUpdated     = "booking_updated"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketMessage is the envelope of every frame the hub writes.
type WebSocketMessage struct {
	Type  string      `json:"type"`
	Event string      `json:"event,omitempty"`
	Data  interface{} `json:"data"`
}

// Client is one websocket connection of a person.
type Client struct {
	PersonID uint
	Conn     *websocket.Conn
	Send     chan []byte
	hub      *Hub
}

type envelope struct {
	personIDs []uint
	payload   []byte
}

// Hub fans decision and booking updates out to the connected persons they
// concern. It implements Notifier.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	done       chan struct{}
	mutex      sync.RWMutex
	log        *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, sendBuffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves registrations and deliveries until ctx is done, then closes
// every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.WithField("person_id", client.PersonID).Debug("Websocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			h.log.WithField("person_id", client.PersonID).Debug("Websocket client disconnected")

		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) deliver(env envelope) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if !containsID(env.personIDs, client.PersonID) {
			continue
		}
		select {
		case client.Send <- env.payload:
		default:
			// Slow consumer.
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// SendToPersons queues msg for every connection of the given persons. It
// drops the message when the hub is saturated.
func (h *Hub) SendToPersons(msg WebSocketMessage, personIDs ...uint) {
	if len(personIDs) == 0 {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("Failed to encode websocket message")
		return
	}
	select {
	case h.broadcast <- envelope{personIDs: personIDs, payload: payload}:
	default:
		h.log.WithField("type", msg.Type).Warn("Websocket hub saturated, dropping message")
	}
}

// ConnectedClients returns the number of open connections.
func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) RideRequestDecided(ctx context.Context, req *models.RideRequest) {
	h.SendToPersons(WebSocketMessage{Type: MessageRideRequestDecided, Data: req}, req.PersonID)
}

func (h *Hub) BookingUpdated(ctx context.Context, event string, booking *models.Booking) {
	ids := []uint{booking.PassengerID}
	if booking.DriverID != 0 && booking.DriverID != booking.PassengerID {
		ids = append(ids, booking.DriverID)
	}
	h.SendToPersons(WebSocketMessage{Type: MessageBookingUpdated, Event: event, Data: booking}, ids...)
}

// ServeWS upgrades the request and attaches the connection to personID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, personID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	client := &Client{
		PersonID: personID,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		hub:      h,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only watches for close and pong frames; clients never send commands.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).WithField("person_id", c.PersonID).Warn("Websocket read error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.WithError(err).WithField("person_id", c.PersonID).Warn("Websocket write error")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
