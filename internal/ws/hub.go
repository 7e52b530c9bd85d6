// Package ws pushes per-user notifications to connected back-office clients.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/metrics"
)

// Hub channel buffer sizes and connection caps.
const (
	broadcastBuffer = 256
	registerBuffer  = 64

	maxClients        = 1000
	maxClientsPerUser = 10
)

// userMessage is sent through the broadcast channel to the Run goroutine.
type userMessage struct {
	userID string
	msg    []byte
}

// Hub tracks connected clients and routes each event to the connections of
// its recipient. All client map mutations happen in the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	userCount  map[string]int
	register   chan *Client
	unregister chan *Client
	broadcast  chan userMessage
	shutdown   chan struct{}
	done       chan struct{}
	count      atomic.Int64
	log        *logrus.Logger
	seq        *EventSequence
	buffer     *EventBuffer
}

// NewHub creates a new Hub instance.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		userCount:  make(map[string]int),
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan userMessage, broadcastBuffer),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
		seq:        NewEventSequence(),
		buffer:     NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
	}
}

// drainTimeout is how long the hub waits for clients to flush after shutdown.
const drainTimeout = 3 * time.Second

// Run starts the hub event loop. It exits when Shutdown is called or the
// context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.buffer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.drainClients()
			return
		case <-h.shutdown:
			h.drainClients()
			return

		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			if h.clients[client] {
				h.remove(client)
			}
			h.updateCount()
			h.log.WithFields(logrus.Fields{"user_id": client.UserID, "total": len(h.clients)}).Debug("client unregistered")

		case m := <-h.broadcast:
			for client := range h.clients {
				if client.UserID != m.userID {
					continue
				}
				select {
				case client.send <- m.msg:
				default:
					// Slow consumer; it can catch up via replay on reconnect.
					h.remove(client)
				}
			}
			h.updateCount()
		}
	}
}

func (h *Hub) add(client *Client) {
	if len(h.clients) >= maxClients {
		h.log.Warn("global connection limit reached, dropping client")
		client.closeSend()
		return
	}

	if h.userCount[client.UserID] >= maxClientsPerUser {
		h.log.WithField("user_id", client.UserID).Warn("per-user connection limit reached, dropping client")
		client.closeSend()
		return
	}

	h.clients[client] = true
	h.userCount[client.UserID]++
	h.updateCount()
	h.log.WithFields(logrus.Fields{"user_id": client.UserID, "total": len(h.clients)}).Info("client registered")
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	client.closeSend()

	h.userCount[client.UserID]--
	if h.userCount[client.UserID] <= 0 {
		delete(h.userCount, client.UserID)
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// maxEventPayload caps a single pushed event.
const maxEventPayload = 8192

// sendToUser queues msg for every connection of userID.
func (h *Hub) sendToUser(userID string, msg []byte) {
	if len(msg) > maxEventPayload {
		h.log.WithFields(logrus.Fields{
			"user_id":      userID,
			"payload_size": len(msg),
		}).Warn("dropping oversized event")
		return
	}

	select {
	case h.broadcast <- userMessage{userID: userID, msg: msg}:
	default:
		h.log.Warn("broadcast channel full, dropping event")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// Run already exited and closed every client.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// BroadcastEvent numbers the event within the recipient's sequence, keeps it
// for replay and pushes it to the recipient's open connections.
func (h *Hub) BroadcastEvent(eventType, recipientID string, data json.RawMessage) {
	evt := Event{
		Type:   eventType,
		ID:     h.seq.Next(recipientID),
		UserID: recipientID,
		Data:   data,
		Time:   time.Now(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	h.buffer.Append(recipientID, &evt)
	h.sendToUser(recipientID, msg)
}

// Shutdown sends a shutdown frame to every client, waits for their write
// pumps to flush and closes all connections.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for client := range h.clients {
		select {
		case client.send <- shutdownMsg:
		default:
		}
	}

	deadline := time.After(drainTimeout)
	ticker := time.NewTicker(50 * time.Millisecond) //nolint:mnd // poll interval
	defer ticker.Stop()

wait:
	for !h.flushed() {
		select {
		case <-deadline:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")
			break wait
		case <-ticker.C:
		}
	}

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}

	h.userCount = make(map[string]int)
	h.updateCount()
}

func (h *Hub) flushed() bool {
	for client := range h.clients {
		if len(client.send) > 0 {
			return false
		}
	}

	return true
}

// ReplayEvents queues the client's buffered events after lastEventID.
// It returns false when lastEventID is older than the buffer.
func (h *Hub) ReplayEvents(client *Client, lastEventID uint64) bool {
	oldest := h.buffer.OldestID(client.UserID)
	if oldest > 0 && lastEventID > 0 && lastEventID < oldest-1 {
		return false
	}

	for _, evt := range h.buffer.Since(client.UserID, lastEventID) {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		select {
		case client.send <- msg:
		default:
			return true
		}
	}

	return true
}
