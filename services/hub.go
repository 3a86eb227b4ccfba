package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub fans poll results out to websocket subscribers. Clients subscribe to
// a single poll; every successful vote cast triggers a fresh results
// broadcast to that poll's subscribers. The feed is read-only.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

type Client struct {
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte
	pollID uint
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type broadcastMessage struct {
	pollID uint
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Results subscriber added for poll %d - Total clients: %d", client.pollID, h.clientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			log.Printf("Results subscriber removed for poll %d - Total clients: %d", client.pollID, h.clientCount())

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if client.pollID != message.pollID {
					continue
				}
				select {
				case client.send <- message.data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) clientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastResults pushes a results payload to every subscriber of the poll.
func (h *Hub) BroadcastResults(pollID uint, payload interface{}) {
	message := Message{Type: "results", Payload: payload}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling results broadcast for poll %d: %v", pollID, err)
		return
	}

	h.broadcast <- broadcastMessage{pollID: pollID, data: data}
}

// RegisterClient attaches a websocket connection as a subscriber of the
// given poll and sends it the initial payload. It takes over the connection;
// the caller must not use it afterwards.
func (h *Hub) RegisterClient(conn *websocket.Conn, pollID uint, initial interface{}) {
	client := &Client{
		hub:    h,
		socket: conn,
		send:   make(chan []byte, 8),
		pollID: pollID,
	}

	if initial != nil {
		if data, err := json.Marshal(Message{Type: "results", Payload: initial}); err == nil {
			client.send <- data
		}
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound frames; the feed is one-way. It exists to
// detect disconnects and answer control frames.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	c.socket.SetReadLimit(512)
	c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
