// internal/realtime/websocket.go
package realtime

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Conn is the part of *websocket.Conn the pump uses.
type Conn interface {
	ReadJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var pongFrame = []byte(`{"type":"pong"}`)

// Serve pumps the hub's messages for userID into the socket until either side
// goes away. Inbound frames only keep the connection alive.
//
// The write goroutine is the only writer on c; the read loop hands pongs to it.
func Serve(h *Hub, c Conn, userID uuid.UUID) {
	client := NewClient(userID)
	if !h.RegisterClient(client) {
		_ = c.Close()
		return
	}
	log.Printf("WebSocket: user %s connected\n", userID)

	pongs := make(chan struct{}, 1)
	writerDone := make(chan struct{})
	defer func() {
		h.UnregisterClient(client)
		<-writerDone
		log.Printf("WebSocket: user %s disconnected\n", userID)
	}()

	go func() {
		defer close(writerDone)
		for {
			select {
			case msg, ok := <-client.Send:
				if !ok {
					// hub closed the channel: stopped or unregistered
					_ = c.Close()
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Println("WebSocket write error:", err)
					_ = c.Close()
					drain(client.Send)
					return
				}
			case <-pongs:
				if err := c.WriteMessage(websocket.TextMessage, pongFrame); err != nil {
					log.Println("WebSocket write error:", err)
					_ = c.Close()
					drain(client.Send)
					return
				}
			}
		}
	}()

	for {
		var payload map[string]interface{}
		if err := c.ReadJSON(&payload); err != nil {
			break
		}
		if msgType, ok := payload["type"].(string); ok && msgType == "ping" {
			select {
			case pongs <- struct{}{}:
			default:
				// a pong is already queued
			}
		}
	}
}

// drain consumes until the hub closes ch so SendToUser never sees a stuck reader.
func drain(ch <-chan []byte) {
	for range ch {
	}
}
