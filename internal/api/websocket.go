package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize: 1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for the spectator dashboard
	},
}

// streamWriteTimeout bounds how long a single websocket frame write may
// block before a stalled client is dropped.
const streamWriteTimeout = 5 * time.Second

// handleStream upgrades GET /api/v1/battles/:id/stream into a websocket
// connection and pumps one battle's internal/events.Hub out to it. Every
// battle already owns its own events.Hub/Subscriber pair, so the handler
// only needs to bridge that channel onto the socket rather than maintain
// its own client registry.
func (h *APIHandler) handleStream(c *gin.Context) {
	battleID := c.Param("id")

	sub, err := h.coord.Subscribe(battleID, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown battle"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[stream] battle %s: spectator connected", battleID)

	// Keep-alive reader: we only push events down, but must drain incoming
	// frames to detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("[stream] battle %s: write error, dropping spectator: %v", battleID, err)
				return
			}
		case <-closed:
			return
		}
	}
}
