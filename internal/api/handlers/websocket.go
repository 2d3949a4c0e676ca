package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nba-props/internal/services"
)

type WebSocketHandler struct {
	hub      *services.WebSocketHub
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewWebSocketHandler accepts connections from the allowed origins; "*" allows any
func NewWebSocketHandler(hub *services.WebSocketHub, allowedOrigins []string, logger *logrus.Logger) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the connection and subscribes it to pass summaries
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	welcome := gin.H{
		"type": "welcome",
		"data": gin.H{
			"topics":    []string{services.TopicProjections},
			"timestamp": time.Now().UTC(),
		},
	}
	if err := conn.WriteJSON(welcome); err != nil {
		h.logger.WithError(err).Warn("Failed to send welcome message")
		conn.Close()
		return
	}

	client := services.NewClient(h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
