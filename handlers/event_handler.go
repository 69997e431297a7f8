package handlers

import (
	"net/http"
	"strings"
	"time"

	"cctv-surveillance-reports/be/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type EventHandler struct {
	hub      *services.EventHub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewEventHandler accepts websocket origins from allowedOrigins; an empty
// list accepts every origin, matching the CORS policy.
func NewEventHandler(hub *services.EventHub, allowedOrigins []string, log *zap.Logger) *EventHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &EventHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
			EnableCompression: true,
		},
	}
}

// Stream upgrades the request and blocks while the subscriber is connected.
func (h *EventHandler) Stream(c *gin.Context) {
	// Echo the token subprotocol or browsers drop the connection.
	var header http.Header
	for _, proto := range websocket.Subprotocols(c.Request) {
		if strings.HasPrefix(proto, "authorization.bearer.") {
			header = http.Header{"Sec-Websocket-Protocol": {proto}}
			break
		}
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, header)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.hub.Serve(conn)
}

// Health reports that the server is up.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "Surveillance report server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
