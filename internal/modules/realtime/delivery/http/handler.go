package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/raunak23427/mutual-skill-sync/internal/metrics"
	realtime "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/service"
	"github.com/raunak23427/mutual-skill-sync/pkg/response"
)

const pingInterval = 30 * time.Second

type RealtimeHandler struct {
	publisher realtime.Publisher
	upgrader  websocket.Upgrader
}

// NewRealtimeHandler accepts websocket upgrades from allowedOrigins. A "*"
// entry or an empty list allows every origin.
func NewRealtimeHandler(publisher realtime.Publisher, allowedOrigins []string) *RealtimeHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &RealtimeHandler{
		publisher: publisher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

// HandleWebSocket forwards change events for the requested topics until the
// client goes away.
func (h *RealtimeHandler) HandleWebSocket(c *gin.Context) {
	profileID, err := response.GetProfileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	channels, err := realtime.ChannelsForTopics(profileID, c.Query("topics"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pubsub, err := h.publisher.Subscribe(c.Request.Context(), channels...)
	if err != nil {
		if errors.Is(err, realtime.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		response.ResponseError(c, err)
		return
	}
	defer pubsub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	metrics.RealtimeClients.Inc()
	defer metrics.RealtimeClients.Dec()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
