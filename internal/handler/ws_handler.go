package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"board-sync/internal/database"
	"board-sync/internal/metrics"
	"board-sync/internal/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Inbound frames are control traffic only; the feed never expects payloads.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler serves the per-team change feed. Each frame pushed to the client
// is an invalidation signal: the client is expected to re-fetch the board, not
// to patch state from the frame.
type WSHandler struct {
	redis   *redis.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewWSHandler(redisClient *redis.Client, m *metrics.Metrics, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		redis:   redisClient,
		metrics: m,
		logger:  logger,
	}
}

// ServeFeed upgrades the connection and streams the team's change events
func (h *WSHandler) ServeFeed(c *gin.Context) {
	teamID, ok := parseUUIDParam(c, "teamId")
	if !ok {
		return
	}

	if h.redis == nil {
		response.SendError(c, http.StatusServiceUnavailable, response.ErrCodeInternal, "Change feed is not available")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("team_id", teamID.String()),
			zap.Error(err))
		return
	}

	pubsub := database.SubscribeBoardEvents(h.redis, teamID)

	if h.metrics != nil {
		h.metrics.IncrementFeedConnections()
	}
	h.logger.Info("Feed client connected", zap.String("team_id", teamID.String()))

	go h.writePump(conn, pubsub, teamID.String())
	go h.readPump(conn, pubsub, teamID.String())
}

// writePump forwards change events to the client and keeps the connection
// alive with pings. It exits when the subscription channel closes.
func (h *WSHandler) writePump(conn *websocket.Conn, pubsub *redis.PubSub, teamID string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		if h.metrics != nil {
			h.metrics.DecrementFeedConnections()
		}
		h.logger.Info("Feed client disconnected", zap.String("team_id", teamID))
	}()

	events := pubsub.Channel()
	for {
		select {
		case msg, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				pubsub.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				pubsub.Close()
				return
			}
		}
	}
}

// readPump drains the connection to process pongs and notice closes. Closing
// the subscription unblocks the write pump.
func (h *WSHandler) readPump(conn *websocket.Conn, pubsub *redis.PubSub, teamID string) {
	defer pubsub.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Feed connection closed unexpectedly",
					zap.String("team_id", teamID),
					zap.Error(err))
			}
			return
		}
	}
}
