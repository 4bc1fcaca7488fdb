// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"neighborly/internal/domain/meetup"
	"neighborly/internal/server/respond"
)

// MeetupFeed streams the activity of one meetup
type MeetupFeed interface {
	SubscribeMeetup(meetupID string, fn func(data []byte)) (unsubscribe func(), err error)
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Messages buffered per client before new ones are dropped
	SendBuffer int
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
		SendBuffer:     64,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer in front of the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedClient is one WebSocket connection following a meetup
type feedClient struct {
	conn     *websocket.Conn
	send     chan []byte
	meetupID string
	config   WebSocketConfig
	logger   *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// MeetupWebSocketHandler upgrades the request and forwards the meetup's
// joined, left, updated and deleted events to the client
func MeetupWebSocketHandler(feed MeetupFeed, meetups meetup.Manager, config WebSocketConfig, logger *zap.Logger) http.HandlerFunc {
	log := logger.Named("websocket")

	return func(w http.ResponseWriter, r *http.Request) {
		meetupID := chi.URLParam(r, "id")

		m, err := meetups.GetMeetup(r.Context(), meetupID)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("failed to upgrade to WebSocket", zap.Error(err))
			return
		}

		client := &feedClient{
			conn:     conn,
			send:     make(chan []byte, config.SendBuffer),
			meetupID: meetupID,
			config:   config,
			logger:   log,
			done:     make(chan struct{}),
		}

		unsubscribe, err := feed.SubscribeMeetup(meetupID, client.enqueue)
		if err != nil {
			log.Error("failed to subscribe to meetup feed", zap.String("meetup_id", meetupID), zap.Error(err))
			client.close()
			return
		}

		welcome, _ := json.Marshal(map[string]any{
			"type":             "welcome",
			"meetupId":         meetupID,
			"currentAttendees": m.CurrentAttendees,
			"time":             time.Now().UTC(),
		})
		client.enqueue(welcome)

		log.Debug("feed connected", zap.String("meetup_id", meetupID))

		go client.writePump()
		client.readPump()

		unsubscribe()
		log.Debug("feed disconnected", zap.String("meetup_id", meetupID))
	}
}

// enqueue hands a payload to the writer, dropping it when the client lags
func (c *feedClient) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn("dropping feed message for slow client", zap.String("meetup_id", c.meetupID))
	}
}

// readPump discards client input and detects disconnects
func (c *feedClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump sends queued messages and keeps the connection alive with pings
func (c *feedClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *feedClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
