package remote

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Subscription is a live change feed for one team. Messages carry no row
// payload; every one means "something changed, re-fetch". Close must be
// called when the feed is no longer needed or the connection leaks.
type Subscription struct {
	conn      *websocket.Conn
	logger    *zap.Logger
	closeOnce sync.Once
	done      chan struct{}
}

// Subscribe opens the team's change feed and invokes onChange for every
// event received. onChange runs on the subscription's read goroutine.
func (c *Client) Subscribe(ctx context.Context, teamID uuid.UUID, onChange func()) (*Subscription, error) {
	wsURL := fmt.Sprintf("%s/ws/teams/%s?token=%s", httpToWS(c.baseURL), teamID, c.token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, &BackendError{Op: "subscribe", StatusCode: status, Message: err.Error()}
	}

	sub := &Subscription{
		conn:   conn,
		logger: c.logger,
		done:   make(chan struct{}),
	}
	go sub.readLoop(onChange)

	return sub, nil
}

// Close tears down the feed. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			closeDeadline())
		s.conn.Close()
		close(s.done)
	})
}

// Done is closed when the feed has terminated, whether by Close or by the
// server dropping the connection.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) readLoop(onChange func()) {
	defer s.Close()

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Change feed closed unexpectedly", zap.Error(err))
			}
			return
		}
		onChange()
	}
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}

func httpToWS(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return baseURL
}
